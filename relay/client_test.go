package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/veritaslabs/veritas-gateway/types"
)

func TestPostMultipartPreservesFilePart(t *testing.T) {
	var (
		gotShoeID      string
		gotFilename    string
		gotContentType string
		gotData        []byte
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("backend could not parse multipart: %v", err)
		}
		gotShoeID = r.FormValue("shoe_id")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("backend missing file part: %v", err)
		}
		defer func() { _ = file.Close() }()
		gotFilename = header.Filename
		gotContentType = header.Header.Get("Content-Type")
		gotData, _ = io.ReadAll(file)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"verdict":"PASS","realness_percent":92}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, backend.Client())
	staged := &types.StagedFile{
		Filename:    `side "profile".jpg`,
		ContentType: "image/jpeg",
		Data:        []byte{0xFF, 0xD8, 0xFF},
	}
	status, body, err := client.PostMultipart(context.Background(), "/analyze/sneaker_stitches", map[string]string{"shoe_id": "yeezy_350_zebra"}, staged)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(body) == 0 {
		t.Fatal("empty body")
	}
	if gotShoeID != "yeezy_350_zebra" {
		t.Errorf("shoe_id = %q", gotShoeID)
	}
	if gotFilename != `side "profile".jpg` {
		t.Errorf("filename = %q, quotes not preserved", gotFilename)
	}
	if gotContentType != "image/jpeg" {
		t.Errorf("content type = %q", gotContentType)
	}
	if len(gotData) != 3 || gotData[0] != 0xFF {
		t.Errorf("file data mangled: %v", gotData)
	}
}

func TestAnalyzeCategoryUpstreamError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Shoe model 'nope' not found in database", http.StatusNotFound)
	}))
	defer backend.Close()

	client := NewClient(backend.URL, backend.Client())
	_, err := client.AnalyzeCategory(context.Background(), types.CategorySneaker, "nope", &types.StagedFile{Filename: "a.jpg", Data: []byte{1}})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error type = %T, want *UpstreamError", err)
	}
	if upstream.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", upstream.Status)
	}
}

func TestAnalyzeCategoryErrorBody(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"analysis unavailable"}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, backend.Client())
	_, err := client.AnalyzeCategory(context.Background(), types.CategoryBox, "yeezy_350_zebra", &types.StagedFile{Filename: "b.jpg", Data: []byte{1}})
	var analysisErr *types.AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("error type = %T, want *AnalysisError", err)
	}
	if analysisErr.Message != "analysis unavailable" {
		t.Errorf("message = %q", analysisErr.Message)
	}
}

func TestCombineSendsPercentsVerbatim(t *testing.T) {
	var got map[string]string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		got = map[string]string{
			"shoe_id":         r.FormValue("shoe_id"),
			"sneaker_percent": r.FormValue("sneaker_percent"),
			"box_percent":     r.FormValue("box_percent"),
			"video_percent":   r.FormValue("video_percent"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"verdict":"AUTHENTIC","realness_percent":91,"confidence":"high"}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, backend.Client())
	result, err := client.Combine(context.Background(), "yeezy_350_zebra", 92, 88.5, 95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict != types.VerdictAuthentic || result.RealnessPercent != 91 {
		t.Errorf("result = %q/%v", result.Verdict, result.RealnessPercent)
	}
	want := map[string]string{
		"shoe_id":         "yeezy_350_zebra",
		"sneaker_percent": "92",
		"box_percent":     "88.5",
		"video_percent":   "95",
	}
	for field, value := range want {
		if got[field] != value {
			t.Errorf("%s = %q, want %q", field, got[field], value)
		}
	}
}

func TestGetTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", nil)
	if _, _, err := client.Get(context.Background(), HealthPath); err == nil {
		t.Fatal("expected a transport error for an unreachable backend")
	}
}

func TestHost(t *testing.T) {
	client := NewClient("http://127.0.0.1:8000", nil)
	if client.Host() != "127.0.0.1" {
		t.Errorf("Host() = %q", client.Host())
	}
}
