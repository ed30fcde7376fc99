package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/veritaslabs/veritas-gateway/relay"
	"github.com/veritaslabs/veritas-gateway/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// multipartBody builds a multipart payload with the given fields and an
// optional file part.
func multipartBody(t *testing.T, fields map[string]string, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	if filename != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func newAnalyzeRouter(backendURL string) *gin.Engine {
	ctrl := NewAnalyzeController(relay.NewClient(backendURL, nil))
	router := gin.New()
	router.POST("/api/proxy/v1/analyze/sneaker", ctrl.HandleAnalyze(types.CategorySneaker))
	return router
}

func decodeError(t *testing.T, body []byte) string {
	t.Helper()
	var parsed struct {
		Error string `json:"error"`
	}
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, body)
	}
	return parsed.Error
}

func TestAnalyzeMissingShoeIDSkipsBackend(t *testing.T) {
	var hits atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer backend.Close()

	router := newAnalyzeRouter(backend.URL)
	body, contentType := multipartBody(t, nil, "side.jpg", "image/jpeg", []byte{1})
	req := httptest.NewRequest(http.MethodPost, "/api/proxy/v1/analyze/sneaker", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if msg := decodeError(t, w.Body.Bytes()); !strings.Contains(msg, "shoe_id") {
		t.Errorf("error = %q, should name the missing field", msg)
	}
	if hits.Load() != 0 {
		t.Error("backend must not be contacted when validation fails")
	}
}

func TestAnalyzeMissingFileSkipsBackend(t *testing.T) {
	var hits atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer backend.Close()

	router := newAnalyzeRouter(backend.URL)
	body, contentType := multipartBody(t, map[string]string{"shoe_id": "yeezy_350_zebra"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/proxy/v1/analyze/sneaker", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if msg := decodeError(t, w.Body.Bytes()); !strings.Contains(msg, "file") {
		t.Errorf("error = %q, should name the missing field", msg)
	}
	if hits.Load() != 0 {
		t.Error("backend must not be contacted when validation fails")
	}
}

func TestAnalyzePassesBackendJSONThrough(t *testing.T) {
	const upstream = `{"verdict":"PASS","realness_percent":92,"detected_stitches":281}`
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze/sneaker_stitches" {
			t.Errorf("backend path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstream))
	}))
	defer backend.Close()

	router := newAnalyzeRouter(backend.URL)
	body, contentType := multipartBody(t, map[string]string{"shoe_id": "jordan1_lost_found"}, "side.jpg", "image/jpeg", []byte{1})
	req := httptest.NewRequest(http.MethodPost, "/api/proxy/v1/analyze/sneaker", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != upstream {
		t.Errorf("body = %q, want the backend JSON unchanged", w.Body.String())
	}
}

func TestAnalyzeWrapsUpstreamFailureBody(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not found"))
	}))
	defer backend.Close()

	router := newAnalyzeRouter(backend.URL)
	body, contentType := multipartBody(t, map[string]string{"shoe_id": "nope"}, "side.jpg", "image/jpeg", []byte{1})
	req := httptest.NewRequest(http.MethodPost, "/api/proxy/v1/analyze/sneaker", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want the upstream 404", w.Code)
	}
	if msg := decodeError(t, w.Body.Bytes()); msg != "not found" {
		t.Errorf("error = %q, want the upstream body text", msg)
	}
}

func TestAnalyzeTransportFailureIsBadGateway(t *testing.T) {
	router := newAnalyzeRouter("http://127.0.0.1:1")
	body, contentType := multipartBody(t, map[string]string{"shoe_id": "yeezy_350_zebra"}, "side.jpg", "image/jpeg", []byte{1})
	req := httptest.NewRequest(http.MethodPost, "/api/proxy/v1/analyze/sneaker", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if msg := decodeError(t, w.Body.Bytes()); msg == "" {
		t.Error("transport failure should carry the error message")
	}
}

func TestCombinedRequiresAllFields(t *testing.T) {
	var hits atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer backend.Close()

	ctrl := NewCombinedController(relay.NewClient(backend.URL, nil))
	router := gin.New()
	router.POST("/api/proxy/v1/analyze/combined", ctrl.HandleCombined)

	body, contentType := multipartBody(t, map[string]string{
		"shoe_id":         "yeezy_350_zebra",
		"sneaker_percent": "92",
		"box_percent":     "88",
		// video_percent missing
	}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/proxy/v1/analyze/combined", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if msg := decodeError(t, w.Body.Bytes()); !strings.Contains(msg, "video_percent") {
		t.Errorf("error = %q, should name the missing field", msg)
	}
	if hits.Load() != 0 {
		t.Error("backend must not be contacted when validation fails")
	}
}

func TestHealthPassthroughAndFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer backend.Close()

	ctrl := NewHealthController(relay.NewClient(backend.URL, nil))
	router := gin.New()
	router.GET("/api/proxy/v1/health", ctrl.HandleHealth)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/proxy/v1/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
		t.Errorf("healthy backend: status = %d, body = %q", w.Code, w.Body.String())
	}

	down := NewHealthController(relay.NewClient("http://127.0.0.1:1", nil))
	downRouter := gin.New()
	downRouter.GET("/api/proxy/v1/health", down.HandleHealth)
	w = httptest.NewRecorder()
	downRouter.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/proxy/v1/health", nil))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("unreachable backend: status = %d, want 502", w.Code)
	}
	var parsed struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := sonic.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if parsed.Status != "error" || parsed.Error == "" {
		t.Errorf("failure shape = %+v", parsed)
	}
}
