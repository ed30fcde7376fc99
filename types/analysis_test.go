package types

import (
	"errors"
	"testing"
)

func TestParseAnalysisResult(t *testing.T) {
	body := []byte(`{"verdict":"PASS","realness_percent":92,"detected_stitches":281,"analysis":"Stitch pattern matches authentic"}`)
	result, err := ParseAnalysisResult(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict != VerdictPass {
		t.Errorf("verdict = %q, want %q", result.Verdict, VerdictPass)
	}
	if result.RealnessPercent != 92 {
		t.Errorf("realness_percent = %v, want 92", result.RealnessPercent)
	}
	if got, ok := result.ExtraString("detected_stitches"); !ok || got != "281" {
		t.Errorf("detected_stitches = %q (%v), want \"281\"", got, ok)
	}
	if _, ok := result.Extra["verdict"]; ok {
		t.Error("verdict should not leak into Extra")
	}
}

func TestParseAnalysisResultErrorBody(t *testing.T) {
	_, err := ParseAnalysisResult([]byte(`{"error":"Shoe model 'x' not found in database"}`))
	if err == nil {
		t.Fatal("expected an error for an error body")
	}
	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("error type = %T, want *AnalysisError", err)
	}
	if analysisErr.Message != "Shoe model 'x' not found in database" {
		t.Errorf("message = %q", analysisErr.Message)
	}
}

func TestParseAnalysisResultMalformed(t *testing.T) {
	if _, err := ParseAnalysisResult([]byte("not json")); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestExtraStringFormatting(t *testing.T) {
	result := &AnalysisResult{Extra: map[string]any{
		"frames_analyzed":   float64(12),
		"median_confidence": 0.8125,
		"barcode_check":     "PASS",
	}}
	cases := []struct {
		key  string
		want string
	}{
		{"frames_analyzed", "12"},
		{"median_confidence", "0.812"},
		{"barcode_check", "PASS"},
	}
	for _, tc := range cases {
		got, ok := result.ExtraString(tc.key)
		if !ok || got != tc.want {
			t.Errorf("ExtraString(%q) = %q (%v), want %q", tc.key, got, ok, tc.want)
		}
	}
	if _, ok := result.ExtraString("missing"); ok {
		t.Error("missing key should report ok=false")
	}
}
