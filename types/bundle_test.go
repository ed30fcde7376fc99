package types

import (
	"net/url"
	"testing"
)

func TestBundleRoundTrip(t *testing.T) {
	bundle := &ResultBundle{
		Model: "Yeezy 350 Zebra",
		Sneaker: &AnalysisResult{
			Verdict:         VerdictPass,
			RealnessPercent: 92,
			Extra:           map[string]any{"detected_stitches": float64(281)},
		},
		Box: &AnalysisResult{
			Verdict:         VerdictReal,
			RealnessPercent: 88,
			Extra:           map[string]any{"barcode_check": "PASS"},
		},
		Video: &AnalysisResult{
			Verdict:         VerdictReal,
			RealnessPercent: 95,
			Extra:           map[string]any{"frames_analyzed": float64(12)},
		},
		Combined: &AnalysisResult{
			Verdict:         VerdictAuthentic,
			RealnessPercent: 91,
			Extra:           map[string]any{"confidence": "high"},
		},
	}

	values, err := bundle.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// simulate the navigation: serialize to a query string and parse it back
	parsed, err := url.ParseQuery(values.Encode())
	if err != nil {
		t.Fatalf("query parse failed: %v", err)
	}
	decoded, failures := DecodeBundle(parsed)
	if len(failures) != 0 {
		t.Fatalf("unexpected decode failures: %v", failures)
	}

	if decoded.Model != bundle.Model {
		t.Errorf("model = %q, want %q", decoded.Model, bundle.Model)
	}
	for _, c := range Categories {
		want := bundle.ByCategory(c)
		got := decoded.ByCategory(c)
		if got == nil {
			t.Fatalf("%s result lost in round trip", c)
		}
		if got.Verdict != want.Verdict || got.RealnessPercent != want.RealnessPercent {
			t.Errorf("%s = %q/%v, want %q/%v", c, got.Verdict, got.RealnessPercent, want.Verdict, want.RealnessPercent)
		}
	}
	if decoded.Combined == nil || decoded.Combined.Verdict != VerdictAuthentic {
		t.Fatalf("combined result lost in round trip: %+v", decoded.Combined)
	}
	if conf, ok := decoded.Combined.ExtraString("confidence"); !ok || conf != "high" {
		t.Errorf("confidence = %q (%v), want \"high\"", conf, ok)
	}
}

func TestDecodeBundleDropsMalformedParamsIndependently(t *testing.T) {
	values := url.Values{}
	values.Set(ParamSneaker, `{"verdict":"PASS","realness_percent":92}`)
	values.Set(ParamBox, "{not json")
	values.Set(ParamModel, "Travis Scott Olive")

	bundle, failures := DecodeBundle(values)
	if bundle.Sneaker == nil || bundle.Sneaker.Verdict != VerdictPass {
		t.Error("well-formed sneaker param should survive a malformed sibling")
	}
	if bundle.Box != nil {
		t.Error("malformed box param should decode to nil")
	}
	if _, ok := failures[ParamBox]; !ok {
		t.Error("malformed box param should be reported")
	}
	if bundle.Model != "Travis Scott Olive" {
		t.Errorf("model = %q", bundle.Model)
	}
}

func TestHeadline(t *testing.T) {
	cases := []struct {
		name        string
		combined    *AnalysisResult
		wantVerdict string
		wantPercent int
	}{
		{"absent", nil, VerdictInconclusive, 0},
		{"authentic", &AnalysisResult{Verdict: VerdictAuthentic, RealnessPercent: 91}, VerdictAuthentic, 91},
		{"counterfeit", &AnalysisResult{Verdict: VerdictCounterfeit, RealnessPercent: 31}, VerdictCounterfeit, 31},
		{"inconclusive", &AnalysisResult{Verdict: VerdictInconclusive, RealnessPercent: 55}, VerdictInconclusive, 0},
		{"unrecognized", &AnalysisResult{Verdict: "MAYBE", RealnessPercent: 80}, VerdictInconclusive, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bundle := &ResultBundle{Combined: tc.combined}
			verdict, percent := bundle.Headline()
			if verdict != tc.wantVerdict || percent != tc.wantPercent {
				t.Errorf("Headline() = %q/%d, want %q/%d", verdict, percent, tc.wantVerdict, tc.wantPercent)
			}
		})
	}
}
