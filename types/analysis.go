package types

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Verdict values the backend is known to emit. Category analyzers answer with
// REAL/FAKE (or PASS/FAIL for the stitch check); the combined analyzer answers
// with AUTHENTIC/COUNTERFEIT/INCONCLUSIVE.
const (
	VerdictReal         = "REAL"
	VerdictFake         = "FAKE"
	VerdictPass         = "PASS"
	VerdictFail         = "FAIL"
	VerdictAuthentic    = "AUTHENTIC"
	VerdictCounterfeit  = "COUNTERFEIT"
	VerdictInconclusive = "INCONCLUSIVE"
)

// AnalysisResult is one analyzer response. Every analyzer shares the
// {verdict, realness_percent} subset; everything else is category-specific
// and kept verbatim in Extra so the gateway can pass it through unchanged.
type AnalysisResult struct {
	Verdict         string
	RealnessPercent float64
	Extra           map[string]any
}

// Err is set instead of a result when the analyzer answered with an error body.
type AnalysisError struct {
	Message string `json:"error"`
}

func (e *AnalysisError) Error() string {
	return e.Message
}

// ParseAnalysisResult decodes an analyzer response body. A body carrying an
// "error" field decodes to an *AnalysisError instead of a result.
func ParseAnalysisResult(data []byte) (*AnalysisResult, error) {
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid analyzer response: %w", err)
	}
	if msg, ok := raw["error"]; ok {
		return nil, &AnalysisError{Message: fmt.Sprintf("%v", msg)}
	}
	res := &AnalysisResult{Extra: make(map[string]any)}
	for key, value := range raw {
		switch key {
		case "verdict":
			if s, ok := value.(string); ok {
				res.Verdict = s
			}
		case "realness_percent":
			if n, ok := value.(float64); ok {
				res.RealnessPercent = n
			}
		default:
			res.Extra[key] = value
		}
	}
	return res, nil
}

// MarshalJSON flattens the required subset and the extension map back into the
// wire shape the analyzer produced.
func (r *AnalysisResult) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Extra)+2)
	for key, value := range r.Extra {
		flat[key] = value
	}
	flat["verdict"] = r.Verdict
	flat["realness_percent"] = r.RealnessPercent
	return sonic.Marshal(flat)
}

// UnmarshalJSON is the inverse of MarshalJSON. Unlike ParseAnalysisResult it
// does not treat an "error" field specially; it is used when decoding an
// already-accepted result back out of a query parameter.
func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Extra = make(map[string]any)
	for key, value := range raw {
		switch key {
		case "verdict":
			if s, ok := value.(string); ok {
				r.Verdict = s
			}
		case "realness_percent":
			if n, ok := value.(float64); ok {
				r.RealnessPercent = n
			}
		default:
			r.Extra[key] = value
		}
	}
	return nil
}

// ExtraString looks up a category-specific auxiliary field by name. Missing
// fields come back as ok=false so the results view can render a placeholder.
func (r *AnalysisResult) ExtraString(name string) (string, bool) {
	value, ok := r.Extra[name]
	if !ok || value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v)), true
		}
		return fmt.Sprintf("%.3f", v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
