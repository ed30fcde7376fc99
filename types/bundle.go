package types

import (
	"net/url"

	"github.com/bytedance/sonic"
)

// Query parameter names used to carry results between the two page loads.
// This is the only state that survives the navigation, so the encode/decode
// pair here must round-trip losslessly for well-formed JSON.
const (
	ParamSneaker  = "sneaker"
	ParamBox      = "box"
	ParamVideo    = "video"
	ParamCombined = "combined"
	ParamModel    = "model"
)

// ResultBundle is the full outcome of one submission: up to three category
// results, the optional combined result, and the model display name.
type ResultBundle struct {
	Sneaker  *AnalysisResult
	Box      *AnalysisResult
	Video    *AnalysisResult
	Combined *AnalysisResult
	Model    string
}

// ByCategory returns the stored result for a category, or nil.
func (b *ResultBundle) ByCategory(c Category) *AnalysisResult {
	switch c {
	case CategorySneaker:
		return b.Sneaker
	case CategoryBox:
		return b.Box
	case CategoryVideo:
		return b.Video
	}
	return nil
}

// SetCategory stores a category result.
func (b *ResultBundle) SetCategory(c Category, r *AnalysisResult) {
	switch c {
	case CategorySneaker:
		b.Sneaker = r
	case CategoryBox:
		b.Box = r
	case CategoryVideo:
		b.Video = r
	}
}

// Encode serializes every present result independently as JSON text into
// query parameters, plus the model display name as plain text.
func (b *ResultBundle) Encode() (url.Values, error) {
	values := url.Values{}
	set := func(param string, r *AnalysisResult) error {
		if r == nil {
			return nil
		}
		data, err := sonic.Marshal(r)
		if err != nil {
			return err
		}
		values.Set(param, string(data))
		return nil
	}
	if err := set(ParamSneaker, b.Sneaker); err != nil {
		return nil, err
	}
	if err := set(ParamBox, b.Box); err != nil {
		return nil, err
	}
	if err := set(ParamVideo, b.Video); err != nil {
		return nil, err
	}
	if err := set(ParamCombined, b.Combined); err != nil {
		return nil, err
	}
	if b.Model != "" {
		values.Set(ParamModel, b.Model)
	}
	return values, nil
}

// DecodeBundle reads a bundle back out of query parameters. Each parameter is
// decoded independently: a malformed value is reported in the returned map and
// dropped without blocking the others.
func DecodeBundle(values url.Values) (*ResultBundle, map[string]error) {
	bundle := &ResultBundle{Model: values.Get(ParamModel)}
	failures := make(map[string]error)
	get := func(param string) *AnalysisResult {
		raw := values.Get(param)
		if raw == "" {
			return nil
		}
		var res AnalysisResult
		if err := sonic.Unmarshal([]byte(raw), &res); err != nil {
			failures[param] = err
			return nil
		}
		return &res
	}
	bundle.Sneaker = get(ParamSneaker)
	bundle.Box = get(ParamBox)
	bundle.Video = get(ParamVideo)
	bundle.Combined = get(ParamCombined)
	return bundle, failures
}

// Headline derives the overall display verdict from the combined result.
// Only the two recognized terminal verdicts map to their display states;
// anything else, including an absent combined result, falls back to the
// inconclusive default at 0%.
func (b *ResultBundle) Headline() (string, int) {
	if b.Combined == nil {
		return VerdictInconclusive, 0
	}
	switch b.Combined.Verdict {
	case VerdictAuthentic:
		return VerdictAuthentic, int(b.Combined.RealnessPercent)
	case VerdictCounterfeit:
		return VerdictCounterfeit, int(b.Combined.RealnessPercent)
	}
	return VerdictInconclusive, 0
}
