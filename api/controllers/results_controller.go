package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritaslabs/veritas-gateway/api/models"
	"github.com/veritaslabs/veritas-gateway/tool"
	"github.com/veritaslabs/veritas-gateway/types"
)

// placeholder rendered for auxiliary fields the analyzer did not report.
const absentField = "—"

// CardField is one labelled auxiliary value on a detail card.
type CardField struct {
	Label string
	Value string
}

// Card is the view model for one per-category detail card.
type Card struct {
	Title   string
	Verdict string
	Percent int
	Fields  []CardField
}

// fieldSpec names one auxiliary field to look up on a result.
type fieldSpec struct {
	Label string
	Key   string
}

// auxiliary fields looked up per category; anything missing renders as a
// placeholder, never as an error.
var cardFieldSpecs = map[types.Category][]fieldSpec{
	types.CategorySneaker: {
		{Label: "Detected stitches", Key: "detected_stitches"},
		{Label: "Expected stitches", Key: "expected_stitches"},
		{Label: "Tolerance", Key: "tolerance"},
		{Label: "Difference", Key: "difference"},
		{Label: "Detection area", Key: "detection_area"},
		{Label: "Analysis", Key: "analysis"},
	},
	types.CategoryBox: {
		{Label: "Barcode check", Key: "barcode_check"},
		{Label: "OCR snippet", Key: "ocr_text_snippet"},
		{Label: "Reasons", Key: "reasons"},
	},
	types.CategoryVideo: {
		{Label: "Frames analyzed", Key: "frames_analyzed"},
		{Label: "Detections", Key: "detections_count"},
		{Label: "Median confidence", Key: "median_confidence"},
	},
}

var cardTitles = map[types.Category]string{
	types.CategorySneaker: "Sneaker stitching",
	types.CategoryBox:     "Box label",
	types.CategoryVideo:   "Texture video",
}

// HandleResults renders the results view from the query-encoded bundle. No
// analysis happens here; the page is purely a renderer of computed state.
// GET /results
func HandleResults(c *gin.Context) {
	bundle, failures := types.DecodeBundle(c.Request.URL.Query())
	for param, err := range failures {
		tool.DefaultLogger.Warnf("Dropping malformed result parameter %q: %v", param, err)
	}

	headline, percent := bundle.Headline()

	cards := make([]Card, 0, len(types.Categories)+1)
	for _, category := range types.Categories {
		result := bundle.ByCategory(category)
		if result == nil {
			continue
		}
		cards = append(cards, buildCard(cardTitles[category], result, cardFieldSpecs[category]))
	}
	if bundle.Combined != nil {
		cards = append(cards, buildCard("Combined verdict", bundle.Combined, []fieldSpec{
			{Label: "Confidence", Key: "confidence"},
			{Label: "Sneaker score", Key: "sneaker_percent"},
			{Label: "Box score", Key: "box_percent"},
			{Label: "Video score", Key: "video_percent"},
		}))
	}

	c.HTML(http.StatusOK, "results.html", gin.H{
		"Model":    bundle.Model,
		"Headline": headline,
		"Percent":  percent,
		"Cards":    cards,
	})
}

func buildCard(title string, result *types.AnalysisResult, specs []fieldSpec) Card {
	card := Card{
		Title:   title,
		Verdict: result.Verdict,
		Percent: int(result.RealnessPercent),
	}
	for _, spec := range specs {
		value, ok := result.ExtraString(spec.Key)
		if !ok {
			value = absentField
		}
		card.Fields = append(card.Fields, CardField{Label: spec.Label, Value: value})
	}
	return card
}

// HandleIndex renders the upload form with the model catalog.
// GET /
func HandleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Models":     models.ModelNames(),
		"Categories": types.Categories,
	})
}
