package engine

// ROI is a region of interest expressed as fractions of the image size.
type ROI struct {
	Name          string
	XPercent      float64
	YPercent      float64
	WidthPercent  float64
	HeightPercent float64
}

// GoldenRecord is the reference data one shoe model is checked against.
type GoldenRecord struct {
	UPC              string
	ReleaseDate      string
	ValidSizes       []string
	ExpectedStitches int
	Tolerance        int
	StitchROI        *ROI
}

// goldenDB holds the reference records for the supported shoe models.
var goldenDB = map[string]GoldenRecord{
	"jordan1_lost_found": {
		UPC:              "196154123456",
		ReleaseDate:      "2022-11-19",
		ValidSizes:       []string{"US 9", "US 9.5", "US 10", "US 10.5"},
		ExpectedStitches: 279,
		Tolerance:        8,
		StitchROI: &ROI{
			Name:          "toe_box",
			XPercent:      0.1,
			YPercent:      0.4,
			WidthPercent:  0.3,
			HeightPercent: 0.3,
		},
	},
	"travis_scott_olive": {
		UPC:              "196604123987",
		ReleaseDate:      "2023-04-26",
		ValidSizes:       []string{"US 8", "US 10", "US 11"},
		ExpectedStitches: 138,
		Tolerance:        7,
		StitchROI: &ROI{
			Name:          "toe_box",
			XPercent:      0.1,
			YPercent:      0.45,
			WidthPercent:  0.3,
			HeightPercent: 0.3,
		},
	},
	// Primeknit upper, no traditional stitching and no ROI.
	"yeezy_350_zebra": {
		UPC:              "196605234567",
		ReleaseDate:      "2022-03-15",
		ValidSizes:       []string{"US 9", "US 10", "US 11"},
		ExpectedStitches: 0,
		Tolerance:        0,
		StitchROI:        nil,
	},
}

// LookupGolden returns the reference record for a shoe model.
func LookupGolden(shoeID string) (GoldenRecord, bool) {
	rec, ok := goldenDB[shoeID]
	return rec, ok
}
