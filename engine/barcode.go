package engine

import (
	"image"
	"strings"
)

// EAN-13 geometry: start guard (3 runs) + 6 left digits (4 runs each) +
// center guard (5 runs) + 6 right digits (4 runs each) + end guard (3 runs),
// 95 modules across 59 runs, starting and ending on a bar.
const (
	eanRuns    = 59
	eanModules = 95
)

// digit widths in modules for the four runs of one symbol. L and R symbols
// share widths; a G symbol has the reversed widths of its L counterpart.
var eanWidths = [10][4]int{
	{3, 2, 1, 1}, // 0
	{2, 2, 2, 1}, // 1
	{2, 1, 2, 2}, // 2
	{1, 4, 1, 1}, // 3
	{1, 1, 3, 2}, // 4
	{1, 2, 3, 1}, // 5
	{1, 1, 1, 4}, // 6
	{1, 3, 1, 2}, // 7
	{1, 2, 1, 3}, // 8
	{3, 1, 1, 2}, // 9
}

// parity pattern of the six left digits encodes the leading digit.
var eanParity = map[string]int{
	"OOOOOO": 0,
	"OOEOEE": 1,
	"OOEEOE": 2,
	"OOEEEO": 3,
	"OEOOEE": 4,
	"OEEOOE": 5,
	"OEEEOO": 6,
	"OEOEOE": 7,
	"OEOEEO": 8,
	"OEEOEO": 9,
}

// scanBarcodes scans horizontal lines across the image for EAN/UPC symbols
// and returns the distinct codes found. The reference codes in the catalog do
// not carry valid check digits, so no check-digit enforcement happens here.
func scanBarcodes(img image.Image) []string {
	gray := toGray(img)
	bounds := gray.Bounds()
	h := bounds.Dy()

	seen := make(map[string]struct{})
	var codes []string
	// 64 scanlines are plenty for a photographed label.
	step := h / 64
	if step < 1 {
		step = 1
	}
	for y := 0; y < h; y += step {
		code, ok := decodeScanline(gray, bounds.Min.Y+y)
		if !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// decodeScanline binarizes one row and tries to decode an EAN-13 symbol from
// its run lengths, at every plausible start offset.
func decodeScanline(gray *image.Gray, y int) (string, bool) {
	bounds := gray.Bounds()
	w := bounds.Dx()
	if w < eanModules {
		return "", false
	}

	var minV, maxV uint8 = 255, 0
	row := make([]uint8, w)
	for x := 0; x < w; x++ {
		v := gray.GrayAt(bounds.Min.X+x, y).Y
		row[x] = v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if int(maxV)-int(minV) < 64 {
		return "", false // flat row, no bars here
	}
	threshold := uint8((int(minV) + int(maxV)) / 2)

	// run-length encode: true = bar (dark)
	type run struct {
		bar   bool
		width int
	}
	var runs []run
	for x := 0; x < w; x++ {
		bar := row[x] < threshold
		if len(runs) > 0 && runs[len(runs)-1].bar == bar {
			runs[len(runs)-1].width++
			continue
		}
		runs = append(runs, run{bar: bar, width: 1})
	}

	for start := 0; start+eanRuns <= len(runs); start++ {
		if !runs[start].bar {
			continue
		}
		total := 0
		for i := 0; i < eanRuns; i++ {
			total += runs[start+i].width
		}
		module := float64(total) / float64(eanModules)
		if module <= 0 {
			continue
		}
		widths := make([]int, eanRuns)
		valid := true
		for i := 0; i < eanRuns; i++ {
			m := int(float64(runs[start+i].width)/module + 0.5)
			if m < 1 {
				m = 1
			}
			if m > 4 {
				valid = false
				break
			}
			widths[i] = m
		}
		if !valid {
			continue
		}
		if code, ok := decodeRuns(widths); ok {
			return code, true
		}
	}
	return "", false
}

// decodeRuns decodes the 59 normalized run widths of one EAN-13 symbol.
func decodeRuns(widths []int) (string, bool) {
	// guards: 1-1-1 at both ends, 1-1-1-1-1 in the center
	if !isGuard(widths[0:3]) || !isGuard(widths[31:36]) || !isGuard(widths[56:59]) {
		return "", false
	}

	var parity strings.Builder
	var digits strings.Builder

	// left half: six digits of four runs, starting with a space
	for i := 0; i < 6; i++ {
		offset := 3 + i*4
		digit, ok := matchWidths(widths[offset:offset+4], false)
		if !ok {
			return "", false
		}
		// bar modules sit in the 2nd and 4th runs on the left half; odd
		// totals mean an L symbol, even totals a G symbol. G widths are the
		// reversed L widths of the same digit, so the digit itself is already
		// right either way.
		if (widths[offset+1]+widths[offset+3])%2 == 1 {
			parity.WriteByte('O')
		} else {
			parity.WriteByte('E')
		}
		digits.WriteByte(byte('0') + byte(digit))
	}

	lead, ok := eanParity[parity.String()]
	if !ok {
		return "", false
	}

	// right half: six R digits of four runs, starting with a bar
	for i := 0; i < 6; i++ {
		offset := 36 + i*4
		digit, ok := matchWidths(widths[offset:offset+4], true)
		if !ok {
			return "", false
		}
		digits.WriteByte(byte('0') + byte(digit))
	}

	code := string(byte('0')+byte(lead)) + digits.String()
	if strings.HasPrefix(code, "0") {
		// UPC-A is EAN-13 with a leading zero; report the 12-digit form the
		// catalog stores.
		return code[1:], true
	}
	return code, true
}

func isGuard(widths []int) bool {
	for _, w := range widths {
		if w != 1 {
			return false
		}
	}
	return true
}

// matchWidths finds the digit whose module widths match, trying the reversed
// (G symbol) orientation too. forward restricts matching to the plain table
// (right-half symbols are never reversed).
func matchWidths(w []int, forward bool) (int, bool) {
	for digit, ref := range eanWidths {
		if w[0] == ref[0] && w[1] == ref[1] && w[2] == ref[2] && w[3] == ref[3] {
			return digit, true
		}
		if forward {
			continue
		}
		if w[0] == ref[3] && w[1] == ref[2] && w[2] == ref[1] && w[3] == ref[0] {
			return digit, true
		}
	}
	return 0, false
}
