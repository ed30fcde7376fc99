package engine

import (
	"image"
	"math"
)

// toGray flattens any decoded image into 8-bit grayscale.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// lbpHistogram computes a normalized 256-bin local binary pattern histogram
// (P=8, R=1 neighborhood). Border pixels use edge padding.
func lbpHistogram(gray *image.Gray) [256]float64 {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	var hist [256]float64
	if w == 0 || h == 0 {
		return hist
	}
	at := func(x, y int) uint8 {
		if x < 0 {
			x = 0
		}
		if y < 0 {
			y = 0
		}
		if x >= w {
			x = w - 1
		}
		if y >= h {
			y = h - 1
		}
		return gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
	}
	// neighbor offsets, bit order matches the histogram bins used throughout
	offsets := [8][2]int{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := at(x, y)
			var code uint8
			for i, off := range offsets {
				if at(x+off[0], y+off[1]) >= center {
					code |= 1 << uint(i)
				}
			}
			hist[code]++
		}
	}
	total := float64(w * h)
	for i := range hist {
		hist[i] /= total
	}
	return hist
}

// cosineSimilarity between two histograms; zero when either is empty.
func cosineSimilarity(a, b [256]float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// histogramEntropy in bits; max for 256 bins is 8.
func histogramEntropy(hist [256]float64) float64 {
	const eps = 1e-12
	var entropy float64
	for _, p := range hist {
		if p < eps {
			p = eps
		}
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// sobelMagnitude computes the gradient magnitude map of a grayscale image.
func sobelMagnitude(gray *image.Gray) [][]float64 {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mag := make([][]float64, h)
	for y := range mag {
		mag[y] = make([]float64, w)
	}
	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		}
		if y < 0 {
			y = 0
		}
		if x >= w {
			x = w - 1
		}
		if y >= h {
			y = h - 1
		}
		return float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			mag[y][x] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return mag
}

// edgeDensity is the fraction of pixels whose gradient magnitude crosses the
// threshold.
func edgeDensity(gray *image.Gray, threshold float64) float64 {
	mag := sobelMagnitude(gray)
	if len(mag) == 0 || len(mag[0]) == 0 {
		return 0
	}
	var edges int
	for _, row := range mag {
		for _, v := range row {
			if v >= threshold {
				edges++
			}
		}
	}
	return float64(edges) / float64(len(mag)*len(mag[0]))
}

// laplacianVariance is the sharpness measure: variance of the 4-neighbor
// Laplacian response. Blurry uploads score low.
func laplacianVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	at := func(x, y int) float64 {
		return float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
	}
	values := make([]float64, 0, (w-2)*(h-2))
	var sum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
			values = append(values, v)
			sum += v
		}
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return variance / float64(len(values))
}
