package engine

import (
	"image"
	"math"

	"github.com/nfnt/resize"
)

const (
	stitchMaxDimension = 512
	sharpnessThreshold = 100.0
	edgeThreshold      = 80.0
	minStitchArea      = 3
	maxStitchArea      = 600
	minStitchAspect    = 1.8
	minSegmentLen      = 4
	maxSegmentLen      = 30
)

// cropROI cuts the region of interest out of the image, clamped to bounds.
func cropROI(img image.Image, roi *ROI) image.Image {
	if roi == nil {
		return img
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	x := bounds.Min.X + int(float64(w)*roi.XPercent)
	y := bounds.Min.Y + int(float64(h)*roi.YPercent)
	rw := int(float64(w) * roi.WidthPercent)
	rh := int(float64(h) * roi.HeightPercent)
	rect := image.Rect(x, y, x+rw, y+rh).Intersect(bounds)
	if rect.Empty() {
		return img
	}
	cropped := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for yy := 0; yy < rect.Dy(); yy++ {
		for xx := 0; xx < rect.Dx(); xx++ {
			cropped.Set(xx, yy, img.At(rect.Min.X+xx, rect.Min.Y+yy))
		}
	}
	return cropped
}

// detectStitches estimates the stitch count visible in the image (optionally
// restricted to a region of interest) and reports a confidence derived from
// the agreement of two independent counting methods.
func detectStitches(img image.Image, roi *ROI) (int, float64, map[string]any) {
	img = cropROI(img, roi)

	// Large uploads are downscaled before the per-pixel passes.
	bounds := img.Bounds()
	if bounds.Dx() > stitchMaxDimension || bounds.Dy() > stitchMaxDimension {
		img = resize.Thumbnail(stitchMaxDimension, stitchMaxDimension, img, resize.Lanczos3)
	}
	gray := toGray(img)

	metrics := make(map[string]any)
	sharpness := laplacianVariance(gray)
	isSharp := sharpness > sharpnessThreshold
	metrics["sharpness"] = sharpness
	metrics["is_sharp"] = isSharp

	edges := binaryEdges(gray, edgeThreshold)

	contourCount := countElongatedComponents(edges)
	segmentCount := countStitchSegments(edges)

	maxCount := contourCount
	if segmentCount > maxCount {
		maxCount = segmentCount
	}
	variance := math.Abs(float64(contourCount - segmentCount))
	confidence := 1.0 - variance/float64(maxCount+1)
	if !isSharp {
		confidence *= 0.7
	}

	var estimated int
	if confidence > 0.6 {
		estimated = int(0.65*float64(contourCount) + 0.35*float64(segmentCount))
	} else {
		estimated = (contourCount + segmentCount) / 2
	}

	metrics["contour_count"] = contourCount
	metrics["line_count"] = segmentCount
	metrics["confidence"] = math.Round(confidence*1000) / 1000

	return estimated, confidence, metrics
}

// binaryEdges thresholds the Sobel magnitude map into an edge mask.
func binaryEdges(gray *image.Gray, threshold float64) [][]bool {
	mag := sobelMagnitude(gray)
	edges := make([][]bool, len(mag))
	for y, row := range mag {
		edges[y] = make([]bool, len(row))
		for x, v := range row {
			edges[y][x] = v >= threshold
		}
	}
	return edges
}

// countElongatedComponents labels 4-connected edge components and keeps the
// ones shaped like stitches: small area, elongated bounding box.
func countElongatedComponents(edges [][]bool) int {
	h := len(edges)
	if h == 0 {
		return 0
	}
	w := len(edges[0])
	visited := make([][]bool, h)
	for y := range visited {
		visited[y] = make([]bool, w)
	}

	count := 0
	var stack [][2]int
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			if !edges[sy][sx] || visited[sy][sx] {
				continue
			}
			area := 0
			minX, minY, maxX, maxY := sx, sy, sx, sy
			stack = stack[:0]
			stack = append(stack, [2]int{sx, sy})
			visited[sy][sx] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				x, y := p[0], p[1]
				area++
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
				for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
					nx, ny := n[0], n[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h || visited[ny][nx] || !edges[ny][nx] {
						continue
					}
					visited[ny][nx] = true
					stack = append(stack, [2]int{nx, ny})
				}
			}
			if area < minStitchArea || area > maxStitchArea {
				continue
			}
			bw := maxX - minX + 1
			bh := maxY - minY + 1
			long, short := bw, bh
			if bh > bw {
				long, short = bh, bw
			}
			aspect := float64(long) / (float64(short) + 1e-5)
			if aspect > minStitchAspect {
				count++
			}
		}
	}
	return count
}

// countStitchSegments counts horizontal and vertical edge runs whose length
// falls in the typical stitch range. This is the second, independent counting
// method the confidence measure compares against.
func countStitchSegments(edges [][]bool) int {
	h := len(edges)
	if h == 0 {
		return 0
	}
	w := len(edges[0])
	count := 0
	for y := 0; y < h; y++ {
		run := 0
		for x := 0; x <= w; x++ {
			if x < w && edges[y][x] {
				run++
				continue
			}
			if run > minSegmentLen && run < maxSegmentLen {
				count++
			}
			run = 0
		}
	}
	for x := 0; x < w; x++ {
		run := 0
		for y := 0; y <= h; y++ {
			if y < h && edges[y][x] {
				run++
				continue
			}
			if run > minSegmentLen && run < maxSegmentLen {
				count++
			}
			run = 0
		}
	}
	return count
}
