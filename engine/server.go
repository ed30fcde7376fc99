package engine

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/gin-gonic/gin"

	"github.com/veritaslabs/veritas-gateway/tool"
)

// Server is the forensic analysis backend. It exposes the same endpoints the
// gateway relays to, so a deployment can run self-contained when no external
// analysis service is available.
type Server struct {
	maxUploadBytes int64
	engine         *gin.Engine
}

func NewServer(maxUploadBytes int64) *Server {
	s := &Server{maxUploadBytes: maxUploadBytes}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if s.maxUploadBytes > 0 {
		engine.MaxMultipartMemory = s.maxUploadBytes
	}

	engine.GET("/health", s.handleHealth)
	engine.POST("/analyze/sneaker_stitches", s.handleSneakerStitches)
	engine.POST("/analyze/box_advanced", s.handleBoxAdvanced)
	engine.POST("/analyze/yolo_visual", s.handleVisual)
	engine.POST("/analyze/combined", s.handleCombined)

	s.engine = engine
}

// Handler exposes the routing tree for in-process use.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(addr string) error {
	tool.DefaultLogger.Infof("Forensic engine listening on %s", addr)
	server := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}
	return server.ListenAndServe()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readUpload pulls the shoe_id field and file bytes out of the multipart
// request, answering 400 itself when either is unusable.
func readUpload(c *gin.Context) (string, []byte, string, bool) {
	shoeID := c.PostForm("shoe_id")
	if shoeID == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("shoe_id is required"))
		return "", nil, "", false
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("file is required"))
		return "", nil, "", false
	}
	opened, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("failed to open upload"))
		return "", nil, "", false
	}
	defer func() { _ = opened.Close() }()
	data, err := io.ReadAll(opened)
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("failed to read upload"))
		return "", nil, "", false
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Empty file upload"))
		return "", nil, "", false
	}
	return shoeID, data, contentTypeOf(header), true
}

func contentTypeOf(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}

func (s *Server) handleSneakerStitches(c *gin.Context) {
	shoeID, data, contentType, ok := readUpload(c)
	if !ok {
		return
	}
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Uploaded file must be an image"))
		return
	}

	record, found := LookupGolden(shoeID)
	if !found {
		c.JSON(http.StatusNotFound, tool.FastReturnError(fmt.Sprintf("Shoe model '%s' not found in database", shoeID)))
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to decode image"))
		return
	}

	detected, confidence, _ := detectStitches(img, record.StitchROI)
	detectionArea := "full image"
	if record.StitchROI != nil {
		detectionArea = record.StitchROI.Name
	}
	tool.DefaultLogger.Infof("Detected stitches in %s: %d, Expected: %d, Confidence: %.2f",
		detectionArea, detected, record.ExpectedStitches, confidence)

	difference := detected - record.ExpectedStitches
	if difference < 0 {
		difference = -difference
	}

	var score int
	switch {
	case record.Tolerance > 0 && difference <= record.Tolerance:
		// max 20% penalty within tolerance
		score = int(100 - float64(difference)/float64(record.Tolerance)*20)
	case record.Tolerance == 0 && difference == 0:
		score = 100
	case record.ExpectedStitches > 0:
		excess := difference - record.Tolerance
		score = int(math.Max(0, 80-float64(excess)/float64(record.ExpectedStitches)*100))
	default:
		score = 0
	}

	verdict := "FAIL"
	analysis := "Stitch count deviation detected"
	if score >= 70 {
		verdict = "PASS"
		analysis = "Stitch pattern matches authentic"
	}

	c.JSON(http.StatusOK, gin.H{
		"verdict":           verdict,
		"realness_percent":  score,
		"detected_stitches": detected,
		"expected_stitches": record.ExpectedStitches,
		"tolerance":         record.Tolerance,
		"difference":        difference,
		"detection_area":    detectionArea,
		"analysis":          analysis,
	})
}

func (s *Server) handleBoxAdvanced(c *gin.Context) {
	shoeID, data, _, ok := readUpload(c)
	if !ok {
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to decode image"))
		return
	}
	c.JSON(http.StatusOK, analyzeBox(img, shoeID))
}

func (s *Server) handleVisual(c *gin.Context) {
	_, data, contentType, ok := readUpload(c)
	if !ok {
		return
	}
	if !strings.HasPrefix(contentType, "video/") && contentType != "image/gif" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Uploaded file must be a video"))
		return
	}
	tool.DefaultLogger.Infof("Video size: %.2f MB", float64(len(data))/(1024*1024))

	frames, err := decodeVideoFrames(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to open video - format may not be supported"))
		return
	}
	c.JSON(http.StatusOK, analyzeVideo(frames))
}

// handleCombined folds the three per-category scores into the final verdict:
// 30% box, 40% video, 30% sneaker. Seventy and above is AUTHENTIC, forty and
// below COUNTERFEIT, anything between INCONCLUSIVE.
func (s *Server) handleCombined(c *gin.Context) {
	shoeID := c.PostForm("shoe_id")
	if shoeID == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("shoe_id is required"))
		return
	}

	percents := make(map[string]float64, 3)
	for _, field := range []string{"box_percent", "video_percent", "sneaker_percent"} {
		raw := c.PostForm(field)
		if raw == "" {
			c.JSON(http.StatusBadRequest, tool.FastReturnError(field+" is required"))
			return
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError(field+" must be numeric"))
			return
		}
		percents[field] = value
	}

	combined := int(math.Round(0.3*percents["box_percent"] + 0.4*percents["video_percent"] + 0.3*percents["sneaker_percent"]))

	verdict := "INCONCLUSIVE"
	confidence := "medium"
	switch {
	case combined >= 70:
		verdict = "AUTHENTIC"
		confidence = "high"
	case combined <= 40:
		verdict = "COUNTERFEIT"
		confidence = "high"
	}

	c.JSON(http.StatusOK, gin.H{
		"realness_percent": combined,
		"verdict":          verdict,
		"box_percent":      percents["box_percent"],
		"video_percent":    percents["video_percent"],
		"sneaker_percent":  percents["sneaker_percent"],
		"confidence":       confidence,
	})
}
