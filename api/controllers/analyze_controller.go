package controllers

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/veritaslabs/veritas-gateway/relay"
	"github.com/veritaslabs/veritas-gateway/tool"
	"github.com/veritaslabs/veritas-gateway/types"
)

// AnalyzeController exposes the three category proxy endpoints. Each accepts
// a multipart submission, validates the required fields, re-encodes the
// payload, and passes the backend's answer straight through.
type AnalyzeController struct {
	relay *relay.Client
}

func NewAnalyzeController(relayClient *relay.Client) *AnalyzeController {
	return &AnalyzeController{relay: relayClient}
}

// HandleAnalyze returns the proxy handler for one category.
// POST /api/proxy/v1/analyze/:category
func (ctrl *AnalyzeController) HandleAnalyze(category types.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		shoeID := c.PostForm("shoe_id")
		if shoeID == "" {
			c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required field: shoe_id"))
			return
		}
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required field: file"))
			return
		}
		opened, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read uploaded file: "+err.Error()))
			return
		}
		defer func() {
			if err := opened.Close(); err != nil {
				tool.DefaultLogger.Errorf("Failed to close uploaded file: %v", err)
			}
		}()
		data, err := io.ReadAll(opened)
		if err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read uploaded file: "+err.Error()))
			return
		}

		staged := &types.StagedFile{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		}
		status, body, err := ctrl.relay.PostMultipart(c.Request.Context(), category.BackendPath(), map[string]string{"shoe_id": shoeID}, staged)
		passthrough(c, status, body, err)
	}
}

// passthrough implements the shared proxy response contract: transport
// failure → 502 with the error message, upstream non-success → same status
// with the body text, success → the backend JSON unchanged.
func passthrough(c *gin.Context, status int, body []byte, err error) {
	if err != nil {
		c.JSON(http.StatusBadGateway, tool.FastReturnError(err.Error()))
		return
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		c.JSON(status, tool.FastReturnError(string(body)))
		return
	}
	var parsed any
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		c.JSON(http.StatusBadGateway, tool.FastReturnError("Backend returned malformed JSON: "+err.Error()))
		return
	}
	c.Data(status, "application/json", body)
}
