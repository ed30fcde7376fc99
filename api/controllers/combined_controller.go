package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritaslabs/veritas-gateway/relay"
	"github.com/veritaslabs/veritas-gateway/tool"
)

// CombinedController proxies the aggregation call that reduces the three
// category percentages into one overall verdict.
type CombinedController struct {
	relay *relay.Client
}

func NewCombinedController(relayClient *relay.Client) *CombinedController {
	return &CombinedController{relay: relayClient}
}

var combinedFields = []string{"shoe_id", "sneaker_percent", "box_percent", "video_percent"}

// HandleCombined forwards the aggregation request.
// POST /api/proxy/v1/analyze/combined
func (ctrl *CombinedController) HandleCombined(c *gin.Context) {
	fields := make(map[string]string, len(combinedFields))
	for _, name := range combinedFields {
		value := c.PostForm(name)
		if value == "" {
			c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required field: "+name))
			return
		}
		fields[name] = value
	}
	status, body, err := ctrl.relay.PostMultipart(c.Request.Context(), relay.CombinedPath, fields, nil)
	passthrough(c, status, body, err)
}
