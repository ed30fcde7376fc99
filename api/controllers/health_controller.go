package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritaslabs/veritas-gateway/relay"
	"github.com/veritaslabs/veritas-gateway/tool"
)

// HealthController forwards health checks to the backend.
type HealthController struct {
	relay *relay.Client
}

func NewHealthController(relayClient *relay.Client) *HealthController {
	return &HealthController{relay: relayClient}
}

// HandleHealth passes the backend health answer through; a backend that
// cannot be reached reports as a gateway error.
// GET /api/proxy/v1/health
func (ctrl *HealthController) HandleHealth(c *gin.Context) {
	status, body, err := ctrl.relay.Get(c.Request.Context(), relay.HealthPath)
	if err != nil {
		c.JSON(http.StatusBadGateway, tool.FastReturnStatusError(err.Error()))
		return
	}
	c.Data(status, "application/json", body)
}
