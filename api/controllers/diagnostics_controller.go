package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veritaslabs/veritas-gateway/relay"
	"github.com/veritaslabs/veritas-gateway/tool"
)

const icmpProbeTimeout = 2 * time.Second

// DiagnosticsController reports backend reachability for the web UI: an ICMP
// probe of the backend host alongside the HTTP health passthrough.
type DiagnosticsController struct {
	relay *relay.Client
}

func NewDiagnosticsController(relayClient *relay.Client) *DiagnosticsController {
	return &DiagnosticsController{relay: relayClient}
}

// HandleDiagnostics probes the backend host.
// GET /api/self/v1/diagnostics
func (ctrl *DiagnosticsController) HandleDiagnostics(c *gin.Context) {
	report := gin.H{"backend": ctrl.relay.BaseURL()}

	if host := ctrl.relay.Host(); host != "" {
		probe, err := tool.QuickICMPProbe(host, icmpProbeTimeout)
		if err != nil {
			report["icmp"] = gin.H{"error": err.Error()}
		} else {
			report["icmp"] = gin.H{
				"reachable":  probe.Reachable,
				"packetLoss": probe.PacketLoss,
				"avgRttMs":   probe.AvgRtt.Milliseconds(),
			}
		}
	}

	status, body, err := ctrl.relay.Get(c.Request.Context(), relay.HealthPath)
	if err != nil {
		report["health"] = gin.H{"error": err.Error()}
	} else {
		report["health"] = gin.H{"status": status, "body": string(body)}
	}

	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(report))
}
