package tool

import (
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// ProbeResult is the outcome of an ICMP reachability probe against the
// backend host.
type ProbeResult struct {
	Host       string        `json:"host"`
	Reachable  bool          `json:"reachable"`
	PacketLoss float64       `json:"packetLoss"`
	AvgRtt     time.Duration `json:"avgRtt"`
}

// QuickICMPProbe pings the host once in unprivileged (UDP) mode and reports
// whether it answered within the timeout.
func QuickICMPProbe(host string, timeout time.Duration) (*ProbeResult, error) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return nil, err
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(false)
	if err := pinger.Run(); err != nil {
		return nil, err
	}
	stats := pinger.Statistics()
	return &ProbeResult{
		Host:       host,
		Reachable:  stats.PacketsRecv > 0,
		PacketLoss: stats.PacketLoss,
		AvgRtt:     stats.AvgRtt,
	}, nil
}
