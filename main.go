package main

import (
	"io/fs"
	"net/url"
	"time"

	"github.com/veritaslabs/veritas-gateway/api"
	"github.com/veritaslabs/veritas-gateway/api/models"
	"github.com/veritaslabs/veritas-gateway/engine"
	"github.com/veritaslabs/veritas-gateway/relay"
	"github.com/veritaslabs/veritas-gateway/tool"
)

func main() {
	cfg := tool.SetFlags()
	tool.InitLogger()
	tool.SetLogMode(cfg.Log)

	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if cfg.UsePort > 0 {
		appCfg.Port = cfg.UsePort
	}
	if cfg.UseBackendAddress != "" {
		appCfg.BackendAddress = cfg.UseBackendAddress
	}
	if cfg.UseEmbeddedEngine {
		appCfg.EmbeddedEngine = true
	}
	if cfg.UseMaxUploadBytes > 0 {
		appCfg.MaxUploadBytes = cfg.UseMaxUploadBytes
	}

	if appCfg.SessionTTLMinutes > 0 {
		models.SetSessionTTL(time.Duration(appCfg.SessionTTLMinutes) * time.Minute)
	}

	if appCfg.EmbeddedEngine {
		backendURL, err := url.Parse(appCfg.BackendAddress)
		if err != nil {
			tool.DefaultLogger.Fatalf("Invalid backend address %q: %v", appCfg.BackendAddress, err)
		}
		forensic := engine.NewServer(appCfg.MaxUploadBytes)
		go func() {
			tool.DefaultLogger.Infof("Starting embedded forensic engine on %s", backendURL.Host)
			if err := forensic.Start(backendURL.Host); err != nil {
				tool.DefaultLogger.Fatalf("Embedded engine startup failed: %v", err)
			}
		}()
	}

	templates, err := fs.Sub(templateFS, "web/templates")
	if err != nil {
		tool.DefaultLogger.Fatalf("Failed to locate page templates: %v", err)
	}

	relayClient := relay.NewClient(appCfg.BackendAddress, nil)
	server := api.NewServer(appCfg.Port, relayClient, templates, appCfg.MaxUploadBytes)
	if err := server.Start(); err != nil {
		tool.DefaultLogger.Fatalf("Gateway startup failed: %v", err)
	}
}
