package tool

import (
	"flag"

	"github.com/veritaslabs/veritas-gateway/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override gateway listen port")
	flag.StringVar(&cfg.UseBackendAddress, "useBackendAddress", "", "override backend base address (e.g. http://127.0.0.1:8000)")
	flag.BoolVar(&cfg.UseEmbeddedEngine, "useEmbeddedEngine", false, "serve the analysis engine in-process instead of relaying to an external one")
	flag.Int64Var(&cfg.UseMaxUploadBytes, "useMaxUploadBytes", 0, "override maximum accepted upload size in bytes")
	flag.Parse()
	return cfg
}
