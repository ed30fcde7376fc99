package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	Port              int    `yaml:"port"`
	BackendAddress    string `yaml:"backendAddress"`
	MaxUploadBytes    int64  `yaml:"maxUploadBytes"`
	EmbeddedEngine    bool   `yaml:"embeddedEngine"`
	SessionTTLMinutes int    `yaml:"sessionTTLMinutes"`
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log               string
	UseConfigPath     string
	UsePort           int
	UseBackendAddress string // override backend base address, e.g. http://127.0.0.1:8000
	UseEmbeddedEngine bool   // if true, serve the Go analysis engine in-process instead of relaying to an external one.
	UseMaxUploadBytes int64
}
