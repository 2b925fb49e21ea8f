package logcfg

import (
	"os"

	logs "github.com/danmuck/smplog"
)

const envConfigPath = "SMPLOG_CONFIG"

// Load returns file-backed logging configuration when available, otherwise defaults.
// An explicit path, when given, is tried before the environment and the
// working-directory candidates.
func Load(explicit ...string) logs.Config {
	candidates := make([]string, 0, len(explicit)+3)
	for _, path := range explicit {
		if path != "" {
			candidates = append(candidates, path)
		}
	}
	if path := os.Getenv(envConfigPath); path != "" {
		candidates = append(candidates, path)
	}
	candidates = append(candidates,
		"./smplog.config.toml",
		"./local/smplog.config.toml",
	)

	for _, path := range candidates {
		if cfg, err := logs.ConfigFromFile(path); err == nil {
			return cfg
		}
	}

	return logs.DefaultConfig()
}
