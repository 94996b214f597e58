package status

import (
	"fmt"

	"videoforge/internal/config"
	"videoforge/internal/ports"
	"videoforge/internal/status/adapters/memory"
	"videoforge/internal/status/adapters/redis"
)

// Create builds the status store adapter selected by configuration.
func Create(cfg *config.Config, obs ports.Observability) (ports.StatusStore, error) {
	logger, _, err := obs.ComponentsScoped("status")
	if err != nil {
		return nil, fmt.Errorf("failed to get observability components: %w", err)
	}

	switch cfg.Adapters.Status {
	case "memory":
		return memory.NewStore(), nil
	case "redis":
		return redis.NewStore(&cfg.Status, logger)
	default:
		return nil, fmt.Errorf("unknown status adapter: %s", cfg.Adapters.Status)
	}
}
