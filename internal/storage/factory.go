package storage

import (
	"fmt"

	"videoforge/internal/config"
	"videoforge/internal/ports"
	"videoforge/internal/storage/adapters/fs"
	"videoforge/internal/storage/adapters/s3"
)

// Create builds the object storage adapter selected by configuration.
func Create(cfg *config.Config, obs ports.Observability) (ports.ObjectStorage, error) {
	logger, metrics, err := obs.ComponentsScoped("storage")
	if err != nil {
		return nil, fmt.Errorf("failed to get observability components: %w", err)
	}

	switch cfg.Adapters.Storage {
	case "filesystem":
		return fs.NewStorage(cfg.Storage.BucketOrPath, logger, metrics)
	case "s3":
		return s3.New(&cfg.Storage, logger, metrics)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Adapters.Storage)
	}
}
