package observability

import (
	"fmt"

	"videoforge/internal/config"
	"videoforge/internal/observability/adapters/stdout"
	"videoforge/internal/observability/metrics"
	"videoforge/internal/ports"
)

// createAdapters selects logger and metrics implementations by configuration
func createAdapters(cfg *config.Config) (ports.Logger, ports.Metrics, error) {
	var logger ports.Logger
	switch cfg.Adapters.Logger {
	case "stdout", "":
		logger = stdout.NewLogger(cfg.LogLevel)
	default:
		return nil, nil, fmt.Errorf("unknown logger adapter: %q", cfg.Adapters.Logger)
	}

	var m ports.Metrics
	switch cfg.Adapters.Metrics {
	case "stdout", "":
		m = stdout.NewMetrics()
	case "prometheus":
		m = metrics.New(metricsServiceName(cfg.ServiceName))
	default:
		return nil, nil, fmt.Errorf("unknown metrics adapter: %q", cfg.Adapters.Metrics)
	}

	return logger, m, nil
}

// metricsServiceName normalizes the service name into a prometheus-safe prefix
func metricsServiceName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
