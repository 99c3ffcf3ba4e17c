package dbchecker

import (
	"context"
	"log/slog"
	"time"

	"github.com/memohai/vidstream/internal/healthcheck"
)

const checkTypeDatabase = "database.connection"

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker evaluates database connectivity.
type Checker struct {
	logger *slog.Logger
	db     Pinger
}

// NewChecker creates a database health checker.
func NewChecker(log *slog.Logger, db Pinger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		logger: log.With(slog.String("checker", "healthcheck_database")),
		db:     db,
	}
}

// ListChecks pings the database once.
func (c *Checker) ListChecks(ctx context.Context) []healthcheck.CheckResult {
	item := healthcheck.CheckResult{
		ID:   checkTypeDatabase,
		Type: checkTypeDatabase,
	}
	if c.db == nil {
		item.Status = healthcheck.StatusWarn
		item.Summary = "Database checker is not configured."
		return []healthcheck.CheckResult{item}
	}
	start := time.Now()
	err := c.db.Ping(ctx)
	item.Metadata = map[string]any{"latency_ms": time.Since(start).Milliseconds()}
	if err != nil {
		c.logger.Warn("database ping failed", slog.Any("error", err))
		item.Status = healthcheck.StatusError
		item.Summary = "Database is unreachable."
		item.Detail = err.Error()
		return []healthcheck.CheckResult{item}
	}
	item.Status = healthcheck.StatusOK
	item.Summary = "Database is reachable."
	return []healthcheck.CheckResult{item}
}
