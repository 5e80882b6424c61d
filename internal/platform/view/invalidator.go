// Package view declares the cache-invalidation hook for rendered views.
// The core only names which logical views went stale; how invalidation is
// implemented belongs to the frontend layer.
package view

import (
	"context"
	"log/slog"
)

// Known logical view paths
const (
	DashboardPath     = "/dashboard"
	AccountPathPrefix = "/account/"
)

// Invalidator marks logical views stale after a mutation
type Invalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// LogInvalidator records invalidations in the log. It stands in for the
// frontend's cache hook in deployments where rendering is out of process.
type LogInvalidator struct {
	logger *slog.Logger
}

func NewLogInvalidator(logger *slog.Logger) *LogInvalidator {
	return &LogInvalidator{logger: logger}
}

func (i *LogInvalidator) Invalidate(ctx context.Context, paths ...string) {
	i.logger.Debug("Invalidating views", "paths", paths)
}

var _ Invalidator = (*LogInvalidator)(nil)
