package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/jmoiron/sqlx"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const probeQuery = "SELECT 1"

// HandleSource exposes the current handle without connecting.
type HandleSource interface {
	Current() *sqlx.DB
}

type HealthService struct {
	handles HandleSource
	logger  logging.Logger
	now     func() time.Time
}

func NewHealthService(h HandleSource, l logging.Logger) *HealthService {
	return &HealthService{
		handles: h,
		logger:  l.With("module", "health"),
		now:     time.Now,
	}
}

// Check reports "disconnected" while no connection was ever made, probes
// the store otherwise and reports "error" if the probe fails.
func (s *HealthService) Check(ctx context.Context) models.HealthStatus {
	status := models.HealthStatus{
		Status:    models.StatusHealthy,
		Timestamp: s.now().UTC().Format(TimestampLayout),
		Database:  models.DatabaseDisconnected,
	}

	db := s.handles.Current()
	if db == nil {
		return status
	}

	if _, err := db.ExecContext(ctx, probeQuery); err != nil {
		s.logger.Error(ctx, "health check error", "error", err)
		status.Status = models.StatusUnhealthy
		status.Database = models.DatabaseError
		status.Error = err.Error()
		return status
	}

	status.Database = models.DatabaseConnected
	return status
}
