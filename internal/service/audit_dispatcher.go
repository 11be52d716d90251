package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/beasiswa-status-api/internal/models"
	"github.com/noah-isme/beasiswa-status-api/pkg/jobs"
)

// AuditDispatcher moves audit writes off the request path. Entries that cannot be queued
// are written synchronously so the trail stays complete.
type AuditDispatcher struct {
	store  auditWriter
	queue  *jobs.Queue[*models.AuditLog]
	logger *zap.Logger
}

// NewAuditDispatcher wraps store with a background queue.
func NewAuditDispatcher(store auditWriter, logger *zap.Logger) *AuditDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AuditDispatcher{store: store, logger: logger}
	d.queue = jobs.NewQueue("audit", func(ctx context.Context, entry *models.AuditLog) error {
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return store.CreateAuditLog(writeCtx, entry)
	}, jobs.QueueConfig{Workers: 2, BufferSize: 256, MaxRetries: 2, Logger: logger})
	return d
}

// Start launches the workers.
func (d *AuditDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop flushes queued entries until ctx expires.
func (d *AuditDispatcher) Stop(ctx context.Context) {
	d.queue.Stop(ctx)
}

// CreateAuditLog queues entry for persistence.
func (d *AuditDispatcher) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := d.queue.Enqueue(entry); err != nil {
		d.logger.Debug("audit queue unavailable, writing inline", zap.Error(err))
		return d.store.CreateAuditLog(context.WithoutCancel(ctx), entry)
	}
	return nil
}
