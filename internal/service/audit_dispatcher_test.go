package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/beasiswa-status-api/internal/models"
)

func TestAuditDispatcherFlushesOnStop(t *testing.T) {
	store := &mockAuditWriter{}
	d := NewAuditDispatcher(store, nil)
	d.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, d.CreateAuditLog(context.Background(), &models.AuditLog{Action: models.AuditActionApplicationUpdate}))
	}
	d.Stop(context.Background())

	assert.Len(t, store.entries(), 5)
	for _, entry := range store.entries() {
		assert.False(t, entry.CreatedAt.IsZero())
	}
}

func TestAuditDispatcherWritesInlineWhenStopped(t *testing.T) {
	store := &mockAuditWriter{}
	d := NewAuditDispatcher(store, nil)

	require.NoError(t, d.CreateAuditLog(context.Background(), &models.AuditLog{Action: models.AuditActionLogin}))
	assert.Len(t, store.entries(), 1)
}
