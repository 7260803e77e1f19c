package cron

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelops/roomboard/pkg/storage"
)

func TestScheduler_RunNow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := store.Save(ctx, "old.xlsx", "application/octet-stream", strings.NewReader("x"))
	require.NoError(t, err)

	s := NewScheduler(logger, store, 0)
	// Zero retention makes everything already stored expired.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.RunNow(ctx))

	_, _, err = store.Open(ctx, info.ID)
	assert.Error(t, err)
}

func TestScheduler_StartRejectsBadSchedule(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	s := NewScheduler(logger, store, time.Hour)
	assert.Error(t, s.Start("not a cron expression"))
}
