package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gembotdev/gembot/internal/cache"
	"github.com/gembotdev/gembot/internal/models"
)

// fakeLogRepo is an in-memory ChatLogRepo; rows are held in write order.
type fakeLogRepo struct {
	rows      []models.ChatLog
	insertErr error
	readErr   error
}

func (r *fakeLogRepo) Insert(_ context.Context, row *models.ChatLog) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.rows = append(r.rows, *row)
	return nil
}

func (r *fakeLogRepo) LatestByUser(_ context.Context, userID string, n int) ([]models.ChatLog, error) {
	if r.readErr != nil {
		return nil, r.readErr
	}
	var out []models.ChatLog
	for i := len(r.rows) - 1; i >= 0 && len(out) < n; i-- {
		if r.rows[i].UserID == userID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *fakeLogRepo) ListByUser(_ context.Context, userID string) ([]models.ChatLog, error) {
	if r.readErr != nil {
		return nil, r.readErr
	}
	var out []models.ChatLog
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) rowsFor(userID string) []models.ChatLog {
	out, _ := r.ListByUser(context.Background(), userID)
	return out
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedRow(repo *fakeLogRepo, userID, role, text string) {
	repo.rows = append(repo.rows, models.ChatLog{
		UserID:    userID,
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
}

func TestHistorySaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewHistoryService(cache.NewMemoryCache(), &fakeLogRepo{}, time.Hour, 10, quietLogger())

	want := models.Store{
		"u1": {{Role: models.RoleUser, Text: "hi"}, {Role: models.RoleModel, Text: "hello"}},
		"u2": {{Role: models.RoleUser, Text: "yo"}},
	}
	require.NoError(t, svc.Save(ctx, want))

	got := svc.Load(ctx, "")
	assert.Equal(t, want, got)
}

func TestHistoryLoadMissReturnsEmptyWithoutUser(t *testing.T) {
	svc := NewHistoryService(cache.NewMemoryCache(), &fakeLogRepo{}, time.Hour, 10, quietLogger())
	got := svc.Load(context.Background(), "")
	assert.Empty(t, got)
}

func TestHistoryLoadReconstructsFromLog(t *testing.T) {
	ctx := context.Background()
	repo := &fakeLogRepo{}
	seedRow(repo, "u1", models.RoleUser, "a")
	seedRow(repo, "u1", models.RoleModel, "b")
	seedRow(repo, "other", models.RoleUser, "not mine")
	seedRow(repo, "u1", models.RoleSystem, "llm: upstream status 503")
	seedRow(repo, "u1", models.RoleUser, "c")
	seedRow(repo, "u1", models.RoleModel, "d")

	svc := NewHistoryService(cache.NewMemoryCache(), repo, time.Hour, 3, quietLogger())

	got := svc.Load(ctx, "u1")
	want := models.Conversation{
		{Role: models.RoleModel, Text: "b"},
		{Role: models.RoleUser, Text: "c"},
		{Role: models.RoleModel, Text: "d"},
	}
	assert.Equal(t, models.Store{"u1": want}, got)

	// Reconstruction re-primed the cache: a second load must not need
	// the log anymore.
	repo.readErr = errors.New("db down")
	again := svc.Load(ctx, "u1")
	assert.Equal(t, models.Store{"u1": want}, again)
}

func TestHistoryReconstructSkipsDiagnosticsAndBoundsLimit(t *testing.T) {
	repo := &fakeLogRepo{}
	for i := 0; i < 30; i++ {
		role := models.RoleUser
		if i%3 == 2 {
			role = models.RoleSystem
		}
		seedRow(repo, "u1", role, "t")
	}

	svc := &historyService{cache: cache.NewMemoryCache(), logs: repo, maxTurns: 10, log: quietLogger()}
	conv := svc.reconstruct(context.Background(), "u1", 5)

	assert.Len(t, conv, 5)
	for _, turn := range conv {
		assert.NotEqual(t, models.RoleSystem, turn.Role)
	}
}

func TestHistoryLoadDegradesOnLogError(t *testing.T) {
	repo := &fakeLogRepo{readErr: errors.New("db down")}
	svc := NewHistoryService(cache.NewMemoryCache(), repo, time.Hour, 10, quietLogger())

	got := svc.Load(context.Background(), "u1")
	assert.Empty(t, got)
}

func TestHistoryClear(t *testing.T) {
	ctx := context.Background()
	svc := NewHistoryService(cache.NewMemoryCache(), &fakeLogRepo{}, time.Hour, 10, quietLogger())

	store := models.Store{
		"u1": {{Role: models.RoleUser, Text: "hi"}},
		"u2": {{Role: models.RoleUser, Text: "yo"}},
	}
	require.NoError(t, svc.Save(ctx, store))

	// single user
	require.NoError(t, svc.Clear(ctx, "u1"))
	got := svc.Load(ctx, "")
	assert.NotContains(t, got, "u1")
	assert.Contains(t, got, "u2")

	// everything
	require.NoError(t, svc.Clear(ctx, ""))
	assert.Empty(t, svc.Load(ctx, ""))
}
