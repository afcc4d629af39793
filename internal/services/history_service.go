package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gembotdev/gembot/internal/cache"
	"github.com/gembotdev/gembot/internal/models"
	pgrepo "github.com/gembotdev/gembot/internal/repositories/postgres"
)

// The whole serialized store lives under one cache key; per-user entries
// are fields of the JSON value, not separate keys.
const historyCacheKey = "chat:history"

type HistoryService interface {
	// Load returns the cached store. On a miss, when userID is given,
	// it rebuilds that user's recent turns from the durable log and
	// re-primes the cache. Read failures degrade to an empty store.
	Load(ctx context.Context, userID string) models.Store
	Save(ctx context.Context, store models.Store) error
	// Clear drops one user's entry, or the whole store when userID is "".
	Clear(ctx context.Context, userID string) error
}

type historyService struct {
	cache    cache.Cache
	logs     pgrepo.ChatLogRepo
	ttl      time.Duration
	maxTurns int
	log      *logrus.Logger
}

func NewHistoryService(c cache.Cache, logs pgrepo.ChatLogRepo, ttl time.Duration, maxTurns int, log *logrus.Logger) HistoryService {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &historyService{cache: c, logs: logs, ttl: ttl, maxTurns: maxTurns, log: log}
}

func (s *historyService) Load(ctx context.Context, userID string) models.Store {
	store := models.Store{}

	hit, err := s.cache.GetJSON(ctx, historyCacheKey, &store)
	if err != nil {
		s.log.WithError(err).Warn("history cache read failed")
		return models.Store{}
	}
	if hit {
		return store
	}

	if userID == "" {
		return models.Store{}
	}

	conv := s.reconstruct(ctx, userID, s.maxTurns)
	if len(conv) == 0 {
		return models.Store{}
	}

	store = models.Store{userID: conv}
	if err := s.Save(ctx, store); err != nil {
		s.log.WithError(err).Warn("failed to re-prime history cache")
	}
	return store
}

func (s *historyService) Save(ctx context.Context, store models.Store) error {
	return s.cache.SetJSON(ctx, historyCacheKey, store, s.ttl)
}

func (s *historyService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return s.cache.Del(ctx, historyCacheKey)
	}

	store := models.Store{}
	if _, err := s.cache.GetJSON(ctx, historyCacheKey, &store); err != nil {
		return err
	}
	if _, ok := store[userID]; !ok {
		return nil
	}
	delete(store, userID)
	return s.Save(ctx, store)
}

// reconstruct walks the durable log newest-first, skipping diagnostic
// rows, and returns up to limit of the user's turns in chronological
// order. Failures degrade to empty.
func (s *historyService) reconstruct(ctx context.Context, userID string, limit int) models.Conversation {
	// Over-fetch: diagnostic rows sit between turns and get filtered out.
	rows, err := s.logs.LatestByUser(ctx, userID, limit*2)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("history reconstruction failed")
		return nil
	}

	picked := make([]models.ChatLog, 0, limit)
	for _, row := range rows { // newest first
		if row.Role == models.RoleSystem {
			continue
		}
		picked = append(picked, row)
		if len(picked) == limit {
			break
		}
	}

	conv := make(models.Conversation, len(picked))
	for i, row := range picked {
		conv[len(picked)-1-i] = models.Turn{Role: row.Role, Text: row.Text}
	}
	return conv
}
