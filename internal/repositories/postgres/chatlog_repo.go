package postgres

import (
	"context"

	"github.com/gembotdev/gembot/internal/models"
	"gorm.io/gorm"
)

type ChatLogRepo interface {
	Insert(ctx context.Context, row *models.ChatLog) error
	// LatestByUser returns up to n rows for the user, newest first,
	// diagnostic rows included.
	LatestByUser(ctx context.Context, userID string, n int) ([]models.ChatLog, error)
	// ListByUser returns the user's full log in write order (for export).
	ListByUser(ctx context.Context, userID string) ([]models.ChatLog, error)
}

type chatLogRepo struct {
	db *gorm.DB
}

func NewChatLogRepo(db *gorm.DB) ChatLogRepo {
	return &chatLogRepo{db: db}
}

func (r *chatLogRepo) Insert(ctx context.Context, row *models.ChatLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *chatLogRepo) LatestByUser(ctx context.Context, userID string, n int) ([]models.ChatLog, error) {
	if n <= 0 {
		n = 20
	}
	var rows []models.ChatLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}

func (r *chatLogRepo) ListByUser(ctx context.Context, userID string) ([]models.ChatLog, error) {
	var rows []models.ChatLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp ASC").
		Find(&rows).Error
	return rows, err
}
