package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/gembotdev/gembot/internal/models"
	"github.com/gembotdev/gembot/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Set(ctx context.Context, key, value string) error
}

type settingRepo struct {
	col *mongo.Collection
}

func NewSettingRepo(db *mongo.Database) SettingRepository {
	return &settingRepo{col: db.Collection("settings")}
}

func (r *settingRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	var s models.Setting
	err := r.col.FindOne(ctx, bson.M{"key": key}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *settingRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{
			"value":      value,
			"updated_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
