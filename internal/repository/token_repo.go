package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/credentials"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

const DefaultTokenName = "default"

// TokenRepository stores one named credential in postgres. It satisfies
// credentials.Store.
type TokenRepository struct {
	db   *gorm.DB
	name string
}

func NewTokenRepository(db *gorm.DB, name string) *TokenRepository {
	if name == "" {
		name = DefaultTokenName
	}
	return &TokenRepository{db: db, name: name}
}

func (r *TokenRepository) Load(ctx context.Context) (string, error) {
	var t models.AuthToken
	err := r.db.WithContext(ctx).Where("name = ?", r.name).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", credentials.ErrNoToken
	}
	if err != nil {
		return "", err
	}
	return t.Token, nil
}

// Save upserts the token row.
func (r *TokenRepository) Save(ctx context.Context, token string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(&models.AuthToken{
		Name:      r.name,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}

func (r *TokenRepository) Delete(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("name = ?", r.name).Delete(&models.AuthToken{}).Error
}
