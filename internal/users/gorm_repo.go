package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wirebazaar/wirebazaar-backend/internal/repo"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db/models"
)

// GormRepository keeps users and profiles in Postgres.
type GormRepository struct {
	repo.Base
}

// NewGormRepository builds a users repository bound to the provided DB.
func NewGormRepository(conn *gorm.DB) *GormRepository {
	return &GormRepository{Base: repo.NewBase(conn)}
}

func (r *GormRepository) Resolve(ctx context.Context, contact string, now time.Time) (*Identity, error) {
	identity, err := r.touch(ctx, contact, now)
	if err == nil || !db.IsNotFound(err) {
		return identity, err
	}

	user := models.User{ID: uuid.NewString(), Contact: contact, LastLoginAt: now, CreatedAt: now}
	if err := r.DB(ctx).Create(&user).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			// A concurrent login created the row first.
			return r.touch(ctx, contact, now)
		}
		return nil, err
	}
	return &Identity{ID: user.ID, Contact: user.Contact, LastLoginAt: now}, nil
}

func (r *GormRepository) touch(ctx context.Context, contact string, now time.Time) (*Identity, error) {
	var user models.User
	if err := r.DB(ctx).Where("contact = ?", contact).First(&user).Error; err != nil {
		return nil, err
	}
	err := r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("last_login_at", now).Error
	if err != nil {
		return nil, err
	}
	return &Identity{ID: user.ID, Contact: user.Contact, LastLoginAt: now}, nil
}

func (r *GormRepository) SaveProfile(ctx context.Context, profile Profile) error {
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(profileToModel(profile)).Error
}

func (r *GormRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var row models.UserProfile
	if err := r.DB(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	profile := profileFromModel(row)
	return &profile, nil
}
