package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/edulink/auth-service/internal/models"
)

// GormStore is the production IdentityStore backed by Postgres.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) FindBySocialID(ctx context.Context, socialID string) (*models.User, error) {
	if socialID == "" {
		return nil, ErrNotFound
	}
	var user models.User
	if err := s.DB.WithContext(ctx).Where("social_id = ?", socialID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) FindByEmailOrSocialID(ctx context.Context, email, socialID string) (*models.User, error) {
	q := s.DB.WithContext(ctx).Where("email = ?", email)
	if socialID != "" {
		q = s.DB.WithContext(ctx).Where("email = ? OR social_id = ?", email, socialID)
	}

	var users []models.User
	if err := q.Limit(2).Find(&users).Error; err != nil {
		return nil, err
	}
	switch len(users) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &users[0], nil
	default:
		return nil, ErrConflict
	}
}

func (s *GormStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save upserts by primary key and bumps UpdatedAt.
func (s *GormStore) Save(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Save(user).Error
}
