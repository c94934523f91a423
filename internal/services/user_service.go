package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/auth"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/database"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/pkg/logger"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertGoogleUser signs in a Google account, creating the user on first
// sign-in, and stores the OAuth token for Gmail access.
func (s *UserService) UpsertGoogleUser(ctx context.Context, gu *auth.GoogleUser, tok *oauth2.Token) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("google_id = ?", gu.ID).Or("email = ?", gu.Email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user.GoogleID = gu.ID
	user.Email = gu.Email
	user.Name = gu.Name
	user.Picture = gu.Picture
	if tok != nil {
		auth.StoreToken(&user, tok)
	}

	if err := s.DB.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	logger.Info(ctx, "user signed in", "user_id", user.ID, "email", user.Email)
	return &user, nil
}

// SaveToken persists a refreshed OAuth token.
func (s *UserService) SaveToken(ctx context.Context, id uint, tok *oauth2.Token) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	auth.StoreToken(user, tok)
	return s.DB.WithContext(ctx).Model(user).Select("access_token", "refresh_token", "token_type", "token_expiry").Updates(user).Error
}

// ClearTokens disconnects Gmail and resets the sync bookmark.
func (s *UserService) ClearTokens(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"access_token":    "",
		"refresh_token":   "",
		"token_type":      "",
		"last_history_id": 0,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// WithGmailAccess lists users the watcher can sync.
func (s *UserService) WithGmailAccess(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.DB.WithContext(ctx).Where("(refresh_token <> '' OR access_token <> '')").Order("id ASC").Find(&users).Error
	return users, err
}

func (s *UserService) UpdateHistoryID(ctx context.Context, id uint, historyID uint64) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_history_id", historyID).Error
}
