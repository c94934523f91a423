package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/dtos"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/pkg/logger"
)

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// Get returns the user's profile, or an empty one when none was saved yet.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Profile{UserID: userID, Skills: []models.Skill{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if profile.Skills == nil {
		profile.Skills = []models.Skill{}
	}
	return &profile, nil
}

func (s *ProfileService) Save(ctx context.Context, userID uint, req *dtos.ProfileRequest) (*models.Profile, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.FullName = strings.TrimSpace(req.FullName)
	profile.Headline = strings.TrimSpace(req.Headline)
	profile.Location = strings.TrimSpace(req.Location)
	profile.Phone = strings.TrimSpace(req.Phone)
	profile.Bio = req.Bio
	profile.Website = strings.TrimSpace(req.Website)
	profile.LinkedIn = strings.TrimSpace(req.LinkedIn)
	profile.GitHub = strings.TrimSpace(req.GitHub)
	profile.Skills = models.NormalizeSkills(req.Skills)
	if profile.Skills == nil {
		profile.Skills = []models.Skill{}
	}

	if err := s.DB.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	logger.Info(ctx, "profile saved", "skills", len(profile.Skills))
	return profile, nil
}
