package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
)

var ErrNotFound = errors.New("record not found")

// ApplicationRepository persists applications and their status events with gorm.
type ApplicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.DB.WithContext(ctx).Create(app).Error
}

func (r *ApplicationRepository) Get(ctx context.Context, userID uint, id string) (*models.Application, error) {
	var app models.Application
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListByUser returns the user's applications oldest first, the order the view
// falls back to for equal sort keys.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Application, error) {
	var apps []models.Application
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Order("id ASC").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) Update(ctx context.Context, app *models.Application) error {
	res := r.DB.WithContext(ctx).Model(app).Where("user_id = ?", app.UserID).Select("*").Omit("created_at").Updates(app)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateWithEvent saves app and appends event atomically.
func (r *ApplicationRepository) UpdateWithEvent(ctx context.Context, app *models.Application, event *models.ApplicationEvent) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &ApplicationRepository{DB: tx}
		if err := txRepo.Update(ctx, app); err != nil {
			return err
		}
		event.ApplicationID = app.ID
		return tx.Create(event).Error
	})
}

func (r *ApplicationRepository) Delete(ctx context.Context, userID uint, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Application{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("application_id = ?", id).Delete(&models.ApplicationEvent{}).Error
	})
}

func (r *ApplicationRepository) Events(ctx context.Context, applicationID string) ([]models.ApplicationEvent, error) {
	var events []models.ApplicationEvent
	err := r.DB.WithContext(ctx).Where("application_id = ?", applicationID).Order("id ASC").Find(&events).Error
	return events, err
}
