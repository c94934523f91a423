package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/tracker"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/pkg/logger"
)

//go:generate mockgen -destination=mocks/application_store.go -package=mocks . ApplicationStore

// ApplicationStore is the persistence the application service needs.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	Get(ctx context.Context, userID uint, id string) (*models.Application, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	UpdateWithEvent(ctx context.Context, app *models.Application, event *models.ApplicationEvent) error
	Delete(ctx context.Context, userID uint, id string) error
	Events(ctx context.Context, applicationID string) ([]models.ApplicationEvent, error)
}

type ApplicationService struct {
	Store ApplicationStore
	Now   func() time.Time
}

func NewApplicationService(store ApplicationStore) *ApplicationService {
	return &ApplicationService{Store: store, Now: time.Now}
}

func (s *ApplicationService) today() models.Date {
	return models.NewDate(s.Now())
}

// Create stores a new application. It starts in the applied status with only
// the Applied stage completed; a later status picked on the form is then
// applied on top, as if changed right after creation.
func (s *ApplicationService) Create(ctx context.Context, userID uint, form tracker.FormState) (*models.Application, error) {
	app, err := form.Validate()
	if err != nil {
		return nil, err
	}

	today := s.today()
	if app.AppliedDate.IsZero() {
		app.AppliedDate = today
	}
	requested := app.Status
	app.UserID = userID
	app.Status = models.StatusApplied
	app.Stages = tracker.InitialStages(app.AppliedDate)
	app.LastUpdated = today
	if requested != "" && requested != models.StatusApplied {
		if err := tracker.ApplyStatus(&app, requested, today); err != nil {
			return nil, err
		}
	}
	if app.Skills == nil {
		app.Skills = []models.Skill{}
	}

	if err := s.Store.Create(ctx, &app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	logger.Info(ctx, "application created", "application_id", app.ID, "company", app.Company)
	return &app, nil
}

func (s *ApplicationService) Get(ctx context.Context, userID uint, id string) (*models.Application, error) {
	return s.Store.Get(ctx, userID, id)
}

// List returns the user's applications filtered and ordered by q.
func (s *ApplicationService) List(ctx context.Context, userID uint, q tracker.Query) ([]models.Application, error) {
	apps, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return tracker.View(apps, q, s.Now()), nil
}

// Update applies field edits. Status and stages are not touched here; a
// different status in the form goes through ChangeStatus.
func (s *ApplicationService) Update(ctx context.Context, userID uint, id string, form tracker.FormState) (*models.Application, error) {
	draft, err := form.Validate()
	if err != nil {
		return nil, err
	}

	app, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	app.Company = draft.Company
	app.Position = draft.Position
	app.Location = draft.Location
	app.JobType = draft.JobType
	app.Salary = draft.Salary
	app.JobURL = draft.JobURL
	app.Notes = draft.Notes
	app.Skills = draft.Skills
	if !draft.AppliedDate.IsZero() {
		app.AppliedDate = draft.AppliedDate
	}

	if err := s.Store.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	if draft.Status != "" && draft.Status != app.Status {
		return s.ChangeStatus(ctx, userID, id, draft.Status, "")
	}
	return app, nil
}

// ChangeStatus moves an application to status, rewriting its stages, and
// records the move. details describes where the change came from.
func (s *ApplicationService) ChangeStatus(ctx context.Context, userID uint, id string, status models.Status, details string) (*models.Application, error) {
	return s.changeStatus(ctx, userID, id, status, models.EventStatusChange, details)
}

// ApplyEmailStatus is ChangeStatus for moves detected in the user's mailbox.
func (s *ApplicationService) ApplyEmailStatus(ctx context.Context, userID uint, id string, status models.Status, summary string) (*models.Application, error) {
	return s.changeStatus(ctx, userID, id, status, models.EventEmailUpdate, summary)
}

func (s *ApplicationService) changeStatus(ctx context.Context, userID uint, id string, status models.Status, eventType, details string) (*models.Application, error) {
	app, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	from := app.Status
	if err := tracker.ApplyStatus(app, status, s.today()); err != nil {
		return nil, err
	}

	event := &models.ApplicationEvent{
		ApplicationID: app.ID,
		EventType:     eventType,
		FromStatus:    from,
		ToStatus:      status,
		Details:       details,
	}
	if err := s.Store.UpdateWithEvent(ctx, app, event); err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}

	logger.Info(ctx, "application status changed",
		"application_id", app.ID,
		"from", from,
		"to", status,
		"event", eventType,
	)
	return app, nil
}

func (s *ApplicationService) Delete(ctx context.Context, userID uint, id string) error {
	if err := s.Store.Delete(ctx, userID, id); err != nil {
		return err
	}
	logger.Info(ctx, "application deleted", "application_id", id)
	return nil
}

// Events returns the status history of one of the user's applications.
func (s *ApplicationService) Events(ctx context.Context, userID uint, id string) ([]models.ApplicationEvent, error) {
	if _, err := s.Store.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.Store.Events(ctx, id)
}

// Stats is the dashboard summary of a user's applications.
type Stats struct {
	Total         int                    `json:"total"`
	ByStatus      map[models.Status]int  `json:"byStatus"`
	ByJobType     map[models.JobType]int `json:"byJobType"`
	Active        int                    `json:"active"`
	AppliedLast7  int                    `json:"appliedLast7Days"`
	AppliedLast30 int                    `json:"appliedLast30Days"`
	ResponseRate  float64                `json:"responseRate"`
}

func (s *ApplicationService) Stats(ctx context.Context, userID uint) (*Stats, error) {
	apps, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	stats := &Stats{
		Total:     len(apps),
		ByStatus:  make(map[models.Status]int, len(models.Statuses)),
		ByJobType: make(map[models.JobType]int, len(models.JobTypes)),
	}
	for _, st := range models.Statuses {
		stats.ByStatus[st] = 0
	}

	now := s.Now()
	last7 := tracker.DefaultQuery()
	last7.DateRange = tracker.DateRangeLast7Days
	last30 := tracker.DefaultQuery()
	last30.DateRange = tracker.DateRangeLast30Days
	stats.AppliedLast7 = len(tracker.View(apps, last7, now))
	stats.AppliedLast30 = len(tracker.View(apps, last30, now))

	responded := 0
	for _, a := range apps {
		stats.ByStatus[a.Status]++
		stats.ByJobType[a.JobType]++
		if !a.Status.Terminal() {
			stats.Active++
		}
		if a.Status != models.StatusApplied {
			responded++
		}
	}
	if stats.Total > 0 {
		stats.ResponseRate = float64(responded) / float64(stats.Total)
	}
	return stats, nil
}
