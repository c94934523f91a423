package handlers

import (
	"net/http"
	"testing"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/auth"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/services"
)

type listResponse struct {
	Applications []models.Application `json:"applications"`
	Total        int                  `json:"total"`
}

func (e *testEnv) createApplication(t *testing.T, body map[string]any) models.Application {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/applications", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var app models.Application
	decode(t, w, &app)
	return app
}

func TestCreateApplication(t *testing.T) {
	env := newTestEnv(t)

	app := env.createApplication(t, map[string]any{
		"company":     "Acme",
		"position":    "Backend Engineer",
		"appliedDate": "2024-02-01",
		"salary":      120000,
		"skills":      []any{"Go", map[string]any{"name": "Postgres", "required": true}},
	})
	if app.ID == "" || app.Status != models.StatusApplied || app.JobType != models.JobTypeFullTime {
		t.Errorf("Unexpected application %+v", app)
	}
	if app.AppliedDate.String() != "2024-02-01" {
		t.Errorf("Expected applied date 2024-02-01, got %s", app.AppliedDate)
	}
	if len(app.Stages) != 1 || !app.Stages[0].Completed {
		t.Errorf("Expected one completed stage, got %+v", app.Stages)
	}
	if len(app.Skills) != 2 || !app.Skills[1].Required {
		t.Errorf("Unexpected skills %+v", app.Skills)
	}
}

func TestCreateApplicationValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing company", map[string]any{"position": "Engineer"}},
		{"bad status", map[string]any{"company": "Acme", "position": "Engineer", "status": "hired"}},
		{"bad date", map[string]any{"company": "Acme", "position": "Engineer", "appliedDate": "2024-13-45"}},
		{"negative salary", map[string]any{"company": "Acme", "position": "Engineer", "salary": -1}},
		{"malformed json", `{"company":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := env.do(t, http.MethodPost, "/api/v1/applications", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestListApplications(t *testing.T) {
	env := newTestEnv(t)
	env.createApplication(t, map[string]any{"company": "Globex", "position": "SRE", "appliedDate": "2024-01-05"})
	env.createApplication(t, map[string]any{"company": "Acme", "position": "Engineer", "appliedDate": "2024-01-10", "status": "interview"})
	env.createApplication(t, map[string]any{"company": "Initech", "position": "Engineer", "appliedDate": "2024-01-01", "jobType": "Contract"})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"company asc", "?sortBy=company&sortOrder=asc", []string{"Acme", "Globex", "Initech"}},
		{"applied desc", "?sortBy=appliedDate", []string{"Acme", "Globex", "Initech"}},
		{"status filter", "?status=interview", []string{"Acme"}},
		{"job type filter", "?jobType=Contract", []string{"Initech"}},
		{"search position", "?search=engineer&sortBy=company&sortOrder=asc", []string{"Acme", "Initech"}},
		{"no match", "?search=nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/v1/applications"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
			}
			var resp listResponse
			decode(t, w, &resp)
			if resp.Total != len(tt.want) || len(resp.Applications) != len(tt.want) {
				t.Fatalf("Expected %v, got %d applications", tt.want, len(resp.Applications))
			}
			for i, company := range tt.want {
				if resp.Applications[i].Company != company {
					t.Errorf("Position %d: expected %s, got %s", i, company, resp.Applications[i].Company)
				}
			}
		})
	}

	if w := env.do(t, http.MethodGet, "/api/v1/applications?sortBy=salary", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for unknown sort field, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	app := env.createApplication(t, map[string]any{"company": "Acme", "position": "Engineer"})
	path := "/api/v1/applications/" + app.ID

	w := env.do(t, http.MethodPatch, path+"/status", map[string]string{"status": "assessment", "details": "Take-home sent"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	var moved models.Application
	decode(t, w, &moved)
	if moved.Status != models.StatusAssessment || len(moved.Stages) != 5 {
		t.Fatalf("Expected assessment with 5 stages, got %s with %d", moved.Status, len(moved.Stages))
	}
	for i, st := range moved.Stages {
		if st.Completed != (i < 3) {
			t.Errorf("Stage %s: expected completed=%v", st.Name, i < 3)
		}
	}

	if w := env.do(t, http.MethodPatch, path+"/status", map[string]string{"status": "hired"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for unknown status, got %d", http.StatusBadRequest, w.Code)
	}
	if w := env.do(t, http.MethodPatch, path+"/status", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for missing status, got %d", http.StatusBadRequest, w.Code)
	}

	w = env.do(t, http.MethodPut, path, map[string]any{"company": "Acme Corp", "position": "Engineer", "status": "assessment", "notes": "Team lead: Sam"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	var updated models.Application
	decode(t, w, &updated)
	if updated.Company != "Acme Corp" || updated.Notes != "Team lead: Sam" || len(updated.Stages) != 5 {
		t.Errorf("Unexpected update result %+v", updated)
	}

	w = env.do(t, http.MethodGet, path+"/events", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var events struct {
		Events []models.ApplicationEvent `json:"events"`
	}
	decode(t, w, &events)
	if len(events.Events) != 1 || events.Events[0].Details != "Take-home sent" {
		t.Errorf("Expected one status event, got %+v", events.Events)
	}

	w = env.do(t, http.MethodGet, "/api/v1/applications/stats", nil)
	var stats services.Stats
	decode(t, w, &stats)
	if stats.Total != 1 || stats.ByStatus[models.StatusAssessment] != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	if w := env.do(t, http.MethodDelete, path, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w := env.do(t, http.MethodGet, path, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after delete, got %d", http.StatusNotFound, w.Code)
	}
	if w := env.do(t, http.MethodDelete, path, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for second delete, got %d", http.StatusNotFound, w.Code)
	}
}

func TestApplicationsAreScopedToUser(t *testing.T) {
	env := newTestEnv(t)
	app := env.createApplication(t, map[string]any{"company": "Acme", "position": "Engineer"})

	other := &models.User{Email: "other@example.com"}
	if err := env.db.Create(other).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	token, _, err := auth.IssueToken(other.ID, other.Email, &env.cfg.Auth)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	env.token = token

	path := "/api/v1/applications/" + app.ID
	if w := env.do(t, http.MethodGet, path, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if w := env.do(t, http.MethodPatch, path+"/status", map[string]string{"status": "offer"}); w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if w := env.do(t, http.MethodDelete, path, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	var resp listResponse
	decode(t, env.do(t, http.MethodGet, "/api/v1/applications", nil), &resp)
	if resp.Total != 0 || resp.Applications == nil {
		t.Errorf("Expected empty list for other user, got %+v", resp)
	}
}
