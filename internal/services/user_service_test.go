package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/auth"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/database"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/database/databasetest"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/dtos"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
)

func TestUserServiceUpsertGoogleUser(t *testing.T) {
	users := NewUserService(databasetest.Open(t))
	ctx := context.Background()
	gu := &auth.GoogleUser{ID: "g-1", Email: "ada@example.com", Name: "Ada", Picture: "http://img"}

	first, err := users.UpsertGoogleUser(ctx, gu, &oauth2.Token{AccessToken: "a1", RefreshToken: "r1", Expiry: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("UpsertGoogleUser failed: %v", err)
	}
	if first.ID == 0 || !first.HasGmailAccess() {
		t.Fatalf("Expected stored user with gmail access, got %+v", first)
	}

	gu.Name = "Ada Lovelace"
	second, err := users.UpsertGoogleUser(ctx, gu, &oauth2.Token{AccessToken: "a2"})
	if err != nil {
		t.Fatalf("UpsertGoogleUser failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected same user on second sign-in, got %d and %d", first.ID, second.ID)
	}
	if second.Name != "Ada Lovelace" || second.AccessToken != "a2" || second.RefreshToken != "r1" {
		t.Errorf("Unexpected user after second sign-in %+v", second)
	}
}

func TestUserServiceTokens(t *testing.T) {
	users := NewUserService(databasetest.Open(t))
	ctx := context.Background()

	user, err := users.UpsertGoogleUser(ctx, &auth.GoogleUser{ID: "g-2", Email: "b@example.com"}, &oauth2.Token{AccessToken: "a", RefreshToken: "r"})
	if err != nil {
		t.Fatalf("UpsertGoogleUser failed: %v", err)
	}
	if err := users.UpdateHistoryID(ctx, user.ID, 42); err != nil {
		t.Fatalf("UpdateHistoryID failed: %v", err)
	}

	if err := users.SaveToken(ctx, user.ID, &oauth2.Token{AccessToken: "fresh"}); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	got, _ := users.Get(ctx, user.ID)
	if got.AccessToken != "fresh" || got.RefreshToken != "r" || got.LastHistoryID != 42 {
		t.Errorf("Unexpected user after token refresh %+v", got)
	}

	connected, err := users.WithGmailAccess(ctx)
	if err != nil || len(connected) != 1 {
		t.Fatalf("Expected one connected user, got %d (%v)", len(connected), err)
	}

	if err := users.ClearTokens(ctx, user.ID); err != nil {
		t.Fatalf("ClearTokens failed: %v", err)
	}
	got, _ = users.Get(ctx, user.ID)
	if got.HasGmailAccess() || got.LastHistoryID != 0 {
		t.Errorf("Expected tokens and bookmark cleared, got %+v", got)
	}
	connected, _ = users.WithGmailAccess(ctx)
	if len(connected) != 0 {
		t.Errorf("Expected no connected users, got %d", len(connected))
	}

	if _, err := users.Get(ctx, 999); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestProfileService(t *testing.T) {
	profiles := NewProfileService(databasetest.Open(t))
	ctx := context.Background()

	empty, err := profiles.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if empty.FullName != "" || empty.Skills == nil {
		t.Errorf("Expected empty profile with empty skills, got %+v", empty)
	}

	saved, err := profiles.Save(ctx, 1, &dtos.ProfileRequest{
		FullName: "  Ada Lovelace ",
		Headline: "Engineer",
		Skills:   []models.Skill{{Name: "Go"}, {Name: "go", Required: true}, {Name: " "}},
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.FullName != "Ada Lovelace" || len(saved.Skills) != 1 {
		t.Errorf("Unexpected saved profile %+v", saved)
	}

	if _, err := profiles.Save(ctx, 1, &dtos.ProfileRequest{FullName: "Ada"}); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}
	got, err := profiles.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.FullName != "Ada" || got.Headline != "" || len(got.Skills) != 0 {
		t.Errorf("Expected profile replaced, got %+v", got)
	}

	var count int64
	profiles.DB.Model(&models.Profile{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected a single profile row, got %d", count)
	}
}

func TestGmailServiceListMessages(t *testing.T) {
	db := databasetest.Open(t)
	users := NewUserService(db)
	ctx := context.Background()

	connected, _ := users.UpsertGoogleUser(ctx, &auth.GoogleUser{ID: "g", Email: "c@example.com"}, &oauth2.Token{AccessToken: "a"})
	offline, _ := users.UpsertGoogleUser(ctx, &auth.GoogleUser{ID: "h", Email: "d@example.com"}, nil)

	mailbox := &fakeMailbox{
		messages: map[string]*gmail.Message{
			"m1": testMessage("m1", "jobs@stripe.com", "Interview", "Hello"),
		},
		listIDs: []string{"m1"},
	}
	mailbox.messages["m1"].ThreadId = "t1"

	svc := NewGmailService(nil, users, 20)
	svc.Open = func(ctx context.Context, user *models.User) (Mailbox, error) {
		return mailbox, nil
	}

	got, err := svc.ListMessages(ctx, connected.ID, "", 0)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(got))
	}
	want := MessageSummary{ID: "m1", ThreadID: "t1", From: "jobs@stripe.com", Subject: "Interview", Date: "Fri, 1 Mar 2024 10:00:00 +0000", Snippet: "Hello"}
	if got[0] != want {
		t.Errorf("Expected %+v, got %+v", want, got[0])
	}

	if _, err := svc.ListMessages(ctx, offline.ID, "", 0); !errors.Is(err, ErrGmailNotConnected) {
		t.Errorf("Expected ErrGmailNotConnected, got %v", err)
	}

	svc.Open = svc.openGmail
	if _, err := svc.ListMessages(ctx, connected.ID, "", 0); !errors.Is(err, auth.ErrGoogleDisabled) {
		t.Errorf("Expected ErrGoogleDisabled without provider, got %v", err)
	}
}
