package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/auth"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/pkg/logger"
)

var (
	ErrGmailNotConnected = errors.New("gmail is not connected")
	ErrGmailUnavailable  = errors.New("gmail request failed")
)

const maxListResults = 100

// Mailbox is the slice of the Gmail API the tracker uses, bound to one user.
type Mailbox interface {
	List(ctx context.Context, query string, max int64) ([]*gmail.Message, error)
	Get(ctx context.Context, id, format string) (*gmail.Message, error)
	// HistorySince returns messages added after startID and the new history id.
	HistorySince(ctx context.Context, startID uint64) ([]*gmail.Message, uint64, error)
	HistoryID(ctx context.Context) (uint64, error)
}

// MailboxOpener opens a user's mailbox with their stored token.
type MailboxOpener interface {
	Mailbox(ctx context.Context, user *models.User) (Mailbox, error)
}

// MessageSummary is one row of the inbox list.
type MessageSummary struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	From     string `json:"from"`
	Subject  string `json:"subject"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
}

type GmailService struct {
	Provider   auth.Provider
	Users      *UserService
	MaxResults int64

	// Open builds the mailbox for a user; tests replace it.
	Open func(ctx context.Context, user *models.User) (Mailbox, error)
}

func NewGmailService(provider auth.Provider, users *UserService, maxResults int64) *GmailService {
	s := &GmailService{Provider: provider, Users: users, MaxResults: maxResults}
	s.Open = s.openGmail
	return s
}

func (s *GmailService) Mailbox(ctx context.Context, user *models.User) (Mailbox, error) {
	if !user.HasGmailAccess() {
		return nil, ErrGmailNotConnected
	}
	return s.Open(ctx, user)
}

// openGmail refreshes the user's token when needed, saving the new one, and
// returns a Gmail client using it.
func (s *GmailService) openGmail(ctx context.Context, user *models.User) (Mailbox, error) {
	if s.Provider == nil {
		return nil, auth.ErrGoogleDisabled
	}

	stored := auth.TokenFromUser(user)
	ts := s.Provider.TokenSource(ctx, stored)
	tok, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token: %w", ErrGmailUnavailable, err)
	}
	if tok.AccessToken != stored.AccessToken {
		if err := s.Users.SaveToken(ctx, user.ID, tok); err != nil {
			logger.Warn(ctx, "failed to save refreshed token", "error", err)
		}
	}

	svc, err := gmail.NewService(ctx, option.WithTokenSource(oauth2.ReuseTokenSource(tok, ts)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGmailUnavailable, err)
	}
	return &gmailMailbox{svc: svc}, nil
}

// ListMessages returns summaries of the newest messages matching query.
func (s *GmailService) ListMessages(ctx context.Context, userID uint, query string, max int64) ([]MessageSummary, error) {
	if max <= 0 {
		max = s.MaxResults
	}
	if max > maxListResults {
		max = maxListResults
	}

	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	mb, err := s.Mailbox(ctx, user)
	if err != nil {
		return nil, err
	}

	refs, err := mb.List(ctx, query, max)
	if err != nil {
		return nil, err
	}

	summaries := make([]MessageSummary, 0, len(refs))
	for _, ref := range refs {
		msg, err := mb.Get(ctx, ref.Id, "metadata")
		if err != nil {
			return nil, err
		}
		headers := parseHeaders(msg)
		summaries = append(summaries, MessageSummary{
			ID:       msg.Id,
			ThreadID: msg.ThreadId,
			From:     headers["From"],
			Subject:  headers["Subject"],
			Date:     headers["Date"],
			Snippet:  msg.Snippet,
		})
	}
	return summaries, nil
}

type gmailMailbox struct {
	svc *gmail.Service
}

func (m *gmailMailbox) List(ctx context.Context, query string, max int64) ([]*gmail.Message, error) {
	call := m.svc.Users.Messages.List("me").MaxResults(max)
	if query != "" {
		call = call.Q(query)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %w", ErrGmailUnavailable, err)
	}
	return resp.Messages, nil
}

func (m *gmailMailbox) Get(ctx context.Context, id, format string) (*gmail.Message, error) {
	call := m.svc.Users.Messages.Get("me", id).Format(format)
	if format == "metadata" {
		call = call.MetadataHeaders("From", "Subject", "Date")
	}
	msg, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: get message: %w", ErrGmailUnavailable, err)
	}
	return msg, nil
}

func (m *gmailMailbox) HistorySince(ctx context.Context, startID uint64) ([]*gmail.Message, uint64, error) {
	var (
		messages  []*gmail.Message
		historyID uint64
	)
	call := m.svc.Users.History.List("me").StartHistoryId(startID).HistoryTypes("messageAdded")
	err := call.Pages(ctx, func(resp *gmail.ListHistoryResponse) error {
		for _, h := range resp.History {
			for _, added := range h.MessagesAdded {
				if added.Message != nil {
					messages = append(messages, added.Message)
				}
			}
		}
		historyID = resp.HistoryId
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list history: %w", ErrGmailUnavailable, err)
	}
	return messages, historyID, nil
}

func (m *gmailMailbox) HistoryID(ctx context.Context) (uint64, error) {
	profile, err := m.svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%w: get profile: %w", ErrGmailUnavailable, err)
	}
	return profile.HistoryId, nil
}
