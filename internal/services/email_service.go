package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/config"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/pkg/logger"
)

// syncTimeout bounds one user's sync cycle.
const syncTimeout = 2 * time.Minute

type EmailService struct {
	DB             *gorm.DB
	Users          *UserService
	Applications   *ApplicationService
	LLMService     *LLMService
	MatcherService *MatcherService
	Mailboxes      MailboxOpener
	Config         config.GmailConfig

	// RetryDelay is the first backoff between Gmail retries.
	RetryDelay time.Duration
}

func NewEmailService(db *gorm.DB, users *UserService, apps *ApplicationService, llm *LLMService, matcher *MatcherService, mailboxes MailboxOpener, cfg config.GmailConfig) *EmailService {
	return &EmailService{
		DB:             db,
		Users:          users,
		Applications:   apps,
		LLMService:     llm,
		MatcherService: matcher,
		Mailboxes:      mailboxes,
		Config:         cfg,
		RetryDelay:     time.Second,
	}
}

// StartWatcher syncs every connected mailbox now and then on each interval
// until ctx is done.
func (s *EmailService) StartWatcher(ctx context.Context) {
	switch {
	case !s.Config.WatcherEnabled:
		logger.Info(ctx, "gmail watcher disabled by config")
		return
	case !s.LLMService.Enabled():
		logger.Warn(ctx, "gmail watcher disabled: no LLM configured")
		return
	}

	go func() {
		ticker := time.NewTicker(s.Config.SyncInterval)
		defer ticker.Stop()

		s.SyncAll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SyncAll(ctx)
			}
		}
	}()
	logger.Info(ctx, "gmail watcher started", "interval", s.Config.SyncInterval)
}

// SyncAll runs one sync cycle for every user with a stored Google token.
func (s *EmailService) SyncAll(ctx context.Context) {
	users, err := s.Users.WithGmailAccess(ctx)
	if err != nil {
		logger.Error(ctx, "failed to load gmail users", "error", err)
		return
	}

	for i := range users {
		if ctx.Err() != nil {
			return
		}
		userCtx := context.WithValue(ctx, logger.UserIDKey, users[i].ID)
		updated, err := s.SyncUser(userCtx, &users[i])
		if err != nil {
			logger.Error(userCtx, "gmail sync failed", "error", err)
			continue
		}
		logger.Info(userCtx, "gmail sync finished", "updated", updated)
	}
}

// SyncUser fetches the user's new emails and applies the status changes
// they announce. It returns how many applications were updated.
func (s *EmailService) SyncUser(ctx context.Context, user *models.User) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	mb, err := s.Mailboxes.Mailbox(ctx, user)
	if err != nil {
		return 0, err
	}

	var (
		messages     []*gmail.Message
		newHistoryID uint64
	)
	if user.LastHistoryID == 0 {
		logger.Info(ctx, "first gmail sync, running full sync")
		messages, newHistoryID, err = s.fullSync(ctx, mb)
	} else {
		messages, newHistoryID, err = s.incrementalSync(ctx, mb, user.LastHistoryID)
		if isHistoryExpiredError(err) {
			logger.Warn(ctx, "gmail history expired, falling back to full sync", "history_id", user.LastHistoryID)
			messages, newHistoryID, err = s.fullSync(ctx, mb)
		}
	}
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, msg := range messages {
		seen, err := s.markProcessed(ctx, user.ID, msg.Id)
		if err != nil {
			return updated, err
		}
		if seen {
			continue
		}

		changed, err := s.processEmail(ctx, user.ID, msg)
		if err != nil {
			logger.Warn(ctx, "email skipped", "message_id", msg.Id, "error", err)
			continue
		}
		if changed {
			updated++
		}
	}

	if newHistoryID > user.LastHistoryID {
		if err := s.Users.UpdateHistoryID(ctx, user.ID, newHistoryID); err != nil {
			return updated, fmt.Errorf("save history id: %w", err)
		}
		user.LastHistoryID = newHistoryID
	}
	return updated, nil
}

// fullSync scans recent recruiting emails and anchors the history id.
func (s *EmailService) fullSync(ctx context.Context, mb Mailbox) ([]*gmail.Message, uint64, error) {
	var refs []*gmail.Message
	err := s.retry(ctx, 3, func() error {
		var err error
		refs, err = mb.List(ctx, s.Config.Query, s.Config.MaxResults)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	var historyID uint64
	err = s.retry(ctx, 3, func() error {
		var err error
		historyID, err = mb.HistoryID(ctx)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return s.expandMessages(ctx, mb, refs), historyID, nil
}

// incrementalSync asks only for messages added since startID.
func (s *EmailService) incrementalSync(ctx context.Context, mb Mailbox, startID uint64) ([]*gmail.Message, uint64, error) {
	var (
		refs      []*gmail.Message
		historyID uint64
	)
	err := s.retry(ctx, 3, func() error {
		var err error
		refs, historyID, err = mb.HistorySince(ctx, startID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return s.expandMessages(ctx, mb, refs), historyID, nil
}

// expandMessages fetches full messages for refs, once per id. Messages that
// keep failing are left out.
func (s *EmailService) expandMessages(ctx context.Context, mb Mailbox, refs []*gmail.Message) []*gmail.Message {
	seen := make(map[string]bool, len(refs))
	var full []*gmail.Message
	for _, ref := range refs {
		if ref == nil || seen[ref.Id] {
			continue
		}
		seen[ref.Id] = true

		var msg *gmail.Message
		err := s.retry(ctx, 2, func() error {
			var err error
			msg, err = mb.Get(ctx, ref.Id, "full")
			return err
		})
		if err != nil {
			logger.Warn(ctx, "failed to fetch message", "message_id", ref.Id, "error", err)
			continue
		}
		full = append(full, msg)
	}
	return full
}

// markProcessed records the message for the user and reports whether it was
// already recorded.
func (s *EmailService) markProcessed(ctx context.Context, userID uint, messageID string) (bool, error) {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedEmail{ID: messageID, UserID: userID})
	if res.Error != nil {
		return false, fmt.Errorf("mark processed: %w", res.Error)
	}
	return res.RowsAffected == 0, nil
}

// processEmail matches msg to an application, asks the LLM what the email
// means and applies the resulting status.
func (s *EmailService) processEmail(ctx context.Context, userID uint, msg *gmail.Message) (bool, error) {
	headers := parseHeaders(msg)
	subject := headers["Subject"]
	sender := headers["From"]
	body := getEmailBody(msg)

	candidates, err := s.MatcherService.FindApplications(ctx, userID, subject, sender)
	if err != nil {
		return false, err
	}
	if len(candidates) == 0 {
		logger.Debug(ctx, "no application matches email", "message_id", msg.Id, "subject", subject)
		return false, nil
	}

	target := candidates[0]
	if len(candidates) > 1 {
		positions := make([]string, len(candidates))
		for i, c := range candidates {
			positions[i] = c.Company + " - " + c.Position
		}
		idx, err := s.LLMService.IdentifyJobRole(ctx, positions, subject, body)
		if err != nil {
			return false, err
		}
		if idx < 0 {
			logger.Info(ctx, "ambiguous email left unmatched", "message_id", msg.Id, "candidates", len(candidates))
			return false, nil
		}
		target = candidates[idx]
	}

	analysis, err := s.LLMService.AnalyzeEmailStatus(ctx, target.Company, subject, body)
	if err != nil {
		return false, err
	}
	status, ok := analysis.Target()
	if !ok || status == target.Status {
		logger.Debug(ctx, "email does not change status", "application_id", target.ID, "status", analysis.Status)
		return false, nil
	}

	summary := fmt.Sprintf("%s: %s", subject, analysis.Summary)
	if _, err := s.Applications.ApplyEmailStatus(ctx, userID, target.ID, status, summary); err != nil {
		return false, err
	}
	return true, nil
}

// retry runs f up to attempts times with exponential backoff. An expired
// history error is returned at once so the caller can fall back to full sync.
func (s *EmailService) retry(ctx context.Context, attempts int, f func() error) error {
	delay := s.RetryDelay
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if isHistoryExpiredError(err) || i == attempts-1 {
			break
		}

		logger.Warn(ctx, "gmail request failed, retrying", "error", err, "delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	if isHistoryExpiredError(err) {
		return err
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isHistoryExpiredError(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && gErr.Code == http.StatusNotFound
}

func parseHeaders(msg *gmail.Message) map[string]string {
	res := make(map[string]string)
	if msg.Payload == nil {
		return res
	}
	for _, h := range msg.Payload.Headers {
		res[h.Name] = h.Value
	}
	return res
}

// getEmailBody prefers the plain text part, then HTML, then the snippet.
func getEmailBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return msg.Snippet
	}
	if body := decodeBody(msg.Payload.Body); body != "" {
		return body
	}
	for _, mime := range []string{"text/plain", "text/html"} {
		if body := findPart(msg.Payload.Parts, mime); body != "" {
			return body
		}
	}
	return msg.Snippet
}

func findPart(parts []*gmail.MessagePart, mime string) string {
	for _, part := range parts {
		if part.MimeType == mime {
			if body := decodeBody(part.Body); body != "" {
				return body
			}
		}
		if body := findPart(part.Parts, mime); body != "" {
			return body
		}
	}
	return ""
}

func decodeBody(body *gmail.MessagePartBody) string {
	if body == nil || body.Data == "" {
		return ""
	}
	d, err := base64.URLEncoding.DecodeString(body.Data)
	if err != nil {
		// Gmail sometimes omits padding.
		d, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(body.Data, "="))
		if err != nil {
			return ""
		}
	}
	return string(d)
}
