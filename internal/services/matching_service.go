package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
)

// ApplicationLister is the read side of ApplicationStore the matcher needs.
type ApplicationLister interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Application, error)
}

type MatcherService struct {
	Store ApplicationLister
}

func NewMatcherService(store ApplicationLister) *MatcherService {
	return &MatcherService{Store: store}
}

// FindApplications returns the user's active applications whose company the
// email refers to. Offer and rejected applications are never matched.
func (s *MatcherService) FindApplications(ctx context.Context, userID uint, subject, rawSender string) ([]models.Application, error) {
	apps, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return MatchApplications(apps, subject, rawSender), nil
}

// MatchApplications applies the company rules to apps in order.
func MatchApplications(apps []models.Application, subject, rawSender string) []models.Application {
	senderName, senderDomain := parseSender(rawSender)
	subjectLower := strings.ToLower(subject)

	var matches []models.Application
	for _, app := range apps {
		if app.Status.Terminal() {
			continue
		}
		if companyMentioned(strings.ToLower(strings.TrimSpace(app.Company)), subjectLower, senderName, senderDomain) {
			matches = append(matches, app)
		}
	}
	return matches
}

// parseSender splits "Stripe Recruiting <jobs@stripe.com>" into the lower
// case display name and the domain after '@'.
func parseSender(rawSender string) (name, domain string) {
	addr := strings.ToLower(rawSender)
	if parsed, err := mail.ParseAddress(rawSender); err == nil {
		name = strings.ToLower(parsed.Name)
		addr = strings.ToLower(parsed.Address)
	}
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		domain = strings.Trim(addr[at+1:], "> ")
	}
	return name, domain
}

func companyMentioned(company, subject, senderName, senderDomain string) bool {
	// Short names like "X" or "Go" would match nearly every email.
	if len(company) < 3 {
		return false
	}
	if strings.Contains(subject, company) {
		return true
	}
	if senderName != "" && strings.Contains(senderName, company) {
		return true
	}
	// Domains carry no spaces, so "Acme Corp" is looked up as "acmecorp".
	if senderDomain != "" && strings.Contains(senderDomain, strings.ReplaceAll(company, " ", "")) {
		return true
	}
	return false
}
