package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/config"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
)

var ErrGoogleDisabled = errors.New("google sign-in is not configured")

// Scopes requested at sign-in. Gmail read access lets the watcher follow
// recruiting emails.
var Scopes = []string{
	googleoauth.OpenIDScope,
	googleoauth.UserinfoEmailScope,
	googleoauth.UserinfoProfileScope,
	gmail.GmailReadonlyScope,
}

// GoogleUser is the identity returned by the userinfo endpoint.
type GoogleUser struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// Provider is the Google OAuth web flow.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUser, error)
	TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource
}

type GoogleProvider struct {
	Config *oauth2.Config
}

// NewGoogleProvider returns nil when client credentials are missing.
func NewGoogleProvider(cfg *config.GoogleConfig) *GoogleProvider {
	if !cfg.Enabled() {
		return nil
	}
	return &GoogleProvider{Config: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}}
}

// AuthCodeURL asks for offline access so a refresh token comes back, and
// forces the consent screen so it comes back on every sign-in.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

func (p *GoogleProvider) UserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(p.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("google account has no email")
	}
	return &GoogleUser{ID: info.Id, Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}

// TokenSource refreshes token with the stored refresh token when it expires.
func (p *GoogleProvider) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return p.Config.TokenSource(ctx, token)
}

// TokenFromUser rebuilds the OAuth token stored on the user.
func TokenFromUser(u *models.User) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  u.AccessToken,
		RefreshToken: u.RefreshToken,
		TokenType:    u.TokenType,
		Expiry:       u.TokenExpiry,
	}
}

// StoreToken copies tok onto the user. Google omits the refresh token on
// refreshes, so an empty one keeps the stored value.
func StoreToken(u *models.User, tok *oauth2.Token) {
	u.AccessToken = tok.AccessToken
	u.TokenType = tok.TokenType
	u.TokenExpiry = tok.Expiry
	if tok.RefreshToken != "" {
		u.RefreshToken = tok.RefreshToken
	}
}
