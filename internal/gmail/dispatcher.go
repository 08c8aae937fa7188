// Package gmail delivers drafts through the Gmail REST API.
//
// Credential and token management stays inside this package: an OAuth
// client configuration (credentials.json) plus a previously authorized
// user token (token.json) yield a self-refreshing token source. The
// lifecycle core only sees deliver(address, subject, body).
package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/fyrsmithlabs/ghostwriter/internal/draft"
)

// Config holds configuration for the Gmail dispatcher.
type Config struct {
	// CredentialsPath is the OAuth client configuration file.
	CredentialsPath string `koanf:"credentials_path"`
	// TokenPath is the previously authorized user token file.
	TokenPath string `koanf:"token_path"`
	// Sender, when set, becomes the From header. Gmail otherwise stamps
	// the authenticated account's address.
	Sender string `koanf:"sender"`
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.CredentialsPath == "" {
		return fmt.Errorf("gmail credentials path is required")
	}
	if c.TokenPath == "" {
		return fmt.Errorf("gmail token path is required")
	}
	return nil
}

// Dispatcher sends email through the Gmail API. It implements
// draft.Dispatcher: one attempt per Deliver call, no internal retry.
type Dispatcher struct {
	service *gmailapi.Service
	sender  string
	logger  *zap.Logger
}

// NewDispatcher builds the Gmail client from the configured credential
// files. Token refresh is handled by the oauth2 token source; a refreshed
// token is not written back (the refresh token itself does not rotate).
func NewDispatcher(ctx context.Context, cfg Config, logger *zap.Logger) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	credentials, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(credentials, gmailapi.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	token, err := readToken(cfg.TokenPath)
	if err != nil {
		return nil, err
	}

	service, err := gmailapi.NewService(ctx,
		option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Dispatcher{service: service, sender: cfg.Sender, logger: logger}, nil
}

func readToken(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	return &token, nil
}

// Deliver sends one message to address. Failures come back as
// *draft.DeliveryError with a cause the front ends show verbatim.
func (d *Dispatcher) Deliver(ctx context.Context, address, subject, body string) error {
	if _, err := mail.ParseAddress(address); err != nil {
		return &draft.DeliveryError{Cause: fmt.Sprintf("invalid recipient address %q", address), Err: err}
	}

	message := &gmailapi.Message{
		Raw: encodeRaw(buildMessage(d.sender, address, subject, body)),
	}

	sent, err := d.service.Users.Messages.Send("me", message).Context(ctx).Do()
	if err != nil {
		return &draft.DeliveryError{Cause: deliveryCause(err), Err: err}
	}

	d.logger.Info("message delivered",
		zap.String("recipient", address),
		zap.String("message_id", sent.Id))
	return nil
}

// deliveryCause extracts the human-readable cause from a Gmail API error.
func deliveryCause(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
