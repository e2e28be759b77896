// Package google submits URL notifications to the Google Web Search Indexing API.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/indexing/v3"
	"google.golang.org/api/option"
)

// ErrCredentialsNotFound is returned when the service-account key file does not exist.
var ErrCredentialsNotFound = errors.New("credentials file not found")

// Failure reasons reported by NotifyError.Reason.
const (
	ReasonQuotaExceeded    = "quota_exceeded"
	ReasonPermissionDenied = "permission_denied"
	ReasonInvalidURL       = "invalid_url"
	ReasonUnauthenticated  = "unauthenticated"
	ReasonServerError      = "server_error"
	ReasonError            = "error"
)

// Config controls how the Indexing API client is built.
type Config struct {
	// CredentialsFile is the path to a service-account JSON key. Empty means
	// Application Default Credentials.
	CredentialsFile string
	// Endpoint overrides the API base URL.
	Endpoint  string
	UserAgent string
}

// Notifier publishes URL notifications one request at a time.
type Notifier struct {
	svc *indexing.Service
}

// New builds a Notifier. Extra client options are appended after those derived from cfg.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Notifier, error) {
	clientOpts := []option.ClientOption{option.WithScopes(indexing.IndexingScope)}
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, path)
			}
			return nil, fmt.Errorf("stat credentials file: %w", err)
		}
		clientOpts = append(clientOpts, option.WithCredentialsFile(path))
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.UserAgent != "" {
		clientOpts = append(clientOpts, option.WithUserAgent(cfg.UserAgent))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := indexing.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create indexing service: %w", err)
	}
	return &Notifier{svc: svc}, nil
}

// Notify publishes a single notification of the given type for rawURL.
func (n *Notifier) Notify(ctx context.Context, rawURL, notificationType string) error {
	if n == nil || n.svc == nil {
		return fmt.Errorf("indexing notifier is not configured")
	}
	call := n.svc.UrlNotifications.Publish(&indexing.UrlNotification{
		Url:  rawURL,
		Type: notificationType,
	})
	if _, err := call.Context(ctx).Do(); err != nil {
		return newNotifyError(rawURL, err)
	}
	return nil
}

// NotifyError describes a rejected notification.
type NotifyError struct {
	URL  string
	Code int
	Err  error
}

func newNotifyError(rawURL string, err error) *NotifyError {
	ne := &NotifyError{URL: rawURL, Err: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		ne.Code = apiErr.Code
	}
	return ne
}

// Error implements error.
func (e *NotifyError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("publish %s: status %d: %v", e.URL, e.Code, e.Err)
	}
	return fmt.Sprintf("publish %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying API error.
func (e *NotifyError) Unwrap() error {
	return e.Err
}

// Reason maps the HTTP status code to a short failure label.
func (e *NotifyError) Reason() string {
	switch {
	case e.Code == http.StatusTooManyRequests:
		return ReasonQuotaExceeded
	case e.Code == http.StatusForbidden:
		return ReasonPermissionDenied
	case e.Code == http.StatusBadRequest:
		return ReasonInvalidURL
	case e.Code == http.StatusUnauthorized:
		return ReasonUnauthenticated
	case e.Code >= http.StatusInternalServerError:
		return ReasonServerError
	default:
		return ReasonError
	}
}
