package snapgate

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// clientConfig holds mutable state during Client construction.
type clientConfig struct {
	token            string
	baseURL          string
	concurrency      int
	pollInterval     time.Duration
	stalenessTimeout time.Duration
	httpTimeout      time.Duration
	logger           *slog.Logger
}

// Option is a function that configures a [Client] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithToken], [WithBaseURL], [WithConcurrency],
// [WithPollInterval], [WithStalenessTimeout], [WithHTTPTimeout],
// [WithLogger].
type Option func(*clientConfig) error

// WithToken sets the API token used to authenticate every request.
//
// A token is required; [New] fails without one. Tokens are sent as
// "Authorization: Token token=<value>".
func WithToken(token string) Option {
	return func(cfg *clientConfig) error {
		if token == "" {
			return errors.New("token cannot be empty")
		}
		cfg.token = token
		return nil
	}
}

// WithBaseURL overrides the API base URL.
//
// Defaults to the hosted Snapgate API. Useful for self-hosted instances
// and tests.
//
// Returns an error if the URL is not a valid http(s) URL.
func WithBaseURL(rawURL string) Option {
	return func(cfg *clientConfig) error {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("base URL scheme must be http or https, got %q", parsed.Scheme)
		}
		cfg.baseURL = rawURL
		return nil
	}
}

// WithConcurrency sets the maximum number of resources uploaded
// concurrently by [Client.UploadResources].
//
// Defaults to 2. Use a higher value to speed up large builds at the cost
// of connection pressure on the API.
//
// Returns an error if the value is zero or negative.
func WithConcurrency(n int) Option {
	return func(cfg *clientConfig) error {
		if n <= 0 {
			return errors.New("concurrency must be positive")
		}
		cfg.concurrency = n
		return nil
	}
}

// WithPollInterval sets the delay between consecutive build-state fetches
// in [Client.WaitForBuild]. Defaults to 1 second.
//
// Returns an error if the duration is zero or negative.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithStalenessTimeout sets how long [Client.WaitForBuild] tolerates an
// unchanging build before giving up. Defaults to 10 minutes.
//
// The timeout measures inactivity, not total wait time: a slow build that
// keeps reporting progress never trips it.
//
// Returns an error if the duration is zero or negative.
func WithStalenessTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("staleness timeout must be positive")
		}
		cfg.stalenessTimeout = d
		return nil
	}
}

// WithHTTPTimeout sets the per-request HTTP timeout. Defaults to 30
// seconds.
//
// Returns an error if the duration is zero or negative.
func WithHTTPTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("http timeout must be positive")
		}
		cfg.httpTimeout = d
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the client.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
