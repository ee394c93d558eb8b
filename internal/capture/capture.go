// Package capture defines the boundary to the browser-automation
// collaborator: an explicit option set, the driver contract, and a
// scoped session runner that guarantees resource release on every exit
// path. The actual browser driver lives outside this module.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adoptai/zapi/internal/config"
)

// WaitUntil names the navigation-complete strategy.
type WaitUntil string

const (
	WaitLoad             WaitUntil = "load"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitNetworkIdle      WaitUntil = "networkidle"
)

// AuthMode names how the bearer token is injected into the session.
type AuthMode string

const (
	AuthHeader       AuthMode = "header"
	AuthCookie       AuthMode = "cookie"
	AuthLocalStorage AuthMode = "localStorage"
)

// Options enumerates the recognized capture settings. DriverOptions is
// the narrow escape hatch for driver-specific switches; everything a
// component of this module reads has a named field.
type Options struct {
	// InitialURL is the first navigation target.
	InitialURL string

	Headless  bool
	WaitUntil WaitUntil
	// NavTimeout bounds each navigation.
	NavTimeout time.Duration
	// SlowMo delays each driver operation, for debugging.
	SlowMo time.Duration

	// AuthToken, when set, is injected per AuthMode.
	AuthToken string
	AuthMode  AuthMode

	// DriverOptions passes opaque, driver-specific settings through
	// unchanged.
	DriverOptions map[string]string
}

// Validate normalizes defaults and rejects unrecognized enum values.
func (o *Options) Validate() error {
	if o.InitialURL == "" {
		return errors.New("capture: initial URL cannot be empty")
	}

	if o.WaitUntil == "" {
		o.WaitUntil = WaitLoad
	}
	switch o.WaitUntil {
	case WaitLoad, WaitDOMContentLoaded, WaitNetworkIdle:
	default:
		return fmt.Errorf("capture: unknown wait_until %q", o.WaitUntil)
	}

	if o.AuthMode == "" {
		o.AuthMode = AuthHeader
	}
	switch o.AuthMode {
	case AuthHeader, AuthCookie, AuthLocalStorage:
	default:
		return fmt.Errorf("capture: unknown auth mode %q", o.AuthMode)
	}

	if o.NavTimeout <= 0 {
		o.NavTimeout = 30 * time.Second
	}
	return nil
}

// FromConfig builds Options from the runtime configuration. The result
// still goes through Validate, so zero config fields get the usual
// defaults.
func FromConfig(c config.CaptureConfig, initialURL string) Options {
	return Options{
		InitialURL: initialURL,
		Headless:   c.Headless,
		WaitUntil:  WaitUntil(c.WaitUntil),
		NavTimeout: time.Duration(c.NavTimeoutSeconds) * time.Second,
		SlowMo:     time.Duration(c.SlowMoMillis) * time.Millisecond,
	}
}

// Driver starts capture sessions. Implementations wrap a concrete
// browser-automation stack and must honor ctx for startup cancellation.
type Driver interface {
	Start(ctx context.Context, opts Options) (Session, error)
}

// Session is one live recording session.
type Session interface {
	// Navigate drives the browser to url using the session's wait
	// strategy.
	Navigate(ctx context.Context, url string) error

	// DumpHAR finalizes recording and writes the archive to path.
	DumpHAR(ctx context.Context, path string) error

	// Close releases the browser and deletes any temporary recording
	// state. Safe to call more than once.
	Close(ctx context.Context) error
}

// Run starts a session, hands it to fn, and closes it no matter how fn
// returns. A close failure after a successful fn surfaces as the
// returned error; when both fail, fn's error wins and the close error
// is joined.
func Run(ctx context.Context, d Driver, opts Options, fn func(Session) error) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	session, err := d.Start(ctx, opts)
	if err != nil {
		return err
	}

	fnErr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("capture: session panicked: %v", r)
			}
		}()
		return fn(session)
	}()

	closeErr := session.Close(ctx)
	if fnErr != nil {
		return errors.Join(fnErr, closeErr)
	}
	return closeErr
}
