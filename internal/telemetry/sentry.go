// Package telemetry reports infrastructure errors to Sentry when the
// operator opts in.
package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/premigrate/internal/buildinfo"
	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/logger"
)

// allowedExtras are the only extra fields kept on an event.
var allowedExtras = map[string]bool{
	"error_type": true,
	"component":  true,
}

// InitSentry initializes the Sentry SDK and installs the error reporter.
// Sentry is only initialized if explicitly enabled.
func InitSentry(settings *conf.Settings, build *buildinfo.Context, log logger.Logger) error {
	log = log.Module("telemetry")
	if !settings.Sentry.Enabled {
		log.Debug("sentry telemetry is disabled")
		return nil
	}
	if settings.Sentry.DSN == "" {
		return errors.Newf("sentry is enabled but no DSN is configured").
			Category(errors.CategoryConfiguration).
			Build()
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:        settings.Sentry.DSN,
		SampleRate: 1.0,

		AttachStacktrace: false,
		Environment:      "migration",
		ServerName:       "", // prevent hostname leakage
		Release:          build.Release(),

		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry_init").
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	log.Info("sentry telemetry initialized", logger.String("release", build.Release()))
	return nil
}

// Flush waits for buffered events to be delivered.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// applyPrivacyFilters strips host and user data from a Sentry event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if !allowedExtras[k] {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	event.Message = errors.ScrubMessage(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = errors.ScrubMessage(event.Exception[i].Value)
	}
	return event
}
