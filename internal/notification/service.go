package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/logger"
	"github.com/tphakala/premigrate/internal/migration"
)

// defaultSendTimeout bounds one delivery when no timeout is configured.
const defaultSendTimeout = 30 * time.Second

// Service sends run summaries to every enabled provider.
type Service struct {
	providers []Provider
	timeout   time.Duration
	log       logger.Logger
}

// NewService creates a Service over providers. Disabled providers and
// providers with an invalid configuration are left out.
func NewService(providers []Provider, timeout time.Duration, log logger.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	s := &Service{timeout: timeout, log: log.Module("notification")}
	for _, p := range providers {
		if !p.IsEnabled() {
			continue
		}
		if err := p.ValidateConfig(); err != nil {
			s.log.Warn("notification provider disabled",
				logger.String("provider", p.GetName()),
				logger.Error(err))
			continue
		}
		s.providers = append(s.providers, p)
	}
	return s
}

// NewFromSettings creates a Service from the notification settings. It
// returns nil when notifications are disabled.
func NewFromSettings(settings *conf.Settings, log logger.Logger) *Service {
	cfg := settings.Notification
	if !cfg.Enabled {
		return nil
	}
	p := NewShoutrrrProvider("shoutrrr", true, cfg.URLs, nil, cfg.Timeout)
	return NewService([]Provider{p}, cfg.Timeout, log)
}

// Providers returns the providers that passed validation.
func (s *Service) Providers() []Provider {
	if s == nil {
		return nil
	}
	return s.providers
}

// NotifyRun sends the summary of a finished or halted run. Delivery
// failures are logged and returned joined; they never change the outcome
// of the run.
func (s *Service) NotifyRun(ctx context.Context, report *migration.RunReport, runErr error) error {
	if s == nil || len(s.providers) == 0 || report == nil {
		return nil
	}

	n := RunSummary(report, runErr)
	var errs []error
	for _, p := range s.providers {
		if !p.SupportsType(n.Type) {
			continue
		}
		sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := p.Send(sendCtx, n)
		cancel()
		if err != nil {
			s.log.Warn("failed to send run summary",
				logger.String("provider", p.GetName()),
				logger.Error(err))
			errs = append(errs, err)
			continue
		}
		s.log.Debug("run summary sent", logger.String("provider", p.GetName()))
	}
	return errors.Join(errs...)
}

// RunSummary builds the notification for a run.
func RunSummary(report *migration.RunReport, runErr error) *Notification {
	n := &Notification{Type: TypeInfo, Title: "Migration run completed"}
	if report.Halted {
		n.Type = TypeError
		n.Title = "Migration run halted at " + report.HaltedAt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s\n", report.RunID)
	fmt.Fprintf(&b, "Inserted %d rows, %d failures recorded, elapsed %s\n",
		report.Inserted(), report.Failed(), report.Elapsed.Round(time.Second))
	for _, res := range report.Results {
		if res.Failed > 0 {
			fmt.Fprintf(&b, "%s: %d failed\n", res.Entity, res.Failed)
		}
	}
	if runErr != nil {
		fmt.Fprintf(&b, "Error: %s\n", errors.ScrubMessage(runErr.Error()))
	}
	n.Message = strings.TrimRight(b.String(), "\n")
	return n
}
