package notification

import (
	"context"
	"io"
	"log"
	"regexp"
	"slices"
	"strings"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/tphakala/premigrate/internal/errors"
)

// serviceURLPattern matches shoutrrr service URLs, which carry tokens.
var serviceURLPattern = regexp.MustCompile(`\b([a-z][a-z0-9+]*)://\S+`)

// ShoutrrrProvider sends via nicholas-fedor/shoutrrr.
// Creates a single sender for multiple URLs.
type ShoutrrrProvider struct {
	name    string
	enabled bool
	urls    []string
	types   map[Type]bool
	sender  *router.ServiceRouter
	timeout time.Duration
}

func NewShoutrrrProvider(name string, enabled bool, urls []string, supportedTypes []Type, timeout time.Duration) *ShoutrrrProvider {
	sp := &ShoutrrrProvider{
		name:    strings.TrimSpace(name),
		enabled: enabled,
		urls:    slices.Clone(urls),
		types:   map[Type]bool{},
		timeout: timeout,
	}
	if sp.name == "" {
		sp.name = "shoutrrr"
	}
	if len(supportedTypes) == 0 {
		supportedTypes = []Type{TypeInfo, TypeError}
	}
	for _, t := range supportedTypes {
		sp.types[t] = true
	}
	return sp
}

func (s *ShoutrrrProvider) GetName() string          { return s.name }
func (s *ShoutrrrProvider) IsEnabled() bool          { return s.enabled }
func (s *ShoutrrrProvider) SupportsType(t Type) bool { return s.types[t] }

func (s *ShoutrrrProvider) ValidateConfig() error {
	if !s.enabled {
		return nil
	}
	if len(s.urls) == 0 {
		return errors.Newf("at least one notification URL is required").
			Category(errors.CategoryConfiguration).
			Context("provider", s.name).
			Build()
	}
	// Build sender to validate URLs
	sender, err := shoutrrr.CreateSender(s.urls...)
	if err != nil {
		return errors.New(sanitize(err)).
			Category(errors.CategoryConfiguration).
			Context("provider", s.name).
			Build()
	}
	s.sender = sender
	if s.timeout > 0 {
		s.sender.Timeout = s.timeout
	}
	s.sender.SetLogger(log.New(io.Discard, "", 0))
	return nil
}

func (s *ShoutrrrProvider) Send(ctx context.Context, n *Notification) error {
	if s.sender == nil {
		return errors.Newf("shoutrrr sender not initialized").
			Category(errors.CategoryIntegration).
			Context("provider", s.name).
			Build()
	}
	_ = ctx // router handles its own timeouts

	params := stypes.Params{}
	if n.Title != "" {
		params.SetTitle(n.Title)
	}
	for _, err := range s.sender.Send(n.Message, &params) {
		if err != nil {
			return errors.New(sanitize(err)).
				Category(errors.CategoryIntegration).
				Context("provider", s.name).
				Build()
		}
	}
	return nil
}

// sanitizedError hides service URLs and credentials from the message.
// The original error stays reachable through Unwrap.
type sanitizedError struct {
	original     error
	sanitizedMsg string
}

func (e *sanitizedError) Error() string { return e.sanitizedMsg }
func (e *sanitizedError) Unwrap() error { return e.original }

func sanitize(err error) error {
	msg := serviceURLPattern.ReplaceAllString(err.Error(), "$1://[REDACTED]")
	return &sanitizedError{original: err, sanitizedMsg: errors.ScrubMessage(msg)}
}
