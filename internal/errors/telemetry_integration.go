// Package errors - telemetry integration (optional)
package errors

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/getsentry/sentry-go"
)

// TelemetryReporter is an interface for reporting errors to telemetry systems
type TelemetryReporter interface {
	ReportError(err *EnhancedError)
	IsEnabled() bool
}

// SentryReporter implements TelemetryReporter for Sentry
type SentryReporter struct {
	enabled bool
}

// NewSentryReporter creates a new Sentry telemetry reporter
func NewSentryReporter(enabled bool) *SentryReporter {
	return &SentryReporter{
		enabled: enabled,
	}
}

// IsEnabled returns whether Sentry telemetry is enabled
func (sr *SentryReporter) IsEnabled() bool {
	return sr.enabled
}

// ReportError reports an enhanced error to Sentry. Record-level failures are
// already captured in the failure ledger and are not forwarded.
func (sr *SentryReporter) ReportError(ee *EnhancedError) {
	if !sr.enabled || ee.IsReported() || IsRecordLevel(ee) {
		return
	}

	scrubbedMessage := ScrubMessage(fmt.Sprintf("[%s] %s", ee.Category, ee.GetMessage()))
	component := ee.GetComponent()

	sentry.WithScope(func(scope *sentry.Scope) {
		errorTitle := generateErrorTitle(ee)

		scope.SetTag("error_title", errorTitle)
		scope.SetTag("component", component)
		scope.SetTag("category", string(ee.Category))
		scope.SetTag("error_type", fmt.Sprintf("%T", ee.Err))
		if ee.Priority != "" {
			scope.SetTag("priority", ee.Priority)
		}

		for key, value := range ee.GetContext() {
			scrubbedValue := value
			if strValue, ok := value.(string); ok {
				scrubbedValue = ScrubMessage(strValue)
			}
			scope.SetContext(key, map[string]any{"value": scrubbedValue})
		}

		level := getErrorLevel(ee.Category)
		scope.SetLevel(level)
		scope.SetFingerprint([]string{errorTitle, component, string(ee.Category)})

		event := sentry.NewEvent()
		event.Message = scrubbedMessage
		event.Level = level
		event.Exception = []sentry.Exception{{
			Type:  errorTitle,
			Value: scrubbedMessage,
		}}

		sentry.CaptureEvent(event)
	})

	ee.MarkReported()
}

// generateErrorTitle creates a meaningful error title for Sentry based on enhanced error context
func generateErrorTitle(ee *EnhancedError) string {
	var titleParts []string

	if component := ee.GetComponent(); component != "" && component != ComponentUnknown {
		titleParts = append(titleParts, titleCase(component))
	}

	if categoryTitle := formatCategoryForTitle(ee.Category); categoryTitle != "" {
		titleParts = append(titleParts, categoryTitle)
	}

	if operation, ok := ee.GetContext()["operation"].(string); ok && operation != "" {
		titleParts = append(titleParts, formatOperationForTitle(operation))
	}

	if len(titleParts) == 0 {
		return fmt.Sprintf("%T", ee.Err)
	}

	return strings.Join(titleParts, " ")
}

// formatCategoryForTitle converts error categories to human-readable titles
func formatCategoryForTitle(category ErrorCategory) string {
	switch category {
	case CategoryValidation:
		return "Validation Error"
	case CategoryResolution:
		return "Resolution Error"
	case CategoryConstraint:
		return "Constraint Violation"
	case CategoryInfrastructure:
		return "Infrastructure Error"
	case CategoryDatabase:
		return "Database Error"
	case CategoryFileIO:
		return "File I/O Error"
	case CategoryConfiguration:
		return "Configuration Error"
	case CategoryIntegration:
		return "Integration Error"
	default:
		return string(category)
	}
}

// formatOperationForTitle converts operation context to human-readable format
func formatOperationForTitle(operation string) string {
	words := strings.Fields(strings.ReplaceAll(operation, "_", " "))
	for i, word := range words {
		words[i] = titleCase(word)
	}
	return strings.Join(words, " ")
}

// titleCase capitalizes the first letter of a string (replacement for deprecated strings.Title)
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// getErrorLevel returns appropriate Sentry level based on category
func getErrorLevel(category ErrorCategory) sentry.Level {
	switch category {
	case CategoryInfrastructure, CategoryDatabase:
		return sentry.LevelFatal
	case CategoryConfiguration:
		return sentry.LevelError
	case CategoryIntegration, CategoryFileIO:
		return sentry.LevelWarning
	default:
		return sentry.LevelError
	}
}

var (
	reporterMu              sync.RWMutex
	globalTelemetryReporter TelemetryReporter
)

// SetTelemetryReporter sets the global telemetry reporter
func SetTelemetryReporter(reporter TelemetryReporter) {
	reporterMu.Lock()
	defer reporterMu.Unlock()
	globalTelemetryReporter = reporter
	hasActiveReporting.Store(reporter != nil && reporter.IsEnabled())
}

// GetTelemetryReporter returns the current telemetry reporter
func GetTelemetryReporter() TelemetryReporter {
	reporterMu.RLock()
	defer reporterMu.RUnlock()
	return globalTelemetryReporter
}

// reportToTelemetry reports an error to the configured telemetry system
func reportToTelemetry(ee *EnhancedError) {
	if reporter := GetTelemetryReporter(); reporter != nil && reporter.IsEnabled() {
		reporter.ReportError(ee)
	}
}

var (
	urlQueryRegex = regexp.MustCompile(`(https?://[^?\s]+)\?\S*`)
	dsnRegex      = regexp.MustCompile(`(\w+):[^@\s/]+@`)
	emailRegex    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	uuidRegex     = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// ScrubMessage strips credentials, e-mail addresses and record ids
// from a message before it leaves the process.
func ScrubMessage(message string) string {
	scrubbed := urlQueryRegex.ReplaceAllString(message, "$1?[REDACTED]")
	scrubbed = dsnRegex.ReplaceAllString(scrubbed, "$1:[REDACTED]@")
	scrubbed = emailRegex.ReplaceAllString(scrubbed, "[EMAIL_REDACTED]")
	return uuidRegex.ReplaceAllString(scrubbed, "[ID_REDACTED]")
}
