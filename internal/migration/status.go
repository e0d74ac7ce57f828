package migration

import (
	"fmt"
	"strings"

	"github.com/tphakala/premigrate/internal/errors"
)

// CaptureStatus is the lifecycle state of a capture session.
type CaptureStatus string

const (
	CaptureStatusRecordingAvailable CaptureStatus = "RECORDING_AVAILABLE"
	CaptureStatusNoRecording        CaptureStatus = "NO_RECORDING"
	CaptureStatusFailure            CaptureStatus = "FAILURE"
	CaptureStatusProcessing         CaptureStatus = "PROCESSING"
)

// legacyCaptureStatuses maps folded legacy status strings onto the closed
// status set.
var legacyCaptureStatuses = map[string]CaptureStatus{
	"":                    CaptureStatusRecordingAvailable,
	"deleted":             CaptureStatusRecordingAvailable,
	"available":           CaptureStatusRecordingAvailable,
	"recording available": CaptureStatusRecordingAvailable,
	"ready":               CaptureStatusRecordingAvailable,
	"complete":            CaptureStatusRecordingAvailable,
	"completed":           CaptureStatusRecordingAvailable,
	"no recording":        CaptureStatusNoRecording,
	"failure":             CaptureStatusFailure,
	"failed":              CaptureStatusFailure,
	"error":               CaptureStatusFailure,
	"processing":          CaptureStatusProcessing,
	"initialising":        CaptureStatusProcessing,
	"initializing":        CaptureStatusProcessing,
	"recording":           CaptureStatusProcessing,
}

// ParseCaptureStatus maps a legacy recording status onto a CaptureStatus.
// A nil status means the recording is available. The second result reports
// whether the legacy status marks the chain as deleted. Unknown statuses
// are validation errors.
func ParseCaptureStatus(legacyStatus *string) (CaptureStatus, bool, error) {
	if legacyStatus == nil {
		return CaptureStatusRecordingAvailable, false, nil
	}

	key := strings.ToLower(strings.Join(strings.Fields(*legacyStatus), " "))
	status, ok := legacyCaptureStatuses[key]
	if !ok {
		return "", false, errors.ValidationError(fmt.Sprintf("Unknown capture session status: %s", *legacyStatus))
	}
	return status, key == "deleted", nil
}
