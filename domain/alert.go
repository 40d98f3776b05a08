package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity is ordinal: it controls the broadcast fan-out of an alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if sev.Rank() == 0 {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

type AlertKind string

const (
	KindTabSwitch          AlertKind = "tab_switch"
	KindWindowBlur         AlertKind = "window_blur"
	KindMultipleFaces      AlertKind = "multiple_faces"
	KindNoFace             AlertKind = "no_face"
	KindLookingAway        AlertKind = "looking_away"
	KindAudioDetected      AlertKind = "audio_detected"
	KindCopyPaste          AlertKind = "copy_paste"
	KindSuspiciousActivity AlertKind = "suspicious_activity"
)

type Acknowledgement struct {
	By string    `json:"acknowledgedBy"`
	At time.Time `json:"acknowledgedAt"`
}

// Alert is immutable once appended, except for its acknowledgement.
type Alert struct {
	ID              uuid.UUID        `json:"id"`
	ExamID          string           `json:"examId"`
	StudentID       string           `json:"studentId"`
	Kind            AlertKind        `json:"type"`
	Severity        Severity         `json:"severity"`
	Description     string           `json:"description"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
	CreatedAt       time.Time        `json:"timestamp"`
	IdempotencyKey  string           `json:"idempotencyKey,omitempty"`
	Acknowledgement *Acknowledgement `json:"acknowledgement,omitempty"`
}

func (a Alert) Scope() Scope { return ExamScope(a.ExamID) }

func (a Alert) Acknowledged() bool { return a.Acknowledgement != nil }

// ReducedAlert is what exam participants see of a high severity alert.
type ReducedAlert struct {
	ID        uuid.UUID `json:"id"`
	ExamID    string    `json:"examId"`
	StudentID string    `json:"studentId"`
	Kind      AlertKind `json:"type"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"timestamp"`
}

func (a Alert) Reduced() ReducedAlert {
	return ReducedAlert{
		ID:        a.ID,
		ExamID:    a.ExamID,
		StudentID: a.StudentID,
		Kind:      a.Kind,
		Severity:  a.Severity,
		CreatedAt: a.CreatedAt,
	}
}
