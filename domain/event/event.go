package event

import (
	"edusmarthub/domain"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	StudentStartedExam       Type = "student_started_exam"
	StudentEndedExam         Type = "student_ended_exam"
	ProctoringAlert          Type = "proctoring_alert"
	ProctoringAlertBroadcast Type = "proctoring_alert_broadcast"
	ProctoringAlerts         Type = "proctoring_alerts"
	AlertAcknowledged        Type = "alert_acknowledged"
	Error                    Type = "error"
	ClassroomStatus          Type = "classroom_status"
	StudentActivityUpdate    Type = "student_activity_update"
	TeacherActionUpdate      Type = "teacher_action_update"
	MonitorJoined            Type = "monitor_joined"
	ClassroomUpdate          Type = "classroom_update"
)

// Outbound is the envelope written to a connection.
type Outbound struct {
	Type Type `json:"event"`
	Data any  `json:"data"`
}

func New(t Type, data any) Outbound { return Outbound{Type: t, Data: data} }

func NewError(message string) Outbound {
	return Outbound{Type: Error, Data: ErrorPayload{Message: message}}
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type SessionChange struct {
	ExamID      string    `json:"examId"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	Reason      string    `json:"reason,omitempty"`
	At          time.Time `json:"timestamp"`
}

type AlertList struct {
	ExamID string         `json:"examId"`
	Alerts []domain.Alert `json:"alerts"`
	Total  int            `json:"total"`
	Count  int            `json:"count"`
}

type AlertAck struct {
	ExamID         string    `json:"examId"`
	AlertID        uuid.UUID `json:"alertId"`
	AcknowledgedBy string    `json:"acknowledgedBy"`
	AcknowledgedAt time.Time `json:"acknowledgedAt"`
}

type ActivityUpdate struct {
	ClassroomID string         `json:"classroomId"`
	StudentID   string         `json:"studentId"`
	StudentName string         `json:"studentName"`
	Activity    map[string]any `json:"activity"`
	At          time.Time      `json:"timestamp"`
}

type TeacherActionPayload struct {
	ClassroomID string         `json:"classroomId"`
	TeacherID   string         `json:"teacherId"`
	TeacherName string         `json:"teacherName"`
	Action      string         `json:"action"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	At          time.Time      `json:"timestamp"`
}

type MonitorJoinedPayload struct {
	ClassroomID string      `json:"classroomId"`
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Role        domain.Role `json:"role"`
	At          time.Time   `json:"timestamp"`
}

type Presence string

const (
	PresenceJoined Presence = "joined"
	PresenceLeft   Presence = "left"
)

type ClassroomUpdatePayload struct {
	ClassroomID string      `json:"classroomId"`
	Change      Presence    `json:"change"`
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Role        domain.Role `json:"role"`
	Members     int         `json:"members"`
	At          time.Time   `json:"timestamp"`
}
