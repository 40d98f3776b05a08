package domain

import "time"

type CommandType string

const (
	CmdStartExamProctoring     CommandType = "start_exam_proctoring"
	CmdEndExamProctoring       CommandType = "end_exam_proctoring"
	CmdProctoringAlert         CommandType = "proctoring_alert"
	CmdGetProctoringAlerts     CommandType = "get_proctoring_alerts"
	CmdAcknowledgeAlert        CommandType = "acknowledge_alert"
	CmdJoinClassroomMonitoring CommandType = "join_classroom_monitoring"
	CmdStudentActivity         CommandType = "student_activity"
	CmdTeacherAction           CommandType = "teacher_action"
	CmdGetClassroomStatus      CommandType = "get_classroom_status"

	// CmdParticipantLeft is never received from a client, it is produced on disconnect.
	CmdParticipantLeft CommandType = "participant_left"
)

type Command interface {
	Type() CommandType
	Scope() Scope
}

// Request is one command together with the connection that sent it.
// ConnectionID is empty for commands injected by the server itself.
type Request struct {
	ConnectionID ConnectionID
	Identity     Identity
	Command      Command
	ReceivedAt   time.Time
}

type StartExamCommand struct {
	ExamID    string `json:"examId" validate:"required,max=128,excludesall=:0x7C"`
	StudentID string `json:"studentId"`
}

func (c StartExamCommand) Type() CommandType { return CmdStartExamProctoring }
func (c StartExamCommand) Scope() Scope      { return ExamScope(c.ExamID) }

type EndExamCommand struct {
	ExamID    string `json:"examId" validate:"required,max=128,excludesall=:0x7C"`
	StudentID string `json:"studentId"`
}

func (c EndExamCommand) Type() CommandType { return CmdEndExamProctoring }
func (c EndExamCommand) Scope() Scope      { return ExamScope(c.ExamID) }

type ReportAlertCommand struct {
	ExamID         string         `json:"examId" validate:"required,max=128,excludesall=:0x7C"`
	StudentID      string         `json:"studentId" validate:"required"`
	Kind           AlertKind      `json:"type" validate:"required,oneof=tab_switch window_blur multiple_faces no_face looking_away audio_detected copy_paste suspicious_activity"`
	Severity       Severity       `json:"severity" validate:"required,oneof=low medium high"`
	Description    string         `json:"description" validate:"max=2000"`
	Metadata       map[string]any `json:"metadata"`
	IdempotencyKey string         `json:"idempotencyKey" validate:"max=128"`
}

func (c ReportAlertCommand) Type() CommandType { return CmdProctoringAlert }
func (c ReportAlertCommand) Scope() Scope      { return ExamScope(c.ExamID) }

type GetAlertsCommand struct {
	ExamID   string   `json:"examId" validate:"required,max=128,excludesall=:0x7C"`
	Severity Severity `json:"severity" validate:"omitempty,oneof=low medium high"`
}

func (c GetAlertsCommand) Type() CommandType { return CmdGetProctoringAlerts }
func (c GetAlertsCommand) Scope() Scope      { return ExamScope(c.ExamID) }

type AcknowledgeAlertCommand struct {
	ExamID  string `json:"examId" validate:"required,max=128,excludesall=:0x7C"`
	AlertID string `json:"alertId" validate:"required"`
}

func (c AcknowledgeAlertCommand) Type() CommandType { return CmdAcknowledgeAlert }
func (c AcknowledgeAlertCommand) Scope() Scope      { return ExamScope(c.ExamID) }

type JoinClassroomCommand struct {
	ClassroomID string `json:"classroomId" validate:"required,max=128,excludesall=:0x7C"`
}

func (c JoinClassroomCommand) Type() CommandType { return CmdJoinClassroomMonitoring }
func (c JoinClassroomCommand) Scope() Scope      { return ClassroomScope(c.ClassroomID) }

type StudentActivityCommand struct {
	ClassroomID string         `json:"classroomId" validate:"required,max=128,excludesall=:0x7C"`
	StudentID   string         `json:"studentId"`
	Activity    map[string]any `json:"activity" validate:"required"`
}

func (c StudentActivityCommand) Type() CommandType { return CmdStudentActivity }
func (c StudentActivityCommand) Scope() Scope      { return ClassroomScope(c.ClassroomID) }

type TeacherActionCommand struct {
	ClassroomID string         `json:"classroomId" validate:"required,max=128,excludesall=:0x7C"`
	Action      string         `json:"action" validate:"required,max=256"`
	Metadata    map[string]any `json:"metadata"`
}

func (c TeacherActionCommand) Type() CommandType { return CmdTeacherAction }
func (c TeacherActionCommand) Scope() Scope      { return ClassroomScope(c.ClassroomID) }

type GetClassroomStatusCommand struct {
	ClassroomID string `json:"classroomId" validate:"required,max=128,excludesall=:0x7C"`
}

func (c GetClassroomStatusCommand) Type() CommandType { return CmdGetClassroomStatus }
func (c GetClassroomStatusCommand) Scope() Scope      { return ClassroomScope(c.ClassroomID) }

// ParticipantLeftCommand carries the rooms of one scope a disconnected connection was removed from.
type ParticipantLeftCommand struct {
	In    Scope
	Rooms []RoomKey
}

func (c ParticipantLeftCommand) Type() CommandType { return CmdParticipantLeft }
func (c ParticipantLeftCommand) Scope() Scope      { return c.In }
