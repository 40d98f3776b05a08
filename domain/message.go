// Package domain contains core concepts of the real-time monitoring system.
// This file defines the durable record handed to the persistence collaborator.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageSessionStarted  MessageType = "session_started"
	MessageSessionEnded    MessageType = "session_ended"
	MessageAlert           MessageType = "proctoring_alert"
	MessageStudentActivity MessageType = "student_activity"
	MessageTeacherAction   MessageType = "teacher_action"
)

// Message is an append-only log entry. Content must only hold JSON-compatible values.
type Message struct {
	ID         uuid.UUID
	RoomKey    RoomKey
	SenderID   string
	SenderName string
	Type       MessageType
	Content    map[string]any
	Timestamp  time.Time
}
