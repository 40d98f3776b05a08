package domain

import (
	"fmt"
	"strings"
)

type ScopeType string

const (
	ScopeExam      ScopeType = "exam"
	ScopeClassroom ScopeType = "classroom"
)

const (
	proctorSuffix = "proctor"
	monitorSuffix = "monitor"
)

// RoomKey is the exact-match name of a broadcast group.
// There is no wildcard routing: exam:42 and exam:42:proctor are unrelated keys.
type RoomKey string

// Scope is the entity (exam or classroom) owning a pair of rooms and, for exams, an alert list.
type Scope struct {
	Type ScopeType
	ID   string
}

func ExamScope(id string) Scope      { return Scope{Type: ScopeExam, ID: id} }
func ClassroomScope(id string) Scope { return Scope{Type: ScopeClassroom, ID: id} }

func (s Scope) String() string { return string(s.Room()) }

// Room is the participant-facing room of the scope.
func (s Scope) Room() RoomKey {
	return RoomKey(fmt.Sprintf("%s:%s", s.Type, s.ID))
}

// PrivilegedRoom is the proctor (exam) or monitor (classroom) audience.
func (s Scope) PrivilegedRoom() RoomKey {
	suffix := monitorSuffix
	if s.Type == ScopeExam {
		suffix = proctorSuffix
	}
	return RoomKey(fmt.Sprintf("%s:%s:%s", s.Type, s.ID, suffix))
}

// ParseRoomKey returns the scope a room key belongs to and whether it is the privileged room.
func ParseRoomKey(key RoomKey) (Scope, bool, error) {
	parts := strings.Split(string(key), ":")
	if len(parts) < 2 || len(parts) > 3 || parts[1] == "" {
		return Scope{}, false, fmt.Errorf("malformed room key %q", key)
	}
	scope := Scope{Type: ScopeType(parts[0]), ID: parts[1]}
	switch scope.Type {
	case ScopeExam, ScopeClassroom:
	default:
		return Scope{}, false, fmt.Errorf("unknown scope type in room key %q", key)
	}
	if len(parts) == 2 {
		return scope, false, nil
	}
	if key != scope.PrivilegedRoom() {
		return Scope{}, false, fmt.Errorf("unknown role suffix in room key %q", key)
	}
	return scope, true, nil
}
