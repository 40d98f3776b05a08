// Package domain contains core concepts of the real-time monitoring system.
// This file defines participant identities and roles.
// No runtime, network, or UI logic should be added here.
package domain

import "fmt"

type ConnectionID string

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleProctor Role = "proctor"
	RoleMonitor Role = "monitor"
)

var Roles = []Role{RoleStudent, RoleTeacher, RoleProctor, RoleMonitor}

// Privileged roles belong to the proctor/monitor audience of a scope.
func (r Role) Privileged() bool {
	return r == RoleTeacher || r == RoleProctor || r == RoleMonitor
}

func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Identity is established by the transport before the first event and never changes afterwards.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}
