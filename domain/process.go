package domain

import "time"

type PidStatus string

const (
	RUNNING PidStatus = "RUNNING"
	SLEEP   PidStatus = "SLEEP"
	STOP    PidStatus = "STOP"
	IDLE    PidStatus = "IDLE"
	ZOMBIE  PidStatus = "ZOMBIE"
	WAIT    PidStatus = "WAIT"
	LOCK    PidStatus = "LOCK"
	UNKNOWN PidStatus = "UNKNOWN"
)

func ToStatus(status string) PidStatus {
	switch status {
	case "R":
		return RUNNING
	case "S":
		return SLEEP
	case "T":
		return STOP
	case "I":
		return IDLE
	case "Z":
		return ZOMBIE
	case "W":
		return WAIT
	case "L":
		return LOCK
	default:
		return UNKNOWN
	}
}

// Health is the last sample of the server process and of its live state.
type Health struct {
	PID         int32     `json:"pid"`
	Status      PidStatus `json:"status"`
	CPU         float64   `json:"cpuPercent"`
	RAM         uint64    `json:"ramBytes"`
	Connections int       `json:"connections"`
	Rooms       int       `json:"rooms"`
	At          time.Time `json:"timestamp"`
}
