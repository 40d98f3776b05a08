package domain

import "time"

// Status is a point-in-time view of a classroom.
type Status struct {
	ClassroomID    string       `json:"classroomId"`
	TotalConnected int          `json:"totalConnected"`
	ByRole         map[Role]int `json:"byRole"`
	ActiveStudents int          `json:"activeStudents"`
	// Engagement is the percentage of student members active within the engagement window.
	Engagement     float64          `json:"engagement"`
	RecentActivity []ActivityRecord `json:"recentActivity"`
	At             time.Time        `json:"timestamp"`
}

type ActivityRecord struct {
	Type       MessageType    `json:"type"`
	SenderID   string         `json:"senderId"`
	SenderName string         `json:"senderName"`
	Content    map[string]any `json:"content"`
	At         time.Time      `json:"timestamp"`
}
