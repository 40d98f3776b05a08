package projection

import (
	"edusmarthub/domain"
	"slices"
	"strings"
	"sync"
	"time"
)

type ActiveSubject struct {
	StudentID    string
	Name         string
	ConnectionID domain.ConnectionID
	StartedAt    time.Time
}

// ActiveSessions tracks which students are currently taking which exam.
type ActiveSessions struct {
	mu    sync.RWMutex
	exams map[string]map[string]ActiveSubject
}

func NewActiveSessions() *ActiveSessions {
	return &ActiveSessions{exams: make(map[string]map[string]ActiveSubject)}
}

// Start records the subject; starting again refreshes the entry.
func (s *ActiveSessions) Start(examID string, subject ActiveSubject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exams[examID]; !ok {
		s.exams[examID] = make(map[string]ActiveSubject)
	}
	s.exams[examID][subject.StudentID] = subject
}

func (s *ActiveSessions) End(examID, studentID string) (ActiveSubject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subject, ok := s.exams[examID][studentID]
	if !ok {
		return ActiveSubject{}, false
	}
	s.remove(examID, studentID)
	return subject, true
}

// EndConnection ends every session of the exam that was started from the given connection.
func (s *ActiveSessions) EndConnection(examID string, id domain.ConnectionID) []ActiveSubject {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ended []ActiveSubject
	for studentID, subject := range s.exams[examID] {
		if subject.ConnectionID == id {
			ended = append(ended, subject)
			s.remove(examID, studentID)
		}
	}
	sortSubjects(ended)
	return ended
}

// remove must be called with mu held.
func (s *ActiveSessions) remove(examID, studentID string) {
	delete(s.exams[examID], studentID)
	if len(s.exams[examID]) == 0 {
		delete(s.exams, examID)
	}
}

func (s *ActiveSessions) Active(examID string) []ActiveSubject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]ActiveSubject, 0, len(s.exams[examID]))
	for _, subject := range s.exams[examID] {
		res = append(res, subject)
	}
	sortSubjects(res)
	return res
}

func sortSubjects(subjects []ActiveSubject) {
	slices.SortFunc(subjects, func(a, b ActiveSubject) int {
		return strings.Compare(a.StudentID, b.StudentID)
	})
}
