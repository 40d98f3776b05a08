//go:generate go run go.uber.org/mock/mockgen -source=proctoring_service.go -destination=../mocks/mock_proctoring_service.go -package=mocks
package services

import (
	"context"
	"edusmarthub/domain"
	"edusmarthub/projection"
	"edusmarthub/runtime"
)

// IProctoringService is the surface offered to callers that are not WebSocket participants.
type IProctoringService interface {
	ReportAlert(ctx context.Context, cmd domain.ReportAlertCommand) error
	ListAlerts(examID string, severity *domain.Severity) projection.AlertList
	ClassroomStatus(classroomID string) domain.Status
}

type ProctoringService struct {
	orchestrator *runtime.Orchestrator
}

func NewProctoringService(o *runtime.Orchestrator) *ProctoringService {
	return &ProctoringService{orchestrator: o}
}

// ReportAlert queues the alert; proctors receive it once its exam's shard has processed it.
func (s *ProctoringService) ReportAlert(ctx context.Context, cmd domain.ReportAlertCommand) error {
	return s.orchestrator.ReportAlert(ctx, cmd)
}

func (s *ProctoringService) ListAlerts(examID string, severity *domain.Severity) projection.AlertList {
	return s.orchestrator.ListAlerts(examID, severity)
}

func (s *ProctoringService) ClassroomStatus(classroomID string) domain.Status {
	return s.orchestrator.ClassroomStatus(classroomID)
}
