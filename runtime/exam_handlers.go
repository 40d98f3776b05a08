package runtime

import (
	"context"
	"edusmarthub/domain"
	"edusmarthub/domain/event"
	"edusmarthub/errors"
	"edusmarthub/projection"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// startExam puts a student in the exam room and tells the proctors.
// Privileged roles join the exam room and the proctor room, which is how the proctor audience forms.
func (d *Dispatcher) startExam(ctx context.Context, req domain.Request) error {
	cmd := req.Command.(domain.StartExamCommand)
	scope := cmd.Scope()

	if req.Identity.Role.Privileged() {
		if !d.rooms.Join(scope.Room(), req.ConnectionID) {
			return errors.ErrNotConnected
		}
		d.rooms.Join(scope.PrivilegedRoom(), req.ConnectionID)
		d.log.Info("Proctor joined exam", "exam_id", cmd.ExamID, "user_id", req.Identity.UserID)
		return nil
	}

	studentID := lo.CoalesceOrEmpty(cmd.StudentID, req.Identity.UserID)
	if req.ConnectionID != "" && !d.rooms.Join(scope.Room(), req.ConnectionID) {
		return errors.ErrNotConnected
	}
	d.sessions.Start(cmd.ExamID, projection.ActiveSubject{
		StudentID:    studentID,
		Name:         req.Identity.Name,
		ConnectionID: req.ConnectionID,
		StartedAt:    req.ReceivedAt,
	})

	d.rooms.Broadcast(ctx, scope.PrivilegedRoom(), event.New(event.StudentStartedExam, event.SessionChange{
		ExamID:      cmd.ExamID,
		StudentID:   studentID,
		StudentName: req.Identity.Name,
		At:          req.ReceivedAt,
	}))
	d.persist(scope.Room(), req, domain.MessageSessionStarted, map[string]any{"studentId": studentID})
	d.log.Info("Student started exam", "exam_id", cmd.ExamID, "student_id", studentID)
	return nil
}

func (d *Dispatcher) endExam(ctx context.Context, req domain.Request) error {
	cmd := req.Command.(domain.EndExamCommand)
	scope := cmd.Scope()

	d.rooms.Leave(scope.Room(), req.ConnectionID)
	d.rooms.Leave(scope.PrivilegedRoom(), req.ConnectionID)
	if req.Identity.Role.Privileged() && cmd.StudentID == "" {
		return nil
	}

	studentID := lo.CoalesceOrEmpty(cmd.StudentID, req.Identity.UserID)
	if _, active := d.sessions.End(cmd.ExamID, studentID); !active {
		d.log.Debug("No active session to end", "exam_id", cmd.ExamID, "student_id", studentID)
		return nil
	}
	d.rooms.Broadcast(ctx, scope.PrivilegedRoom(), event.New(event.StudentEndedExam, event.SessionChange{
		ExamID:      cmd.ExamID,
		StudentID:   studentID,
		StudentName: req.Identity.Name,
		At:          req.ReceivedAt,
	}))
	d.persist(scope.Room(), req, domain.MessageSessionEnded, map[string]any{"studentId": studentID})
	d.log.Info("Student ended exam", "exam_id", cmd.ExamID, "student_id", studentID)
	return nil
}

// reportAlert always reaches the proctor room; the exam room only hears about high severity
// alerts, and only through the reduced payload.
func (d *Dispatcher) reportAlert(ctx context.Context, req domain.Request) error {
	cmd := req.Command.(domain.ReportAlertCommand)
	scope := cmd.Scope()

	alert, appended := d.alerts.Append(scope, domain.Alert{
		ExamID:         cmd.ExamID,
		StudentID:      cmd.StudentID,
		Kind:           cmd.Kind,
		Severity:       cmd.Severity,
		Description:    cmd.Description,
		Metadata:       cmd.Metadata,
		IdempotencyKey: cmd.IdempotencyKey,
		CreatedAt:      req.ReceivedAt,
	})
	if !appended {
		d.log.Debug("Duplicate alert ignored", "exam_id", cmd.ExamID, "idempotency_key", cmd.IdempotencyKey)
		return nil
	}

	d.rooms.Broadcast(ctx, scope.PrivilegedRoom(), event.New(event.ProctoringAlert, alert))
	if alert.Severity == domain.SeverityHigh {
		d.rooms.Broadcast(ctx, scope.Room(), event.New(event.ProctoringAlertBroadcast, alert.Reduced()))
	}

	content := map[string]any{
		"alertId":     alert.ID.String(),
		"studentId":   alert.StudentID,
		"type":        string(alert.Kind),
		"severity":    string(alert.Severity),
		"description": alert.Description,
	}
	if len(alert.Metadata) > 0 {
		content["metadata"] = alert.Metadata
	}
	d.persist(scope.PrivilegedRoom(), req, domain.MessageAlert, content)
	d.log.Info("Proctoring alert",
		"exam_id", cmd.ExamID, "student_id", alert.StudentID,
		"type", alert.Kind, "severity", alert.Severity)
	return nil
}

func (d *Dispatcher) getAlerts(ctx context.Context, req domain.Request) error {
	cmd := req.Command.(domain.GetAlertsCommand)
	if _, ok := d.registry.Identity(req.ConnectionID); !ok {
		return errors.ErrNotConnected
	}
	var filter *domain.Severity
	if cmd.Severity != "" {
		filter = lo.ToPtr(cmd.Severity)
	}
	list := d.alerts.List(cmd.Scope(), filter)
	d.reply(ctx, req.ConnectionID, event.New(event.ProctoringAlerts, event.AlertList{
		ExamID: cmd.ExamID,
		Alerts: list.Alerts,
		Total:  list.Total,
		Count:  list.Filtered,
	}))
	return nil
}

func (d *Dispatcher) acknowledgeAlert(ctx context.Context, req domain.Request) error {
	cmd := req.Command.(domain.AcknowledgeAlertCommand)
	id, err := uuid.Parse(cmd.AlertID)
	if err != nil {
		return fmt.Errorf("%w: alert %q in scope %s", errors.ErrNotFound, cmd.AlertID, cmd.Scope())
	}
	alert, err := d.alerts.Acknowledge(cmd.Scope(), id, req.Identity.UserID)
	if err != nil {
		return err
	}
	d.reply(ctx, req.ConnectionID, event.New(event.AlertAcknowledged, event.AlertAck{
		ExamID:         cmd.ExamID,
		AlertID:        alert.ID,
		AcknowledgedBy: alert.Acknowledgement.By,
		AcknowledgedAt: alert.Acknowledgement.At,
	}))
	return nil
}
