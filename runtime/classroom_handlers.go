package runtime

import (
	"context"
	"edusmarthub/domain"
	"edusmarthub/domain/event"
	"edusmarthub/errors"

	"github.com/samber/lo"
)

// joinClassroom adds the requester to the classroom. Privileged roles also join the monitor
// room and are announced to the other members with monitor_joined; the requester always
// receives a status snapshot.
func (d *Dispatcher) joinClassroom(ctx context.Context, req domain.Request) error {
	cmd := req.Command.(domain.JoinClassroomCommand)
	scope := cmd.Scope()

	if !d.rooms.Join(scope.Room(), req.ConnectionID) {
		return errors.ErrNotConnected
	}
	if req.Identity.Role.Privileged() {
		d.rooms.Join(scope.PrivilegedRoom(), req.ConnectionID)
		d.rooms.BroadcastExcept(ctx, scope.Room(), req.ConnectionID, event.New(event.MonitorJoined, event.MonitorJoinedPayload{
			ClassroomID: cmd.ClassroomID,
			UserID:      req.Identity.UserID,
			Name:        req.Identity.Name,
			Role:        req.Identity.Role,
			At:          req.ReceivedAt,
		}))
	} else if d.config.PresenceBroadcast {
		d.broadcastPresence(ctx, scope, req.Identity, event.PresenceJoined, req)
	}

	d.reply(ctx, req.ConnectionID, event.New(event.ClassroomStatus, d.Status(cmd.ClassroomID)))
	return nil
}

func (d *Dispatcher) studentActivity(ctx context.Context, req domain.Request) error {
	cmd := req.Command.(domain.StudentActivityCommand)
	scope := cmd.Scope()
	studentID := lo.CoalesceOrEmpty(cmd.StudentID, req.Identity.UserID)

	d.rooms.Broadcast(ctx, scope.Room(), event.New(event.StudentActivityUpdate, event.ActivityUpdate{
		ClassroomID: cmd.ClassroomID,
		StudentID:   studentID,
		StudentName: req.Identity.Name,
		Activity:    cmd.Activity,
		At:          req.ReceivedAt,
	}))
	d.persist(scope.Room(), req, domain.MessageStudentActivity, map[string]any{
		"studentId": studentID,
		"activity":  cmd.Activity,
	})
	return nil
}

func (d *Dispatcher) teacherAction(ctx context.Context, req domain.Request) error {
	cmd := req.Command.(domain.TeacherActionCommand)
	scope := cmd.Scope()

	d.rooms.Broadcast(ctx, scope.Room(), event.New(event.TeacherActionUpdate, event.TeacherActionPayload{
		ClassroomID: cmd.ClassroomID,
		TeacherID:   req.Identity.UserID,
		TeacherName: req.Identity.Name,
		Action:      cmd.Action,
		Metadata:    cmd.Metadata,
		At:          req.ReceivedAt,
	}))
	content := map[string]any{"action": cmd.Action}
	if len(cmd.Metadata) > 0 {
		content["metadata"] = cmd.Metadata
	}
	d.persist(scope.Room(), req, domain.MessageTeacherAction, content)
	return nil
}

func (d *Dispatcher) getClassroomStatus(ctx context.Context, req domain.Request) error {
	cmd := req.Command.(domain.GetClassroomStatusCommand)
	d.reply(ctx, req.ConnectionID, event.New(event.ClassroomStatus, d.Status(cmd.ClassroomID)))
	return nil
}

// participantLeft runs after the connection has already been removed from its rooms.
// It only notifies: students lose their active exam sessions and classrooms hear about the departure.
func (d *Dispatcher) participantLeft(ctx context.Context, req domain.Request) error {
	cmd := req.Command.(domain.ParticipantLeftCommand)
	scope := cmd.In

	switch scope.Type {
	case domain.ScopeExam:
		for _, subject := range d.sessions.EndConnection(scope.ID, req.ConnectionID) {
			d.rooms.Broadcast(ctx, scope.PrivilegedRoom(), event.New(event.StudentEndedExam, event.SessionChange{
				ExamID:      scope.ID,
				StudentID:   subject.StudentID,
				StudentName: subject.Name,
				Reason:      "disconnected",
				At:          req.ReceivedAt,
			}))
			d.persist(scope.Room(), req, domain.MessageSessionEnded, map[string]any{
				"studentId": subject.StudentID,
				"reason":    "disconnected",
			})
		}
	case domain.ScopeClassroom:
		if d.config.PresenceBroadcast && lo.Contains(cmd.Rooms, scope.Room()) {
			d.broadcastPresence(ctx, scope, req.Identity, event.PresenceLeft, req)
		}
	}
	return nil
}

func (d *Dispatcher) broadcastPresence(ctx context.Context, scope domain.Scope, who domain.Identity,
	change event.Presence, req domain.Request) {
	d.rooms.BroadcastExcept(ctx, scope.Room(), req.ConnectionID, event.New(event.ClassroomUpdate, event.ClassroomUpdatePayload{
		ClassroomID: scope.ID,
		Change:      change,
		UserID:      who.UserID,
		Name:        who.Name,
		Role:        who.Role,
		Members:     len(d.rooms.MembersOf(scope.Room())),
		At:          req.ReceivedAt,
	}))
}
