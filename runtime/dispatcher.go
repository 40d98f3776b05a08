package runtime

import (
	"context"
	"edusmarthub/contract"
	"edusmarthub/domain"
	"edusmarthub/domain/event"
	"edusmarthub/errors"
	"edusmarthub/infrastructure/storage"
	"edusmarthub/projection"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type handler func(ctx context.Context, req domain.Request) error

type DispatcherConfig struct {
	// PresenceBroadcast emits classroom_update when students join or leave a classroom.
	PresenceBroadcast   bool
	EngagementWindow    time.Duration
	RecentActivityLimit int
}

// Dispatcher is the protocol table: one handler per command type.
// Handlers run synchronously against in-memory state; the caller is expected to serialise
// requests of the same scope (see Orchestrator).
type Dispatcher struct {
	log       *slog.Logger
	registry  *Registry
	rooms     *RoomManager
	alerts    *projection.AlertStore
	sessions  *projection.ActiveSessions
	messages  storage.IMessageRepository
	persister contract.Persister
	config    DispatcherConfig
	handlers  map[domain.CommandType]handler
	now       func() time.Time
}

func NewDispatcher(log *slog.Logger, registry *Registry, rooms *RoomManager,
	alerts *projection.AlertStore, sessions *projection.ActiveSessions,
	messages storage.IMessageRepository, persister contract.Persister,
	config DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		log:       log,
		registry:  registry,
		rooms:     rooms,
		alerts:    alerts,
		sessions:  sessions,
		messages:  messages,
		persister: persister,
		config:    config,
		now:       time.Now,
	}
	d.handlers = map[domain.CommandType]handler{
		domain.CmdStartExamProctoring:     d.startExam,
		domain.CmdEndExamProctoring:       d.endExam,
		domain.CmdProctoringAlert:         d.reportAlert,
		domain.CmdGetProctoringAlerts:     d.getAlerts,
		domain.CmdAcknowledgeAlert:        d.acknowledgeAlert,
		domain.CmdJoinClassroomMonitoring: d.joinClassroom,
		domain.CmdStudentActivity:         d.studentActivity,
		domain.CmdTeacherAction:           d.teacherAction,
		domain.CmdGetClassroomStatus:      d.getClassroomStatus,
		domain.CmdParticipantLeft:         d.participantLeft,
	}
	return d
}

// Execute runs the handler of the request's command.
// A failing request gets an error event back on its own connection and nowhere else.
func (d *Dispatcher) Execute(ctx context.Context, req domain.Request) error {
	if req.ReceivedAt.IsZero() {
		req.ReceivedAt = d.now().UTC()
	}
	h, ok := d.handlers[req.Command.Type()]
	if !ok {
		err := fmt.Errorf("%w: %q", errors.ErrUnknownEvent, req.Command.Type())
		d.ReplyError(ctx, req.ConnectionID, err)
		return err
	}
	if err := h(ctx, req); err != nil {
		d.ReplyError(ctx, req.ConnectionID, err)
		return err
	}
	return nil
}

func (d *Dispatcher) ReplyError(ctx context.Context, id domain.ConnectionID, err error) {
	d.reply(ctx, id, event.NewError(err.Error()))
}

func (d *Dispatcher) reply(ctx context.Context, id domain.ConnectionID, e event.Outbound) {
	if id == "" {
		return
	}
	if err := d.rooms.Send(ctx, id, e); err != nil {
		d.log.Warn("Reply not delivered", "connection_id", id, "event", e.Type, "error", err)
	}
}

func (d *Dispatcher) persist(room domain.RoomKey, req domain.Request, t domain.MessageType, content map[string]any) {
	if d.persister == nil {
		return
	}
	d.persister.Persist(domain.Message{
		ID:         uuid.New(),
		RoomKey:    room,
		SenderID:   req.Identity.UserID,
		SenderName: req.Identity.Name,
		Type:       t,
		Content:    content,
		Timestamp:  req.ReceivedAt,
	})
}
