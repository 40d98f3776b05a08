// Package runtime routes inbound requests, owns room membership and dispatches events.
// It serialises the work of each scope without containing transport concerns.
package runtime

import (
	"context"
	"edusmarthub/contract"
	"edusmarthub/domain"
	"edusmarthub/errors"
	"edusmarthub/projection"
	"edusmarthub/runtime/workers"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/samber/lo"
)

// SystemIdentity is the sender of alerts reported through the public entry point.
var SystemIdentity = domain.Identity{UserID: "system", Name: "system", Role: domain.RoleMonitor}

type OrchestratorConfig struct {
	NumShards            int
	ShardBufferSize      int
	MetricInterval       time.Duration
	LowCapacityThreshold int
}

type Orchestrator struct {
	mu          sync.Mutex
	log         *slog.Logger
	supervisor  contract.ISupervisor
	registry    *Registry
	alerts      *projection.AlertStore
	dispatcher  *Dispatcher
	persistence *workers.PersistenceWorker
	shards      []chan domain.Request
	config      OrchestratorConfig
	started     bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry,
	alerts *projection.AlertStore, dispatcher *Dispatcher, persistence *workers.PersistenceWorker,
	config OrchestratorConfig) *Orchestrator {
	config.NumShards = max(config.NumShards, 1)
	shards := make([]chan domain.Request, config.NumShards)
	for i := range shards {
		shards[i] = make(chan domain.Request, config.ShardBufferSize)
	}
	return &Orchestrator{
		log:         log,
		supervisor:  supervisor,
		registry:    registry,
		alerts:      alerts,
		dispatcher:  dispatcher,
		persistence: persistence,
		shards:      shards,
		config:      config,
	}
}

// Connect registers a freshly upgraded connection with its identity and outbound sink.
func (o *Orchestrator) Connect(id domain.ConnectionID, identity domain.Identity, sink contract.EventSink) {
	o.registry.Register(id, identity, sink)
	o.log.Info("Participant connected", "connection_id", id, "user_id", identity.UserID, "role", identity.Role)
}

// Handle decodes one inbound frame of a connection and routes it to its scope's shard.
// Undecodable frames are answered with an error event on the same connection.
func (o *Orchestrator) Handle(ctx context.Context, id domain.ConnectionID, raw []byte) error {
	identity, ok := o.registry.Identity(id)
	if !ok {
		return errors.ErrNotConnected
	}
	o.registry.Touch(id)

	cmd, err := Decode(raw)
	if err != nil {
		o.dispatcher.ReplyError(ctx, id, err)
		return err
	}
	return o.Submit(ctx, domain.Request{
		ConnectionID: id,
		Identity:     identity,
		Command:      cmd,
		ReceivedAt:   time.Now().UTC(),
	})
}

// Submit queues a request on the shard owning its scope.
// It blocks while the shard is full, until ctx is done.
func (o *Orchestrator) Submit(ctx context.Context, req domain.Request) error {
	shard := o.shards[o.shardOf(req.Command.Scope())]
	select {
	case shard <- req:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", errors.ErrQueueClosed, ctx.Err())
	}
}

func (o *Orchestrator) shardOf(scope domain.Scope) int {
	return int(xxhash.Sum64String(string(scope.Room())) % uint64(len(o.shards)))
}

// Disconnect removes the connection from the registry and from every room right away,
// whatever state it was in. Calling it twice is harmless.
// Presence notifications follow asynchronously, routed through each scope's shard.
func (o *Orchestrator) Disconnect(ctx context.Context, id domain.ConnectionID) {
	identity, left, ok := o.registry.Unregister(id)
	if !ok {
		return
	}
	o.log.Info("Participant disconnected", "connection_id", id, "user_id", identity.UserID, "rooms", len(left))

	byScope := lo.GroupBy(left, func(key domain.RoomKey) domain.Scope {
		scope, _, err := domain.ParseRoomKey(key)
		if err != nil {
			o.log.Warn("Unparseable room key", "room", key, "error", err)
		}
		return scope
	})
	for scope, rooms := range byScope {
		if scope.ID == "" {
			continue
		}
		err := o.Submit(ctx, domain.Request{
			ConnectionID: id,
			Identity:     identity,
			Command:      domain.ParticipantLeftCommand{In: scope, Rooms: rooms},
			ReceivedAt:   time.Now().UTC(),
		})
		if err != nil {
			o.log.Warn("Presence notification dropped", "scope", scope, "error", err)
		}
	}
}

// ReportAlert is the entry point for alerts produced outside any connection,
// such as an external detector. The alert is validated then dispatched like any other.
func (o *Orchestrator) ReportAlert(ctx context.Context, cmd domain.ReportAlertCommand) error {
	if err := Validate(cmd); err != nil {
		return err
	}
	return o.Submit(ctx, domain.Request{
		Identity:   SystemIdentity,
		Command:    cmd,
		ReceivedAt: time.Now().UTC(),
	})
}

func (o *Orchestrator) ListAlerts(examID string, severity *domain.Severity) projection.AlertList {
	return o.alerts.List(domain.ExamScope(examID), severity)
}

func (o *Orchestrator) ClassroomStatus(classroomID string) domain.Status {
	return o.dispatcher.Status(classroomID)
}

// Start registers the shard workers, the persistence worker and the capacity monitor
// with the supervisor, then blocks until they are all stopped.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already started")
	}
	o.started = true

	channels := make([]workers.NamedChannel, 0, len(o.shards)+1)
	for i, shard := range o.shards {
		o.supervisor.Add(workers.NewShardWorker(i, shard, o.dispatcher, o.log))
		channels = append(channels, workers.NamedChannel{Name: fmt.Sprintf("shard-%d", i), Channel: shard})
	}
	if o.persistence != nil {
		o.supervisor.Add(o.persistence)
		channels = append(channels, workers.NamedChannel{Name: "persistence", Channel: o.persistence.Queue()})
	}
	if o.config.MetricInterval > 0 {
		o.supervisor.Add(workers.NewChannelCapacityWorker(o.log, channels,
			o.config.MetricInterval, o.config.LowCapacityThreshold))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator", "shards", len(o.shards))
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels every supervised worker; Start returns once they are gone.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
