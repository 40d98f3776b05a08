package workers

import (
	"context"
	"edusmarthub/contract"
	"edusmarthub/domain"
	"edusmarthub/errors"
	"edusmarthub/infrastructure/storage"
	"log/slog"
	"time"
)

var (
	_ contract.Worker    = (*PersistenceWorker)(nil)
	_ contract.Persister = (*PersistenceWorker)(nil)
)

// PersistenceWorker writes dispatched records to the message repository in the background.
//
// Delivery is best-effort: Persist drops the record when the queue is full, and a failed
// write is logged and forgotten. Dispatch never waits on storage.
type PersistenceWorker struct {
	log          *slog.Logger
	repository   storage.IMessageRepository
	queue        chan domain.Message
	writeTimeout time.Duration
}

func NewPersistenceWorker(log *slog.Logger, repository storage.IMessageRepository,
	bufferSize int, writeTimeout time.Duration) *PersistenceWorker {
	return &PersistenceWorker{
		log:          log,
		repository:   repository,
		queue:        make(chan domain.Message, bufferSize),
		writeTimeout: writeTimeout,
	}
}

func (w *PersistenceWorker) Persist(message domain.Message) bool {
	select {
	case w.queue <- message:
		return true
	default:
		w.log.Warn("Persistence queue full, dropping record",
			"room", message.RoomKey, "type", message.Type, "id", message.ID)
		return false
	}
}

func (w *PersistenceWorker) Queue() chan domain.Message { return w.queue }

func (w *PersistenceWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case message := <-w.queue:
			w.save(ctx, message)
		}
	}
}

// drain flushes what is already queued once the worker is asked to stop.
func (w *PersistenceWorker) drain() {
	for {
		select {
		case message := <-w.queue:
			w.save(context.Background(), message)
		default:
			return
		}
	}
}

func (w *PersistenceWorker) save(ctx context.Context, message domain.Message) {
	ctx, cancel := context.WithTimeout(ctx, w.writeTimeout)
	defer cancel()
	if err := w.repository.SaveMessage(ctx, message); err != nil {
		w.log.Error(errors.ErrPersistence.Error(),
			"room", message.RoomKey, "type", message.Type, "id", message.ID, "error", err)
	}
}
