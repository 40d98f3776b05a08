package workers

import (
	"context"
	"edusmarthub/contract"
	"edusmarthub/domain"
	"log/slog"
)

// Ensure *ShardWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*ShardWorker)(nil)

type Executor interface {
	Execute(ctx context.Context, req domain.Request) error
}

// ShardWorker executes, one at a time, every request routed to its shard.
// All requests of a scope land on the same shard, which serialises the scope's
// room and alert mutations and fixes the order of its broadcasts.
type ShardWorker struct {
	index    int
	requests chan domain.Request
	executor Executor
	log      *slog.Logger
}

func NewShardWorker(index int, requests chan domain.Request, executor Executor, log *slog.Logger) *ShardWorker {
	return &ShardWorker{
		index:    index,
		requests: requests,
		executor: executor,
		log:      log.With("shard", index),
	}
}

func (w *ShardWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case req, ok := <-w.requests:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			if err := w.executor.Execute(ctx, req); err != nil {
				w.log.Debug("Request rejected",
					"type", req.Command.Type(),
					"scope", req.Command.Scope(),
					"connection_id", req.ConnectionID,
					"error", err)
			}
		}
	}
}
