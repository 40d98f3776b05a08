package workers

import (
	"context"
	"edusmarthub/domain"
	"edusmarthub/errors"
	"edusmarthub/mocks"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func message(room domain.RoomKey) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		RoomKey:   room,
		SenderID:  "s1",
		Type:      domain.MessageStudentActivity,
		Timestamp: time.Now().UTC(),
	}
}

func TestPersistenceWorker_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	worker := NewPersistenceWorker(logs.GetLoggerFromLevel(slog.LevelDebug), repository, 2, time.Second)

	// Given a queue of two that nobody drains
	req.True(worker.Persist(message("classroom:3")))
	req.True(worker.Persist(message("classroom:3")))

	// When a third record arrives
	accepted := worker.Persist(message("classroom:3"))

	// Then it is dropped without blocking
	req.False(accepted)
	req.Len(worker.Queue(), 2)
}

func TestPersistenceWorker_Saves_And_Drains_On_Stop(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	worker := NewPersistenceWorker(logs.GetLoggerFromLevel(slog.LevelDebug), repository, 8, time.Second)

	var saved atomic.Int32
	repository.EXPECT().
		SaveMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, m domain.Message) error {
			_, hasDeadline := ctx.Deadline()
			req.True(hasDeadline)
			saved.Add(1)
			return nil
		}).
		Times(3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	req.True(worker.Persist(message("exam:7")))
	req.Eventually(func() bool { return saved.Load() == 1 }, time.Second, 5*time.Millisecond)

	// When stopping with records still queued
	cancel()
	req.NoError(<-done)
	req.True(worker.Persist(message("exam:7")))
	req.True(worker.Persist(message("exam:7")))
	worker.drain()

	// Then every queued record is written
	req.Equal(int32(3), saved.Load())
	req.Empty(worker.Queue())
}

func TestPersistenceWorker_Keeps_Going_After_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	worker := NewPersistenceWorker(logs.GetLoggerFromLevel(slog.LevelDebug), repository, 8, time.Second)

	var calls atomic.Int32
	gomock.InOrder(
		repository.EXPECT().SaveMessage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, domain.Message) error {
				calls.Add(1)
				return errors.ErrPersistence
			}),
		repository.EXPECT().SaveMessage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, domain.Message) error {
				calls.Add(1)
				return nil
			}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	req.True(worker.Persist(message("exam:7")))
	req.True(worker.Persist(message("exam:7")))

	req.Eventually(func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}
