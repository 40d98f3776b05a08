package storage

import (
	"context"
	"edusmarthub/domain"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Save_And_Get_Recent_Messages_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	room := domain.ClassroomScope("3").Room()
	at := time.Now().UTC()

	// Given three activities recorded one minute apart
	for i, name := range []string{"Alice", "Bob", "Clara"} {
		err := repository.SaveMessage(context.Background(), domain.Message{
			ID:         uuid.New(),
			RoomKey:    room,
			SenderID:   name,
			SenderName: name,
			Type:       domain.MessageStudentActivity,
			Content:    map[string]any{"kind": "answer", "question": float64(i)},
			Timestamp:  at.Add(time.Duration(i) * time.Minute),
		})
		req.NoError(err)
	}

	// When fetching the recent messages
	messages, err := repository.GetRecentMessages(room, 10)

	// Then they come back newest first with their content intact
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal("Clara", messages[0].SenderID)
	req.Equal("Alice", messages[2].SenderID)
	req.Equal(domain.MessageStudentActivity, messages[0].Type)
	req.Equal(map[string]any{"kind": "answer", "question": float64(2)}, messages[0].Content)
	req.True(at.Add(2 * time.Minute).Equal(messages[0].Timestamp))
}

func Test_Get_Recent_Messages_Respects_Limit(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	room := domain.ClassroomScope("42").Room()
	now := time.Now().UTC()

	for i := 1; i <= 10; i++ {
		req.NoError(repository.SaveMessage(context.Background(), domain.Message{
			RoomKey:   room,
			SenderID:  fmt.Sprintf("user_%d", i),
			Type:      domain.MessageTeacherAction,
			Timestamp: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	messages, err := repository.GetRecentMessages(room, 4)
	req.NoError(err)
	req.Len(messages, 4)
	req.Equal("user_10", messages[0].SenderID)
	req.Equal("user_7", messages[3].SenderID)

	none, err := repository.GetRecentMessages(room, 0)
	req.NoError(err)
	req.Empty(none)
}

func Test_Rooms_Sharing_A_Prefix_Are_Isolated(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	exam := domain.ExamScope("1")
	now := time.Now().UTC()

	// Given records in exam:1, exam:1:proctor and exam:10
	rooms := []domain.RoomKey{exam.Room(), exam.PrivilegedRoom(), domain.ExamScope("10").Room()}
	for _, room := range rooms {
		req.NoError(repository.SaveMessage(context.Background(), domain.Message{
			RoomKey:   room,
			SenderID:  string(room),
			Type:      domain.MessageAlert,
			Timestamp: now,
		}))
	}

	// Then each room only sees its own record
	for _, room := range rooms {
		messages, err := repository.GetRecentMessages(room, 10)
		req.NoError(err)
		req.Len(messages, 1)
		req.Equal(string(room), messages[0].SenderID)
		req.Equal(room, messages[0].RoomKey)
	}
}

func Test_Save_Message_Rejects_Unserialisable_Content(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	err := repository.SaveMessage(context.Background(), domain.Message{
		RoomKey:   domain.ExamScope("1").Room(),
		Content:   map[string]any{"at": time.Now()},
		Timestamp: time.Now(),
	})
	req.Error(err)
}

func Test_Save_Message_Honours_Cancelled_Context(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repository.SaveMessage(ctx, domain.Message{RoomKey: "exam:1", Timestamp: time.Now()})
	req.ErrorIs(err, context.Canceled)
}
