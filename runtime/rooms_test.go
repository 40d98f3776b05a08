package runtime

import (
	"context"
	"edusmarthub/domain"
	"edusmarthub/domain/event"
	"edusmarthub/errors"
	"edusmarthub/mocks"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// recordingSink keeps every event it is handed.
type recordingSink struct {
	mu     sync.Mutex
	events []event.Outbound
}

func (s *recordingSink) Consume(_ context.Context, e event.Outbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) all() []event.Outbound {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Outbound(nil), s.events...)
}

func (s *recordingSink) ofType(t event.Type) []event.Outbound {
	var res []event.Outbound
	for _, e := range s.all() {
		if e.Type == t {
			res = append(res, e)
		}
	}
	return res
}

// requireConsistent checks both membership indexes describe the same relation.
func requireConsistent(t *testing.T, m *RoomManager) {
	t.Helper()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for key, members := range m.rooms {
		require.NotEmpty(t, members, "room %s should have been reaped", key)
		for id := range members {
			_, ok := m.memberships[id][key]
			require.True(t, ok, "%s in %s but not the other way round", id, key)
		}
	}
	for id, joined := range m.memberships {
		require.NotEmpty(t, joined)
		for key := range joined {
			_, ok := m.rooms[key][id]
			require.True(t, ok, "%s lists %s but is not a member", id, key)
		}
	}
}

func TestRoomManager_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	m.Attach("c1", &recordingSink{})
	key := domain.ExamScope("7").Room()

	// When joining twice
	req.True(m.Join(key, "c1"))
	req.True(m.Join(key, "c1"))

	// Then the member set is the same as after one join
	req.Equal([]domain.ConnectionID{"c1"}, m.MembersOf(key))
	req.Equal([]domain.RoomKey{key}, m.RoomsOf("c1"))
	requireConsistent(t, m)
}

func TestRoomManager_Leave_Non_Member_Is_Noop(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	m.Attach("c1", &recordingSink{})
	m.Attach("c2", &recordingSink{})
	m.Join("exam:7", "c1")

	m.Leave("exam:7", "c2")
	m.Leave("exam:8", "c1")

	req.Equal([]domain.ConnectionID{"c1"}, m.MembersOf("exam:7"))
	req.Empty(m.RoomsOf("c2"))
	requireConsistent(t, m)
}

func TestRoomManager_Empty_Rooms_Are_Reaped(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	m.Attach("c1", &recordingSink{})
	m.Join("exam:7", "c1")
	req.Equal(1, m.RoomCount())

	m.Leave("exam:7", "c1")

	req.Zero(m.RoomCount())
	req.Empty(m.MembersOf("exam:7"))
}

func TestRoomManager_Detached_Connection_Cannot_Join(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelDebug))

	// Given a connection never attached, or already gone
	m.Attach("c1", &recordingSink{})
	m.Detach("c1")

	// Then a late join is refused
	req.False(m.Join("exam:7", "c1"))
	req.False(m.Join("exam:7", "ghost"))
	req.Zero(m.RoomCount())
}

func TestRoomManager_Detach_Leaves_Every_Room(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	m.Attach("c1", &recordingSink{})
	m.Attach("c2", &recordingSink{})
	m.Join("exam:7", "c1")
	m.Join("exam:7:proctor", "c1")
	m.Join("classroom:3", "c1")
	m.Join("exam:7", "c2")

	// When c1 disconnects
	left := m.Detach("c1")

	// Then it is a member of zero rooms and its previous rooms no longer contain it
	req.Equal([]domain.RoomKey{"classroom:3", "exam:7", "exam:7:proctor"}, left)
	req.Empty(m.RoomsOf("c1"))
	for _, key := range left {
		req.NotContains(m.MembersOf(key), domain.ConnectionID("c1"))
	}
	req.Equal([]domain.ConnectionID{"c2"}, m.MembersOf("exam:7"))

	// And detaching again is harmless
	req.Empty(m.Detach("c1"))
	requireConsistent(t, m)
}

func TestRoomManager_Random_Operations_Keep_Indexes_Consistent(t *testing.T) {
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelError))
	rng := rand.New(rand.NewPCG(1, 2))
	ids := []domain.ConnectionID{"c1", "c2", "c3", "c4", "c5"}
	keys := []domain.RoomKey{"exam:1", "exam:1:proctor", "exam:10", "classroom:1", "classroom:1:monitor"}

	for i := 0; i < 2000; i++ {
		id := ids[rng.IntN(len(ids))]
		key := keys[rng.IntN(len(keys))]
		switch rng.IntN(5) {
		case 0:
			m.Attach(id, &recordingSink{})
		case 1, 2:
			m.Join(key, id)
		case 3:
			m.Leave(key, id)
		case 4:
			m.Detach(id)
		}
		requireConsistent(t, m)
	}
}

func TestRoomManager_Concurrent_Operations_Keep_Indexes_Consistent(t *testing.T) {
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelError))
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := domain.ConnectionID(fmt.Sprintf("c%d", w))
			for i := 0; i < 200; i++ {
				m.Attach(id, &recordingSink{})
				key := domain.RoomKey(fmt.Sprintf("exam:%d", i%3))
				m.Join(key, id)
				m.Broadcast(context.Background(), key, event.NewError("tick"))
				if i%7 == 0 {
					m.Detach(id)
				} else {
					m.Leave(key, id)
				}
			}
		}(w)
	}
	wg.Wait()
	requireConsistent(t, m)
}

func TestRoomManager_Broadcast_Reaches_Members_Only(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	member, outsider := &recordingSink{}, &recordingSink{}
	m.Attach("c1", member)
	m.Attach("c2", outsider)
	m.Join("exam:7", "c1")
	m.Join("exam:70", "c2")

	delivered := m.Broadcast(context.Background(), "exam:7", event.NewError("hello"))

	req.Equal(1, delivered)
	req.Len(member.all(), 1)
	req.Empty(outsider.all())
}

func TestRoomManager_Broadcast_Skips_Failing_Sink(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelDebug))

	// Given a full sink and a healthy one in the same room
	full := mocks.NewMockEventSink(ctrl)
	full.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(errors.ErrSinkFull).Times(1)
	healthy := &recordingSink{}
	m.Attach("slow", full)
	m.Attach("fast", healthy)
	m.Join("exam:7", "slow")
	m.Join("exam:7", "fast")

	// When broadcasting
	delivered := m.Broadcast(context.Background(), "exam:7", event.NewError("hello"))

	// Then the healthy member still gets it
	req.Equal(1, delivered)
	req.Len(healthy.all(), 1)
}

func TestRoomManager_Broadcast_Except_Skips_Subject(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	subject, other := &recordingSink{}, &recordingSink{}
	m.Attach("c1", subject)
	m.Attach("c2", other)
	m.Join("classroom:3", "c1")
	m.Join("classroom:3", "c2")

	delivered := m.BroadcastExcept(context.Background(), "classroom:3", "c1", event.NewError("hello"))

	req.Equal(1, delivered)
	req.Empty(subject.all())
	req.Len(other.all(), 1)
}

func TestRoomManager_Send_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(logs.GetLoggerFromLevel(slog.LevelDebug))

	err := m.Send(context.Background(), "ghost", event.NewError("hello"))

	req.ErrorIs(err, errors.ErrNotConnected)
}
