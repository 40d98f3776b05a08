//go:generate go run go.uber.org/mock/mockgen -source=message_repository.go -destination=../../mocks/mock_message_repository.go -package=mocks
package storage

import (
	"context"
	"edusmarthub/domain"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// MessagePrefix starts every persisted record key.
const MessagePrefix = "msg|"

type IMessageRepository interface {
	SaveMessage(ctx context.Context, message domain.Message) error
	GetRecentMessages(room domain.RoomKey, limit int) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

func roomPrefix(room domain.RoomKey) string {
	return fmt.Sprintf("%s%s|", MessagePrefix, room)
}

// SaveMessage appends a record to the room's log.
// The key is formatted as "msg|{room}|{timestamp_padded}|{uuid}":
//   - the 19-digit zero padding keeps lexicographical order chronological,
//   - the uuid separates two records written in the same nanosecond,
//   - "|" cannot appear in a room key, so exam:1 never scans into exam:1:proctor.
func (m MessageRepository) SaveMessage(ctx context.Context, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	key := fmt.Sprintf("%s%019d|%s", roomPrefix(message.RoomKey), message.Timestamp.UnixNano(), message.ID)
	bytes, err := encodeMessage(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetRecentMessages returns at most limit records of the room, newest first.
func (m MessageRepository) GetRecentMessages(room domain.RoomKey, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(roomPrefix(room))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// '~' sorts after every digit: reverse seek lands on the newest key of the room.
		seekKey := append(append([]byte{}, prefix...), '~')
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(raw) == limit {
				break
			}
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			raw = append(raw, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		message, err := decodeMessage(b)
		if err != nil {
			m.log.Warn("Skipping unreadable record", "room", room, "error", err)
			continue
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func encodeMessage(message domain.Message) ([]byte, error) {
	content, err := structpb.NewStruct(message.Content)
	if err != nil {
		return nil, fmt.Errorf("content of %s is not serialisable: %w", message.ID, err)
	}
	record := &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":         structpb.NewStringValue(message.ID.String()),
		"roomKey":    structpb.NewStringValue(string(message.RoomKey)),
		"senderId":   structpb.NewStringValue(message.SenderID),
		"senderName": structpb.NewStringValue(message.SenderName),
		"type":       structpb.NewStringValue(string(message.Type)),
		"content":    structpb.NewStructValue(content),
		"timestamp":  structpb.NewStringValue(message.Timestamp.UTC().Format(time.RFC3339Nano)),
	}}
	return proto.Marshal(record)
}

func decodeMessage(b []byte) (domain.Message, error) {
	var record structpb.Struct
	if err := proto.Unmarshal(b, &record); err != nil {
		return domain.Message{}, err
	}
	fields := record.GetFields()
	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return domain.Message{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, fields["timestamp"].GetStringValue())
	if err != nil {
		return domain.Message{}, err
	}
	content := fields["content"].GetStructValue().AsMap()
	return domain.Message{
		ID:         id,
		RoomKey:    domain.RoomKey(fields["roomKey"].GetStringValue()),
		SenderID:   fields["senderId"].GetStringValue(),
		SenderName: fields["senderName"].GetStringValue(),
		Type:       domain.MessageType(fields["type"].GetStringValue()),
		Content:    content,
		Timestamp:  at,
	}, nil
}

// DecodeRecord exposes the on-disk format to the inspection tool.
func DecodeRecord(b []byte) (domain.Message, error) {
	return decodeMessage(b)
}
