// Command inspect prints the records persisted by the server as a table.
//
//	inspect -db ./data -room exam:7 -limit 20
//
// Without -room every record is listed in key order.
package main

import (
	"edusmarthub/domain"
	"edusmarthub/infrastructure/storage"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	_ = godotenv.Load()
	dbPath := flag.String("db", os.Getenv("BADGER_FILEPATH"), "Path to badger DB")
	room := flag.String("room", "", "Room key to list, newest first (e.g. exam:7, classroom:3)")
	limit := flag.Int("limit", 50, "Maximum number of records")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("No database path: set -db or BADGER_FILEPATH")
	}

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	var messages []domain.Message
	if *room != "" {
		repository := storage.NewMessageRepository(db, logs.GetLoggerFromString("WARN"))
		messages, err = repository.GetRecentMessages(domain.RoomKey(*room), *limit)
	} else {
		messages, err = scanAll(db, *limit)
	}
	if err != nil {
		log.Fatal(err)
	}
	render(os.Stdout, messages)
}

func scanAll(db *badger.DB, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(storage.MessagePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(messages) < limit; it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				message, err := storage.DecodeRecord(v)
				if err != nil {
					fmt.Printf("Error decoding key %s: %v\n", string(item.Key()), err)
					return nil
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

func render(w io.Writer, messages []domain.Message) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Timestamp", "Room", "Type", "Sender", "Content"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, m := range messages {
		table.Append([]string{
			m.Timestamp.Format("2006-01-02 15:04:05.000"),
			string(m.RoomKey),
			string(m.Type),
			fmt.Sprintf("%s (%s)", m.SenderName, m.SenderID),
			fmt.Sprintf("%v", m.Content),
		})
	}
	table.Render()
}
