// internal/database/message.go
package database

import (
	"context"
	"time"
)

// Message is one chat history record. The timestamp is assigned server-side
// at insert.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// InsertMessage appends one chat message to the history store.
func InsertMessage(ctx context.Context, sender, text string) error {
	q := `
	INSERT INTO messages (sender, text, created_at)
	VALUES ($1, $2, now())
	`
	_, err := DB.Exec(ctx, q, sender, text)
	return err
}

// RecentMessages returns the most recent n messages in ascending chronological
// order. The descending fetch is re-sorted in SQL so clients can append in
// arrival order.
func RecentMessages(ctx context.Context, n int) ([]Message, error) {
	q := `
	SELECT id, sender, text, created_at FROM (
		SELECT id, sender, text, created_at
		FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	) recent
	ORDER BY created_at ASC, id ASC
	`
	rows, err := DB.Query(ctx, q, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Text, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
