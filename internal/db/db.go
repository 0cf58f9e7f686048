package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB holds the chat registry: which chats get scheduled price posts and
// how often. Price snapshots themselves live in the cache tier, not
// here.
type DB struct {
	sql *sql.DB
}

func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", dbPath)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite best practice for embedded use
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(0)

	db := &DB{sql: sqldb}
	if err := db.migrate(context.Background()); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS chats (
			chat_id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			subscribed INTEGER NOT NULL DEFAULT 0,
			interval_minutes INTEGER NOT NULL DEFAULT 30,
			last_post_time INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := d.sql.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

type Chat struct {
	ChatID          int64
	Title           string
	Type            string // private/group/supergroup/channel
	Subscribed      bool
	IntervalMinutes int
	LastPostTime    int64
}

func (d *DB) UpsertChat(ctx context.Context, chatID int64, title, typ string) error {
	now := time.Now().Unix()
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO chats(chat_id,title,type,subscribed,created_at,updated_at)
		 VALUES(?,?,?,0,?,?)
		 ON CONFLICT(chat_id) DO UPDATE SET title=excluded.title, type=excluded.type, updated_at=excluded.updated_at`,
		chatID, title, typ, now, now)
	return err
}

func (d *DB) GetChat(ctx context.Context, chatID int64) (Chat, error) {
	var c Chat
	var sub int
	var last sql.NullInt64
	err := d.sql.QueryRowContext(ctx,
		`SELECT chat_id,title,type,subscribed,interval_minutes,last_post_time FROM chats WHERE chat_id=?`,
		chatID).Scan(&c.ChatID, &c.Title, &c.Type, &sub, &c.IntervalMinutes, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return Chat{}, err
	}
	if err != nil {
		return Chat{}, err
	}
	c.Subscribed = sub == 1
	c.LastPostTime = last.Int64
	return c, nil
}

// Subscribe turns on scheduled posts for a chat. interval <= 0 keeps the
// stored value.
func (d *DB) Subscribe(ctx context.Context, chatID int64, intervalMinutes int) error {
	now := time.Now().Unix()
	if intervalMinutes > 0 {
		_, err := d.sql.ExecContext(ctx,
			`UPDATE chats SET subscribed=1, interval_minutes=?, updated_at=? WHERE chat_id=?`,
			intervalMinutes, now, chatID)
		return err
	}
	_, err := d.sql.ExecContext(ctx,
		`UPDATE chats SET subscribed=1, updated_at=? WHERE chat_id=?`, now, chatID)
	return err
}

func (d *DB) Unsubscribe(ctx context.Context, chatID int64) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE chats SET subscribed=0, updated_at=? WHERE chat_id=?`, time.Now().Unix(), chatID)
	return err
}

// ListSubscribed returns every chat with scheduled posts enabled.
func (d *DB) ListSubscribed(ctx context.Context) ([]Chat, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT chat_id,title,type,subscribed,interval_minutes,last_post_time FROM chats WHERE subscribed=1 ORDER BY chat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Chat
	for rows.Next() {
		var c Chat
		var sub int
		var last sql.NullInt64
		if err := rows.Scan(&c.ChatID, &c.Title, &c.Type, &sub, &c.IntervalMinutes, &last); err != nil {
			return nil, err
		}
		c.Subscribed = sub == 1
		c.LastPostTime = last.Int64
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) SetLastPostTime(ctx context.Context, chatID int64, ts int64) error {
	_, err := d.sql.ExecContext(ctx, `UPDATE chats SET last_post_time=? WHERE chat_id=?`, ts, chatID)
	return err
}
