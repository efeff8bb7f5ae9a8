package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"branikbot/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS replies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  commentId TEXT NOT NULL UNIQUE,
  postId TEXT NOT NULL,
  author TEXT,
  mentionsJson TEXT NOT NULL,
  message TEXT NOT NULL,
  status TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_replies_postId ON replies(postId);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// UpsertReply records a reply for a comment. A second call for the same
// comment overwrites the status and message.
func (d *DB) UpsertReply(r internal.ReplyRecord) error {
	mentionsJSON, _ := json.Marshal(r.Mentions)
	_, err := d.conn.Exec(`
INSERT INTO replies (commentId, postId, author, mentionsJson, message, status)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(commentId) DO UPDATE SET
  mentionsJson=excluded.mentionsJson,
  message=excluded.message,
  status=excluded.status
`, r.CommentID, r.PostID, r.Author, string(mentionsJSON), r.Message, string(r.Status))
	return err
}

// CountRepliesForPost counts replies on a post, failed deliveries excluded.
func (d *DB) CountRepliesForPost(postID string) (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM replies WHERE postId = ? AND status != ?`, postID, string(internal.ReplyFailed)).Scan(&n)
	return n, err
}

func (d *DB) GetReplyByCommentID(commentID string) (*internal.ReplyRecord, error) {
	row := d.conn.QueryRow(`
SELECT id, commentId, postId, author, mentionsJson, message, status, createdAt
FROM replies WHERE commentId = ?
`, commentID)
	r, err := scanReply(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReplies returns the newest limit replies, oldest first. A limit of 0
// or less returns the whole log.
func (d *DB) ListReplies(limit int) ([]internal.ReplyRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.conn.Query(`
SELECT id, commentId, postId, author, mentionsJson, message, status, createdAt
FROM (SELECT * FROM replies ORDER BY id DESC LIMIT ?)
ORDER BY id ASC
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReplyRecord
	for rows.Next() {
		r, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReply(s scanner) (internal.ReplyRecord, error) {
	var r internal.ReplyRecord
	var author sql.NullString
	var mentionsJSON, status string
	if err := s.Scan(&r.ID, &r.CommentID, &r.PostID, &author, &mentionsJSON, &r.Message, &status, &r.CreatedAt); err != nil {
		return internal.ReplyRecord{}, err
	}
	r.Author = author.String
	r.Status = internal.ReplyStatus(status)
	_ = json.Unmarshal([]byte(mentionsJSON), &r.Mentions)
	return r, nil
}

func (d *DB) InsertRun(traceID string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, timingsJson, countsJson) VALUES (?, ?, ?)`, traceID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`SELECT id, traceId, timingsJson, countsJson, createdAt FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var timingsJSON, countsJSON string
		if err := rows.Scan(&row.ID, &row.TraceID, &timingsJSON, &countsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(timingsJSON), &row.Timings)
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
