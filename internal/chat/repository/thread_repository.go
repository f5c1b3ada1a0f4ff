package repository

import (
	"context"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	chatdomain "github.com/mzotova/threadline/internal/chat/domain"
	"github.com/mzotova/threadline/internal/common/db"
)

type ThreadRepository interface {
	CreateThread(ctx context.Context, userID, title string, createdAt time.Time) (chatdomain.Thread, error)
	FindThread(ctx context.Context, userID string, threadID int64) (chatdomain.Thread, error)
	ListThreads(ctx context.Context, userID string) ([]chatdomain.Thread, error)
	AppendMessage(ctx context.Context, threadID int64, role chatdomain.Role, content string, createdAt time.Time) (chatdomain.Message, error)
	ListMessages(ctx context.Context, threadID int64) ([]chatdomain.Message, error)
}

type PgThreadRepository struct {
	pool *pgxpool.Pool
}

func NewPgThreadRepository(pool *pgxpool.Pool) *PgThreadRepository {
	return &PgThreadRepository{pool: pool}
}

func (r *PgThreadRepository) CreateThread(ctx context.Context, userID, title string, createdAt time.Time) (chatdomain.Thread, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO threads (user_id, title, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		userID,
		title,
		createdAt,
	)

	thread := chatdomain.Thread{UserID: userID, Title: title, CreatedAt: createdAt}
	err := row.Scan(&thread.ID)
	if err := db.HandleQueryError(err, nil, "create thread", start); err != nil {
		return chatdomain.Thread{}, err
	}
	return thread, nil
}

// FindThread scopes the lookup to the owner so a foreign thread id behaves
// like a missing one.
func (r *PgThreadRepository) FindThread(ctx context.Context, userID string, threadID int64) (chatdomain.Thread, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, user_id, title, created_at
		 FROM threads
		 WHERE id = $1 AND user_id = $2`,
		threadID,
		userID,
	)

	var thread chatdomain.Thread
	err := row.Scan(&thread.ID, &thread.UserID, &thread.Title, &thread.CreatedAt)
	if err := db.HandleQueryError(err, ErrThreadNotFound, "find thread", start); err != nil {
		return chatdomain.Thread{}, err
	}
	return thread, nil
}

func (r *PgThreadRepository) ListThreads(ctx context.Context, userID string) ([]chatdomain.Thread, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, user_id, title, created_at
		 FROM threads
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list threads", start)
	}
	defer rows.Close()

	var threads []chatdomain.Thread
	for rows.Next() {
		var t chatdomain.Thread
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.CreatedAt); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan thread", start)
		}
		threads = append(threads, t)
	}

	if rows.Err() != nil {
		return nil, db.HandleQueryError(rows.Err(), nil, "list threads", start)
	}

	db.MeasureQueryDuration("list threads", start)
	return threads, nil
}

func (r *PgThreadRepository) AppendMessage(ctx context.Context, threadID int64, role chatdomain.Role, content string, createdAt time.Time) (chatdomain.Message, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO messages (thread_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		threadID,
		string(role),
		content,
		createdAt,
	)

	msg := chatdomain.Message{ThreadID: threadID, Role: role, Content: content, CreatedAt: createdAt}
	err := row.Scan(&msg.ID)
	if err := db.HandleQueryError(err, nil, "append message", start); err != nil {
		return chatdomain.Message{}, err
	}
	return msg, nil
}

func (r *PgThreadRepository) ListMessages(ctx context.Context, threadID int64) ([]chatdomain.Message, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, thread_id, role, content, created_at
		 FROM messages
		 WHERE thread_id = $1
		 ORDER BY created_at ASC, id ASC`,
		threadID,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list messages", start)
	}
	defer rows.Close()

	var messages []chatdomain.Message
	for rows.Next() {
		var m chatdomain.Message
		var role string
		if err := rows.Scan(&m.ID, &m.ThreadID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan message", start)
		}
		m.Role = chatdomain.Role(role)
		messages = append(messages, m)
	}

	if rows.Err() != nil {
		return nil, db.HandleQueryError(rows.Err(), nil, "list messages", start)
	}

	db.MeasureQueryDuration("list messages", start)
	return messages, nil
}

var ErrThreadNotFound = pgx.ErrNoRows
