package repository

import (
	"context"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	authdomain "github.com/mzotova/threadline/internal/auth/domain"
	"github.com/mzotova/threadline/internal/common/db"
)

type SessionRepository interface {
	Create(ctx context.Context, session authdomain.Session) error
	FindByTokenHash(ctx context.Context, hash string) (authdomain.Session, error)
	DeleteByTokenHash(ctx context.Context, hash string) error
	CountByUserID(ctx context.Context, userID string) (int, error)
	DeleteOldestByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, session authdomain.Session) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO sessions (id, token_hash, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.ID,
		session.TokenHash,
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
	)
	return db.HandleExecError(err, "create session", start)
}

func (r *PgSessionRepository) FindByTokenHash(ctx context.Context, hash string) (authdomain.Session, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, token_hash, user_id, expires_at, created_at
		 FROM sessions
		 WHERE token_hash = $1`,
		hash,
	)

	var session authdomain.Session
	err := row.Scan(&session.ID, &session.TokenHash, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if err := db.HandleQueryError(err, ErrSessionNotFound, "find session", start); err != nil {
		return authdomain.Session{}, err
	}
	return session, nil
}

func (r *PgSessionRepository) DeleteByTokenHash(ctx context.Context, hash string) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`DELETE FROM sessions WHERE token_hash = $1`,
		hash,
	)
	return db.HandleExecError(err, "delete session", start)
}

func (r *PgSessionRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = $1`,
		userID,
	)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, db.HandleQueryError(err, nil, "count sessions", start)
	}
	db.MeasureQueryDuration("count sessions", start)
	return count, nil
}

func (r *PgSessionRepository) DeleteOldestByUserID(ctx context.Context, userID string) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`DELETE FROM sessions
		 WHERE id = (
		 	SELECT id
		 	FROM sessions
		 	WHERE user_id = $1
		 	ORDER BY created_at ASC
		 	LIMIT 1
		 )`,
		userID,
	)
	return db.HandleExecError(err, "delete oldest session", start)
}

func (r *PgSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`DELETE FROM sessions WHERE expires_at < NOW()`,
	)
	if err != nil {
		return 0, db.HandleExecError(err, "delete expired sessions", start)
	}
	db.MeasureQueryDuration("delete expired sessions", start)
	return res.RowsAffected(), nil
}

var ErrSessionNotFound = pgx.ErrNoRows
