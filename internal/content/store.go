package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by the store; *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Store persists content records in PostgreSQL.
type Store struct {
	db     DBTX
	logger *slog.Logger
}

// NewStore creates a Store over db.
func NewStore(log *slog.Logger, db DBTX) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		db:     db,
		logger: log.With(slog.String("service", "content")),
	}
}

const recordColumns = `id, upstream_url, file_id, file_unique_id, file_name, total_length, mime_type,
	owner_id, chat_id, storage_chat_id, storage_message_id, created_at`

func scanRecord(row pgx.Row) (Record, error) {
	var (
		r  Record
		id uuid.UUID
	)
	err := row.Scan(
		&id, &r.UpstreamURL, &r.FileID, &r.FileUniqueID, &r.FileName, &r.TotalLength, &r.MimeType,
		&r.OwnerID, &r.ChatID, &r.StorageChatID, &r.StorageMessageID, &r.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	r.ID = id.String()
	return r, nil
}

// Create inserts rec, generating an id when it has none.
func (s *Store) Create(ctx context.Context, rec Record) (Record, error) {
	if rec.TotalLength < 0 {
		return Record{}, fmt.Errorf("total length must not be negative")
	}
	if strings.TrimSpace(rec.UpstreamURL) == "" && strings.TrimSpace(rec.FileID) == "" {
		return Record{}, fmt.Errorf("upstream url or file id is required")
	}
	id := uuid.New()
	if strings.TrimSpace(rec.ID) != "" {
		parsed, err := uuid.Parse(rec.ID)
		if err != nil {
			return Record{}, fmt.Errorf("invalid content id: %w", err)
		}
		id = parsed
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO contents (id, upstream_url, file_id, file_unique_id, file_name, total_length, mime_type,
			owner_id, chat_id, storage_chat_id, storage_message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+recordColumns,
		id, rec.UpstreamURL, rec.FileID, rec.FileUniqueID, rec.FileName, rec.TotalLength, rec.MimeType,
		rec.OwnerID, rec.ChatID, rec.StorageChatID, rec.StorageMessageID,
	)
	created, err := scanRecord(row)
	if err != nil {
		return Record{}, s.wrap("create content", err)
	}
	return created, nil
}

// Get loads a record. Unknown or malformed ids yield ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return Record{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM contents WHERE id = $1`, parsed)
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, s.wrap("get content", err)
	}
	return rec, nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM contents WHERE id = $1`, parsed)
	if err != nil {
		return s.wrap("delete content", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Info("content deleted", slog.String("content_id", parsed.String()))
	return nil
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+recordColumns+` FROM contents ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, s.wrap("list contents", err)
	}
	defer rows.Close()
	items := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, s.wrap("scan content", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list contents", err)
	}
	return items, nil
}

// Stats counts records overall and for ownerID.
func (s *Store) Stats(ctx context.Context, ownerID int64) (Stats, error) {
	var stats Stats
	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE owner_id = $1),
			COUNT(*),
			COALESCE(SUM(total_length), 0)::bigint
		FROM contents`, ownerID,
	).Scan(&stats.OwnerCount, &stats.TotalCount, &stats.TotalBytes)
	if err != nil {
		return Stats{}, s.wrap("content stats", err)
	}
	return stats, nil
}

// Ping checks database reachability.
func (s *Store) Ping(ctx context.Context) error {
	p, ok := s.db.(pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) wrap(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if isConnectivityError(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
