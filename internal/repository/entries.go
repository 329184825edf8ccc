package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beanvault/coffee-journal/internal/common"
	"github.com/beanvault/coffee-journal/internal/scan"
)

// Entry is one journal row: the merged label fields plus the user's rating
// and notes. Label fields follow the scan invariant (absent or non-empty).
type Entry struct {
	ID        uuid.UUID         `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Fields    scan.LabelFields  `json:"fields"`
	Rating    int               `json:"rating,omitempty"` // 1..5, 0 = unrated
	Notes     string            `json:"notes,omitempty"`
}

// EntryFilter narrows List results. Zero values mean "no constraint".
type EntryFilter struct {
	Roaster   string
	Origin    string
	MinRating int
}

// EntryRepository is the journal persistence boundary.
type EntryRepository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	List(ctx context.Context, filter EntryFilter) ([]*Entry, error)
	Update(ctx context.Context, e *Entry) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type entryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewEntryRepository(db *sql.DB, logger *slog.Logger) EntryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &entryRepository{db: db, logger: logger}
}

// EnsureSchema creates the entries table if missing. Types are portable
// across SQLite and Postgres; timestamps are stored as RFC3339 text.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS entries (
	id               TEXT PRIMARY KEY,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL,
	roaster_name     TEXT NOT NULL DEFAULT '',
	roaster_website  TEXT NOT NULL DEFAULT '',
	roaster_location TEXT NOT NULL DEFAULT '',
	roaster_address  TEXT NOT NULL DEFAULT '',
	farm             TEXT NOT NULL DEFAULT '',
	origin           TEXT NOT NULL DEFAULT '',
	variety          TEXT NOT NULL DEFAULT '',
	process_method   TEXT NOT NULL DEFAULT '',
	roast_level      TEXT NOT NULL DEFAULT '',
	roast_date       TEXT NOT NULL DEFAULT '',
	flavor_notes     TEXT NOT NULL DEFAULT '',
	rating           INTEGER NOT NULL DEFAULT 0,
	notes            TEXT NOT NULL DEFAULT ''
)`
	_, err := db.ExecContext(ctx, ddl)
	return common.WrapError(err, "ensure entries schema")
}

const entryColumns = `id, created_at, updated_at,
	roaster_name, roaster_website, roaster_location, roaster_address,
	farm, origin, variety, process_method, roast_level, roast_date,
	flavor_notes, rating, notes`

func (r *entryRepository) Create(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `INSERT INTO entries (`+entryColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		e.ID.String(),
		e.CreatedAt.Format(time.RFC3339Nano),
		e.UpdatedAt.Format(time.RFC3339Nano),
		e.Fields.RoasterName, e.Fields.RoasterWebsite, e.Fields.RoasterLocation,
		e.Fields.RoasterAddress, e.Fields.Farm, e.Fields.Origin,
		e.Fields.Variety, e.Fields.ProcessMethod, e.Fields.RoastLevel,
		e.Fields.RoastDate, e.Fields.FlavorNotes, e.Rating, e.Notes,
	)
	if err != nil {
		return common.WrapError(err, "insert entry")
	}
	r.logger.Info("entry.created", "entry_id", e.ID, "roaster", e.Fields.RoasterName)
	return nil
}

func (r *entryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = $1`, id.String())
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return e, err
}

func (r *entryRepository) List(ctx context.Context, filter EntryFilter) ([]*Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM entries`
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Roaster != "" {
		conds = append(conds, "LOWER(roaster_name) LIKE "+arg("%"+strings.ToLower(filter.Roaster)+"%"))
	}
	if filter.Origin != "" {
		conds = append(conds, "LOWER(origin) LIKE "+arg("%"+strings.ToLower(filter.Origin)+"%"))
	}
	if filter.MinRating > 0 {
		conds = append(conds, "rating >= "+arg(filter.MinRating))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, common.WrapError(err, "list entries")
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *entryRepository) Update(ctx context.Context, e *Entry) error {
	e.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE entries SET
		updated_at = $1,
		roaster_name = $2, roaster_website = $3, roaster_location = $4,
		roaster_address = $5, farm = $6, origin = $7, variety = $8,
		process_method = $9, roast_level = $10, roast_date = $11,
		flavor_notes = $12, rating = $13, notes = $14
		WHERE id = $15`,
		e.UpdatedAt.Format(time.RFC3339Nano),
		e.Fields.RoasterName, e.Fields.RoasterWebsite, e.Fields.RoasterLocation,
		e.Fields.RoasterAddress, e.Fields.Farm, e.Fields.Origin,
		e.Fields.Variety, e.Fields.ProcessMethod, e.Fields.RoastLevel,
		e.Fields.RoastDate, e.Fields.FlavorNotes, e.Rating, e.Notes,
		e.ID.String(),
	)
	if err != nil {
		return common.WrapError(err, "update entry")
	}
	return requireRow(res)
}

func (r *entryRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating int) error {
	if rating < 0 || rating > 5 {
		return common.NewAppError("RATING_RANGE", "rating must be 0..5", common.ErrInvalidInput)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE entries SET rating = $1, updated_at = $2 WHERE id = $3`,
		rating, time.Now().UTC().Format(time.RFC3339Nano), id.String())
	if err != nil {
		return common.WrapError(err, "update rating")
	}
	return requireRow(res)
}

func (r *entryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id.String())
	if err != nil {
		return common.WrapError(err, "delete entry")
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		e                    Entry
		id, created, updated string
	)
	err := row.Scan(&id, &created, &updated,
		&e.Fields.RoasterName, &e.Fields.RoasterWebsite, &e.Fields.RoasterLocation,
		&e.Fields.RoasterAddress, &e.Fields.Farm, &e.Fields.Origin,
		&e.Fields.Variety, &e.Fields.ProcessMethod, &e.Fields.RoastLevel,
		&e.Fields.RoastDate, &e.Fields.FlavorNotes, &e.Rating, &e.Notes,
	)
	if err != nil {
		return nil, err
	}
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, common.WrapError(err, "parse entry id")
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, common.WrapError(err, "parse created_at")
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, common.WrapError(err, "parse updated_at")
	}
	return &e, nil
}
