package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

// SQL stores items in a relational database (SQLite or PostgreSQL).
type SQL struct {
	db      *sqlx.DB
	dialect db.Dialect
}

// NewSQL wraps an open, migrated database.
func NewSQL(database *sql.DB, dialect db.Dialect) *SQL {
	return &SQL{
		db:      sqlx.NewDb(database, string(dialect)),
		dialect: dialect,
	}
}

// itemRow mirrors the items table. created_at and returned are scanned
// loosely because their stored types differ between engines and schema
// versions.
type itemRow struct {
	ID            int64  `db:"id"`
	ItemName      string `db:"item_name"`
	Description   string `db:"description"`
	Location      string `db:"location"`
	Name          string `db:"name"`
	Email         string `db:"email"`
	StudentNumber string `db:"student_number"`
	Type          string `db:"type"`
	Image         string `db:"image"`
	CreatedAt     any    `db:"created_at"`
	Returned      any    `db:"returned"`
}

const selectItems = `SELECT id,
	COALESCE(item_name, '') AS item_name,
	COALESCE(description, '') AS description,
	COALESCE(location, '') AS location,
	COALESCE(name, '') AS name,
	COALESCE(email, '') AS email,
	COALESCE(student_number, '') AS student_number,
	COALESCE(type, '') AS type,
	COALESCE(image, '') AS image,
	created_at, returned
	FROM items`

func (r itemRow) item(now time.Time) model.Item {
	return model.Item{
		ID:            r.ID,
		ItemName:      r.ItemName,
		Description:   r.Description,
		Location:      r.Location,
		Name:          r.Name,
		Email:         r.Email,
		StudentNumber: r.StudentNumber,
		Type:          normalizeType(r.Type),
		Image:         r.Image,
		CreatedAt:     parseTimestamp(r.CreatedAt, now),
		Returned:      parseBool(r.Returned),
	}
}

// Name implements Backend.
func (s *SQL) Name() string {
	if s.dialect == db.Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Ping implements Backend.
func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create implements Backend.
func (s *SQL) Create(ctx context.Context, item *model.Item) error {
	query := s.db.Rebind(`INSERT INTO items
		(item_name, description, location, name, email, student_number, type, image, created_at, returned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := s.db.QueryRowxContext(ctx, query,
		item.ItemName, item.Description, item.Location, item.Name, item.Email,
		item.StudentNumber, item.Type, item.Image,
		s.timeValue(item.CreatedAt), s.boolValue(item.Returned),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}

	item.ID = id
	return nil
}

// List implements Backend.
func (s *SQL) List(ctx context.Context) ([]model.Item, error) {
	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows, selectItems+` ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	now := time.Now()
	items := make([]model.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.item(now))
	}
	return items, nil
}

// Get implements Backend.
func (s *SQL) Get(ctx context.Context, id int64) (*model.Item, error) {
	var r itemRow
	err := s.db.GetContext(ctx, &r, s.db.Rebind(selectItems+` WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item := r.item(time.Now())
	return &item, nil
}

// Update implements Backend.
func (s *SQL) Update(ctx context.Context, id int64, f model.ItemFields) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE items SET
		item_name = ?, description = ?, location = ?, name = ?, email = ?,
		student_number = ?, type = ?
		WHERE id = ?`),
		f.ItemName, f.Description, f.Location, f.Name, f.Email, f.StudentNumber, f.Type, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return requireAffected(result)
}

// MarkReturned implements Backend.
func (s *SQL) MarkReturned(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE items SET returned = ? WHERE id = ?`),
		s.boolValue(true), id,
	)
	if err != nil {
		return fmt.Errorf("marking item returned: %w", err)
	}
	return requireAffected(result)
}

// Delete implements Backend.
func (s *SQL) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return requireAffected(result)
}

// requireAffected maps zero affected rows to ErrNotFound.
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// timeValue returns t in the column's native representation. SQLite keeps
// created_at as RFC 3339 text.
func (s *SQL) timeValue(t time.Time) any {
	if s.dialect == db.SQLite {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC()
}

// boolValue returns b in the column's native representation. SQLite stores
// flags as 0/1.
func (s *SQL) boolValue(b bool) any {
	if s.dialect == db.SQLite {
		if b {
			return 1
		}
		return 0
	}
	return b
}
