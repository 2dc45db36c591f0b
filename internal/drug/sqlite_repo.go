package drug

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// sqliteTimeLayout is fixed width so text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS drugs (
    id          TEXT PRIMARY KEY,
    code        TEXT NOT NULL,
    company     TEXT NOT NULL DEFAULT '',
    launch_date TEXT NOT NULL,
    attributes  TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_drugs_code ON drugs (code);
CREATE INDEX IF NOT EXISTS idx_drugs_company_launch_date ON drugs (company, launch_date DESC);
`

type sqliteRow struct {
	ID         string `db:"id"`
	Code       string `db:"code"`
	Company    string `db:"company"`
	LaunchDate string `db:"launch_date"`
	Attributes string `db:"attributes"`
}

func (row sqliteRow) toDrug() (Drug, error) {
	launch, err := time.Parse(sqliteTimeLayout, row.LaunchDate)
	if err != nil {
		return Drug{}, fmt.Errorf("drug %s: parse launch_date: %w", row.ID, err)
	}
	d := Drug{ID: row.ID, Code: row.Code, Company: row.Company, LaunchDate: launch.UTC()}
	if err := d.SetAttributesJSON([]byte(row.Attributes)); err != nil {
		return Drug{}, err
	}
	return d, nil
}

// SQLiteRepo stores drugs in a SQLite database. It backs local runs and tests.
type SQLiteRepo struct {
	db *sqlx.DB
}

// NewSQLiteRepo creates a repository. Call EnsureSchema before first use.
func NewSQLiteRepo(db *sqlx.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

// EnsureSchema creates the drugs table and its indexes if they are missing.
func (r *SQLiteRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create sqlite schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) List(ctx context.Context, q Query) ([]Drug, error) {
	sqlText := "SELECT id, code, company, launch_date, attributes FROM drugs"
	args := []any{}
	if q.Company != "" {
		sqlText += " WHERE company = ?"
		args = append(args, q.Company)
	}
	sqlText += " " + orderBy
	if q.Limit > 0 {
		sqlText += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	var rows []sqliteRow
	if err := r.db.SelectContext(ctx, &rows, sqlText, args...); err != nil {
		return nil, fmt.Errorf("list drugs: %w", err)
	}

	drugs := make([]Drug, 0, len(rows))
	for _, row := range rows {
		d, err := row.toDrug()
		if err != nil {
			return nil, err
		}
		drugs = append(drugs, d)
	}
	return drugs, nil
}

func (r *SQLiteRepo) Count(ctx context.Context, q Query) (int, error) {
	sqlText := "SELECT COUNT(*) FROM drugs"
	args := []any{}
	if q.Company != "" {
		sqlText += " WHERE company = ?"
		args = append(args, q.Company)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, sqlText, args...); err != nil {
		return 0, fmt.Errorf("count drugs: %w", err)
	}
	return total, nil
}

func (r *SQLiteRepo) GetByCode(ctx context.Context, code string) (Drug, error) {
	var row sqliteRow
	err := r.db.GetContext(ctx, &row,
		"SELECT id, code, company, launch_date, attributes FROM drugs WHERE code = ? "+orderBy+" LIMIT 1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Drug{}, ErrNotFound
		}
		return Drug{}, fmt.Errorf("get drug: %w", err)
	}
	return row.toDrug()
}

func (r *SQLiteRepo) Replace(ctx context.Context, drugs []Drug) (int, error) {
	rows := make([]sqliteRow, 0, len(drugs))
	for i, d := range drugs {
		id, err := surrogateID(d.ID)
		if err != nil {
			return 0, fmt.Errorf("drug %d: %w", i, err)
		}
		attrs, err := d.AttributesJSON()
		if err != nil {
			return 0, fmt.Errorf("drug %d: %w", i, err)
		}
		rows = append(rows, sqliteRow{
			ID:         id.String(),
			Code:       d.Code,
			Company:    d.Company,
			LaunchDate: d.LaunchDate.UTC().Format(sqliteTimeLayout),
			Attributes: string(attrs),
		})
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM drugs"); err != nil {
		return 0, fmt.Errorf("delete drugs: %w", err)
	}
	for _, row := range rows {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO drugs (id, code, company, launch_date, attributes)
			 VALUES (:id, :code, :company, :launch_date, :attributes)`, row)
		if err != nil {
			return 0, fmt.Errorf("insert drug %s: %w", row.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return len(rows), nil
}
