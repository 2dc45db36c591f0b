package drug

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"drugapi/internal/database"
)

// seedLockKey identifies the advisory lock that serializes reseeds.
const seedLockKey int64 = 0x64727567 // "drug"

const selectColumns = "id::text, code, company, launch_date, attributes"

const orderBy = "ORDER BY launch_date DESC, code ASC, id ASC"

var copyColumns = []string{"id", "code", "company", "launch_date", "attributes"}

// PostgresRepo stores drugs in the drugs table.
type PostgresRepo struct {
	db      database.Pool
	timeout time.Duration
}

// NewPostgresRepo creates a repository. A zero timeout leaves queries bounded only by ctx.
func NewPostgresRepo(db database.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func whereClause(q Query) (string, []any) {
	clauses := []string{}
	args := []any{}
	argn := 1

	if q.Company != "" {
		clauses = append(clauses, fmt.Sprintf("company = $%d", argn))
		args = append(args, q.Company)
		argn++
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Drug, error) {
	where, args := whereClause(q)
	sql := "SELECT " + selectColumns + " FROM drugs" + where + " " + orderBy

	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, q.Limit, q.Offset)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list drugs: %w", err)
	}
	defer rows.Close()

	drugs := []Drug{}
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, err
		}
		drugs = append(drugs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drugs: %w", err)
	}
	return drugs, nil
}

func (r *PostgresRepo) Count(ctx context.Context, q Query) (int, error) {
	where, args := whereClause(q)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM drugs"+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count drugs: %w", err)
	}
	return total, nil
}

func (r *PostgresRepo) GetByCode(ctx context.Context, code string) (Drug, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, "SELECT "+selectColumns+" FROM drugs WHERE code = $1 "+orderBy+" LIMIT 1", code)
	d, err := scanDrug(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Drug{}, ErrNotFound
		}
		return Drug{}, err
	}
	return d, nil
}

func (r *PostgresRepo) Replace(ctx context.Context, drugs []Drug) (int, error) {
	rows := make([][]any, 0, len(drugs))
	for i, d := range drugs {
		id, err := surrogateID(d.ID)
		if err != nil {
			return 0, fmt.Errorf("drug %d: %w", i, err)
		}
		attrs, err := d.AttributesJSON()
		if err != nil {
			return 0, fmt.Errorf("drug %d: %w", i, err)
		}
		rows = append(rows, []any{id.String(), d.Code, d.Company, d.LaunchDate.UTC(), attrs})
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var inserted int64
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", seedLockKey); err != nil {
			return fmt.Errorf("acquire seed lock: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM drugs"); err != nil {
			return fmt.Errorf("delete drugs: %w", err)
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"drugs"}, copyColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("insert drugs: %w", err)
		}
		inserted = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

// inTx runs fn in a transaction, committing on success and rolling back otherwise.
func (r *PostgresRepo) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func scanDrug(row pgx.Row) (Drug, error) {
	var (
		d     Drug
		attrs []byte
	)
	if err := row.Scan(&d.ID, &d.Code, &d.Company, &d.LaunchDate, &attrs); err != nil {
		return Drug{}, err
	}
	d.LaunchDate = d.LaunchDate.UTC()
	if err := d.SetAttributesJSON(attrs); err != nil {
		return Drug{}, err
	}
	return d, nil
}

// surrogateID keeps a fixture-provided UUID and generates one otherwise.
func surrogateID(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.New(), nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return parsed, nil
}
