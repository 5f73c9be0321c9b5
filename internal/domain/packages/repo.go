package packages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/offerlab/offerdb/internal/infra/db"
)

type Repo struct{ q db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{q: q} }

const packageColumns = `
	package_id, package_name, package_facility, package_description, COALESCE(package_group,''),
	package_price_internal::float8, package_price_external_academic::float8,
	package_price_external_commercial::float8, package_unit_type, package_date`

func scanPackage(row pgx.Row, p *Package) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Facility,
		&p.Description,
		&p.Group,
		&p.PriceInternal,
		&p.PriceExternalAcademic,
		&p.PriceExternalCommercial,
		&p.UnitType,
		&p.CreatedAt,
	)
}

func (r *Repo) List(ctx context.Context) ([]Package, error) {
	rows, err := r.q.Query(ctx, `SELECT`+packageColumns+` FROM packages ORDER BY package_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Package{}
	for rows.Next() {
		var p Package
		if err := scanPackage(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*Package, error) {
	row := r.q.QueryRow(ctx, `SELECT`+packageColumns+` FROM packages WHERE package_id=$1`, id)
	var p Package
	if err := scanPackage(row, &p); err != nil {
		return nil, fmt.Errorf("package %d: %w", id, db.NotFound(err))
	}
	return &p, nil
}

// Groups returns the distinct package groups. Packages without a group are skipped.
func (r *Repo) Groups(ctx context.Context) ([]string, error) {
	return r.strings(ctx, `
		SELECT DISTINCT package_group
		FROM packages
		WHERE package_group IS NOT NULL
		ORDER BY package_group
	`)
}

func (r *Repo) Names(ctx context.Context) ([]string, error) {
	return r.strings(ctx, `SELECT package_name FROM packages ORDER BY package_name`)
}

// IDsAndNames returns "<id>: <name>" labels for every package, ordered by name.
func (r *Repo) IDsAndNames(ctx context.Context) ([]string, error) {
	return r.labels(ctx, `SELECT package_id, package_name FROM packages ORDER BY package_name`)
}

// IDsAndNamesInGroup is IDsAndNames restricted to one package group. The group is matched
// literally, so "" selects packages whose group is the empty string.
func (r *Repo) IDsAndNamesInGroup(ctx context.Context, group string) ([]string, error) {
	return r.labels(ctx, `
		SELECT package_id, package_name
		FROM packages
		WHERE package_group = $1
		ORDER BY package_name
	`, group)
}

func (r *Repo) labels(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out = append(out, Label(id, name))
	}
	return out, rows.Err()
}

// Label formats a package the way selection lists show it.
func Label(id int64, name string) string {
	return strconv.FormatInt(id, 10) + ": " + name
}

func (r *Repo) NameByID(ctx context.Context, id int64) (string, error) {
	var name string
	if err := r.q.QueryRow(ctx, `SELECT package_name FROM packages WHERE package_id=$1`, id).Scan(&name); err != nil {
		return "", fmt.Errorf("package %d: %w", id, db.NotFound(err))
	}
	return name, nil
}

func (r *Repo) DescriptionByID(ctx context.Context, id int64) (string, error) {
	var desc string
	if err := r.q.QueryRow(ctx, `SELECT package_description FROM packages WHERE package_id=$1`, id).Scan(&desc); err != nil {
		return "", fmt.Errorf("package %d: %w", id, db.NotFound(err))
	}
	return desc, nil
}

func (r *Repo) IDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := r.q.QueryRow(ctx, `SELECT package_id FROM packages WHERE package_name=$1`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("package %q: %w", name, db.NotFound(err))
	}
	return id, nil
}

func (r *Repo) PriceByID(ctx context.Context, id int64, t PriceType) (float64, error) {
	var price float64
	q := `SELECT ` + t.Column() + `::float8 FROM packages WHERE package_id=$1`
	if err := r.q.QueryRow(ctx, q, id).Scan(&price); err != nil {
		return 0, fmt.Errorf("package %d: %w", id, db.NotFound(err))
	}
	return price, nil
}

func (r *Repo) PriceByName(ctx context.Context, name string, t PriceType) (float64, error) {
	var price float64
	q := `SELECT ` + t.Column() + `::float8 FROM packages WHERE package_name=$1`
	if err := r.q.QueryRow(ctx, q, name).Scan(&price); err != nil {
		return 0, fmt.Errorf("package %q: %w", name, db.NotFound(err))
	}
	return price, nil
}

// Create inserts a package that only has a name; everything else takes column defaults.
func (r *Repo) Create(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO packages (package_name) VALUES ($1)
		RETURNING package_id
	`, name).Scan(&id)
	return id, err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM packages WHERE package_id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("package %d: %w", id, db.ErrNotFound)
	}
	return nil
}

func (r *Repo) UpdateGroup(ctx context.Context, id int64, group string) error {
	tag, err := r.q.Exec(ctx, `UPDATE packages SET package_group=$2 WHERE package_id=$1`, id, group)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("package %d: %w", id, db.ErrNotFound)
	}
	return nil
}

func (r *Repo) strings(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
