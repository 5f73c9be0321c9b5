package offers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/offerlab/offerdb/internal/infra/db"
)

var validate = validator.New()

type Repo struct{ pool db.Pool }

func NewRepo(pool db.Pool) *Repo { return &Repo{pool: pool} }

// Register creates an offer in progress with no discount and suffixes its number with "_<id>".
func (r *Repo) Register(ctx context.Context, in NewOffer) (int64, error) {
	if err := validate.Struct(in); err != nil {
		return 0, err
	}

	var id int64
	err := db.WithTx(ctx, r.pool, func(q db.Querier) error {
		if err := q.QueryRow(ctx, `
			INSERT INTO offers (offer_number, offer_project_reference, offer_facility, offer_name,
				offer_description, offer_price, offer_total, offer_date, added_by, offer_status, discount, internal)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			RETURNING offer_id
		`, in.Number, in.ProjectReference, in.Facility, in.Name, in.Description,
			in.Price, in.Price, in.Date, in.CreatedBy, StatusInProgress, NoDiscount, in.Internal,
		).Scan(&id); err != nil {
			return err
		}

		_, err := q.Exec(ctx, `UPDATE offers SET offer_number=$2 WHERE offer_id=$1`,
			id, in.Number+"_"+strconv.FormatInt(id, 10))
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Offer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT offer_id, offer_number, offer_project_reference, offer_facility, offer_name,
			offer_description, offer_price::float8, offer_total::float8, discount, offer_date,
			added_by, offer_status, internal
		FROM offers WHERE offer_id=$1
	`, id)
	var o Offer
	if err := row.Scan(
		&o.ID,
		&o.Number,
		&o.ProjectReference,
		&o.Facility,
		&o.Name,
		&o.Description,
		&o.Price,
		&o.Total,
		&o.Discount,
		&o.Date,
		&o.CreatedBy,
		&o.Status,
		&o.Internal,
	); err != nil {
		return nil, fmt.Errorf("offer %d: %w", id, db.NotFound(err))
	}
	return &o, nil
}

// Delete removes the offer together with its package lines.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(q db.Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM offers_packages WHERE offer_id=$1`, id); err != nil {
			return err
		}
		tag, err := q.Exec(ctx, `DELETE FROM offers WHERE offer_id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("offer %d: %w", id, db.ErrNotFound)
		}
		return nil
	})
}

func (r *Repo) IsInternal(ctx context.Context, id int64) (bool, error) {
	var internal bool
	if err := r.pool.QueryRow(ctx, `SELECT internal FROM offers WHERE offer_id=$1`, id).Scan(&internal); err != nil {
		return false, fmt.Errorf("offer %d: %w", id, db.NotFound(err))
	}
	return internal, nil
}

// Discount returns the offer discount label.
func (r *Repo) Discount(ctx context.Context, id int64) (string, error) {
	var label string
	if err := r.pool.QueryRow(ctx, `SELECT discount FROM offers WHERE offer_id=$1`, id).Scan(&label); err != nil {
		return "", fmt.Errorf("offer %d: %w", id, db.NotFound(err))
	}
	return label, nil
}

func (r *Repo) Status(ctx context.Context, id int64) (string, error) {
	var status string
	if err := r.pool.QueryRow(ctx, `SELECT offer_status FROM offers WHERE offer_id=$1`, id).Scan(&status); err != nil {
		return "", fmt.Errorf("offer %d: %w", id, db.NotFound(err))
	}
	return status, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.exec1(ctx, id, `UPDATE offers SET offer_status=$2 WHERE offer_id=$1`, id, status)
}

func (r *Repo) UpdateTotal(ctx context.Context, id int64, total float64) error {
	return r.exec1(ctx, id, `UPDATE offers SET offer_total=$2 WHERE offer_id=$1`,
		id, Money(decimal.NewFromFloat(total)))
}

// UpdateDiscount stores the discount label and sets the total to price × (100 − percentage)/100.
// It returns the new total.
func (r *Repo) UpdateDiscount(ctx context.Context, label string, id int64, percentage float64) (float64, error) {
	var total float64
	err := db.WithTx(ctx, r.pool, func(q db.Querier) error {
		var price float64
		if err := q.QueryRow(ctx, `
			SELECT offer_price::float8 FROM offers WHERE offer_id=$1 FOR UPDATE
		`, id).Scan(&price); err != nil {
			return fmt.Errorf("offer %d: %w", id, db.NotFound(err))
		}

		total = Money(ApplyDiscount(decimal.NewFromFloat(price), decimal.NewFromFloat(percentage)))
		_, err := q.Exec(ctx, `UPDATE offers SET discount=$2, offer_total=$3 WHERE offer_id=$1`, id, label, total)
		return err
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// exec1 runs an update that must touch the offer row.
func (r *Repo) exec1(ctx context.Context, id int64, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("offer %d: %w", id, db.ErrNotFound)
	}
	return nil
}
