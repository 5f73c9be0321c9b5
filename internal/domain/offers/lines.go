package offers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/offerlab/offerdb/internal/domain/packages"
	"github.com/offerlab/offerdb/internal/infra/db"
)

/* Offer lines (offers_packages) */

func (r *Repo) Lines(ctx context.Context, offerID int64) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT offer_id, package_id, package_count, package_addon_price::float8, package_discount, package_price_type
		FROM offers_packages
		WHERE offer_id=$1
		ORDER BY package_id
	`, offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.OfferID, &l.PackageID, &l.Count, &l.AddOnPrice, &l.Discount, &l.PriceType); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) LineCount(ctx context.Context, offerID, packageID int64) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `
		SELECT package_count FROM offers_packages WHERE offer_id=$1 AND package_id=$2
	`, offerID, packageID).Scan(&n); err != nil {
		return 0, lineErr(offerID, packageID, db.NotFound(err))
	}
	return n, nil
}

func (r *Repo) LineDiscount(ctx context.Context, offerID, packageID int64) (string, error) {
	var label string
	if err := r.pool.QueryRow(ctx, `
		SELECT package_discount FROM offers_packages WHERE offer_id=$1 AND package_id=$2
	`, offerID, packageID).Scan(&label); err != nil {
		return "", lineErr(offerID, packageID, db.NotFound(err))
	}
	return label, nil
}

func (r *Repo) UpdateLineDiscount(ctx context.Context, label string, offerID, packageID int64) error {
	return r.execLine(ctx, offerID, packageID, `
		UPDATE offers_packages SET package_discount=$3 WHERE offer_id=$1 AND package_id=$2
	`, offerID, packageID, label)
}

func (r *Repo) UpdateLinePriceType(ctx context.Context, offerID, packageID int64, t packages.PriceType) error {
	return r.execLine(ctx, offerID, packageID, `
		UPDATE offers_packages SET package_price_type=$3 WHERE offer_id=$1 AND package_id=$2
	`, offerID, packageID, string(t.Normalize()))
}

func (r *Repo) RemovePackage(ctx context.Context, packageID, offerID int64) error {
	return r.execLine(ctx, offerID, packageID, `
		DELETE FROM offers_packages WHERE offer_id=$1 AND package_id=$2
	`, offerID, packageID)
}

func (r *Repo) HasPackage(ctx context.Context, offerID, packageID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM offers_packages WHERE offer_id=$1 AND package_id=$2)
	`, offerID, packageID).Scan(&ok)
	return ok, err
}

// UpsertLine puts a package on an offer at the given price. An existing line only gets its
// price replaced; a new line starts with count 1 and no discount.
func (r *Repo) UpsertLine(ctx context.Context, offerID, packageID int64, unitPrice float64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO offers_packages (offer_id, package_id, package_addon_price, package_count, package_discount)
		VALUES ($1,$2,$3,1,$4)
		ON CONFLICT (offer_id, package_id)
		DO UPDATE SET package_addon_price = EXCLUDED.package_addon_price
	`, offerID, packageID, Money(decimal.NewFromFloat(unitPrice)), NoDiscount)
	return err
}

func (r *Repo) OfferIDsForPackage(ctx context.Context, packageID int64) ([]int64, error) {
	return r.ids(ctx, `
		SELECT offer_id FROM offers_packages WHERE package_id=$1 ORDER BY offer_id
	`, packageID)
}

func (r *Repo) FirstOfferIDForPackage(ctx context.Context, packageID int64) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, `
		SELECT offer_id FROM offers_packages WHERE package_id=$1 ORDER BY offer_id LIMIT 1
	`, packageID).Scan(&id); err != nil {
		return 0, fmt.Errorf("offers for package %d: %w", packageID, db.NotFound(err))
	}
	return id, nil
}

func (r *Repo) IsPackageSelected(ctx context.Context, packageID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM offers_packages WHERE package_id=$1)
	`, packageID).Scan(&ok)
	return ok, err
}

// PackageIDsWithoutGroup lists the packages on an offer that have no package group yet.
func (r *Repo) PackageIDsWithoutGroup(ctx context.Context, offerID int64) ([]int64, error) {
	return r.ids(ctx, `
		SELECT p.package_id
		FROM packages p
		JOIN offers_packages op ON op.package_id = p.package_id
		WHERE op.offer_id=$1 AND p.package_group IS NULL
		ORDER BY p.package_id
	`, offerID)
}

// RecalculateLine sets a line's count and discount factor, reprices the line from the package
// price for u.PriceType, and rolls the change up into the offer price and total.
// The offer row is locked first, so concurrent recalculations on one offer run one after another
// and each sum sees every committed line.
func (r *Repo) RecalculateLine(ctx context.Context, u LineUpdate) (*Recalculation, error) {
	if err := validate.Struct(u); err != nil {
		return nil, err
	}

	var res Recalculation
	err := db.WithTx(ctx, r.pool, func(q db.Querier) error {
		if err := q.QueryRow(ctx, `
			SELECT discount FROM offers WHERE offer_id=$1 FOR UPDATE
		`, u.OfferID).Scan(&res.OfferDiscount); err != nil {
			return fmt.Errorf("offer %d: %w", u.OfferID, db.NotFound(err))
		}

		var unit float64
		if err := q.QueryRow(ctx,
			`SELECT `+u.PriceType.Column()+`::float8 FROM packages WHERE package_id=$1`, u.PackageID,
		).Scan(&unit); err != nil {
			return fmt.Errorf("package %d: %w", u.PackageID, db.NotFound(err))
		}

		line := LinePrice(unit, u.Count, u.DiscountFactor)
		res.LinePrice = Money(line)
		res.LineDiscount = DiscountLabel(u.DiscountFactor)

		tag, err := q.Exec(ctx, `
			UPDATE offers_packages
			SET package_count=$3, package_addon_price=$4, package_discount=$5
			WHERE offer_id=$1 AND package_id=$2
		`, u.OfferID, u.PackageID, u.Count, res.LinePrice, res.LineDiscount)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return lineErr(u.OfferID, u.PackageID, db.ErrNotFound)
		}

		var sum float64
		if err := q.QueryRow(ctx, `
			SELECT COALESCE(SUM(package_addon_price), 0)::float8 FROM offers_packages WHERE offer_id=$1
		`, u.OfferID).Scan(&sum); err != nil {
			return err
		}

		price := decimal.NewFromFloat(sum).Round(2)
		res.OfferPrice = Money(price)
		res.OfferTotal = Money(ApplyDiscount(price, ParseDiscount(res.OfferDiscount)))

		_, err = q.Exec(ctx, `
			UPDATE offers SET offer_price=$2, offer_total=$3 WHERE offer_id=$1
		`, u.OfferID, res.OfferPrice, res.OfferTotal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *Repo) execLine(ctx context.Context, offerID, packageID int64, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lineErr(offerID, packageID, db.ErrNotFound)
	}
	return nil
}

func (r *Repo) ids(ctx context.Context, sql string, args ...any) ([]int64, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func lineErr(offerID, packageID int64, err error) error {
	return fmt.Errorf("offer %d package %d: %w", offerID, packageID, err)
}
