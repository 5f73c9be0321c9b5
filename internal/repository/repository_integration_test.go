//go:build integration

package repository_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/offerlab/offerdb/internal/domain/offers"
	"github.com/offerlab/offerdb/internal/domain/packages"
	"github.com/offerlab/offerdb/internal/infra/db"
	"github.com/offerlab/offerdb/internal/infra/tabledump"
	"github.com/offerlab/offerdb/internal/repository"
)

// setupDB starts a postgres container, applies the migrations and returns a pool on it.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("offers"),
		postgres.WithUsername("offers"),
		postgres.WithPassword("offers"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dsn, err := db.DSN("offers", "offers", host)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, dsn, zerolog.Nop()))

	pool, err := db.Connect(ctx, db.Options{User: "offers", Password: "offers", Host: host}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func newOffer(t *testing.T, repo *repository.Repository, price float64) int64 {
	t.Helper()
	id, err := repo.Offers.Register(context.Background(), offers.NewOffer{
		Number:           "O_QALPS",
		ProjectReference: "QALPS",
		Facility:         "QBiC",
		Name:             "ALPS proteomics",
		Price:            price,
		Date:             time.Now(),
		CreatedBy:        "jdoe",
		Internal:         true,
	})
	require.NoError(t, err)
	return id
}

func TestIntegration(t *testing.T) {
	pool := setupDB(t)
	repo := repository.New(pool, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	t.Run("package created with a name round-trips", func(t *testing.T) {
		created, err := repo.Packages.Create(ctx, "Proteomics standard")
		require.NoError(t, err)

		id, err := repo.Packages.IDByName(ctx, "Proteomics standard")
		require.NoError(t, err)
		assert.Positive(t, id)
		assert.Equal(t, created, id)

		name, err := repo.Packages.NameByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Proteomics standard", name)
	})

	t.Run("register suffixes the offer number", func(t *testing.T) {
		id := newOffer(t, repo, 0)
		o, err := repo.Offers.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, offers.StatusInProgress, o.Status)
		assert.Equal(t, offers.NoDiscount, o.Discount)
		assert.Contains(t, o.Number, "O_QALPS_")
	})

	t.Run("discount of 10% on 200 totals 180", func(t *testing.T) {
		id := newOffer(t, repo, 200)

		total, err := repo.Offers.UpdateDiscount(ctx, "10%", id, 10)
		require.NoError(t, err)
		assert.Equal(t, 180.0, total)

		o, err := repo.Offers.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 180.0, o.Total)
		assert.Equal(t, "10%", o.Discount)
	})

	t.Run("line recalculation folds into the offer", func(t *testing.T) {
		pkgID, err := repo.Packages.Create(ctx, "Genomics basic")
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `UPDATE packages SET package_price_internal=50 WHERE package_id=$1`, pkgID)
		require.NoError(t, err)

		offerID := newOffer(t, repo, 0)
		require.NoError(t, repo.Offers.UpsertLine(ctx, offerID, pkgID, 50))

		res, err := repo.Offers.RecalculateLine(ctx, offers.LineUpdate{
			OfferID:        offerID,
			PackageID:      pkgID,
			Count:          2,
			PriceType:      packages.PriceInternal,
			DiscountFactor: 0.9,
		})
		require.NoError(t, err)
		assert.Equal(t, 90.0, res.LinePrice)
		assert.Equal(t, "10%", res.LineDiscount)
		assert.Equal(t, 90.0, res.OfferPrice)
		assert.Equal(t, 90.0, res.OfferTotal)

		o, err := repo.Offers.Get(ctx, offerID)
		require.NoError(t, err)
		assert.Equal(t, 90.0, o.Price)
		assert.Equal(t, 90.0, o.Total)
	})

	t.Run("upserting the same line twice keeps one row", func(t *testing.T) {
		pkgID, err := repo.Packages.Create(ctx, "Imaging")
		require.NoError(t, err)
		offerID := newOffer(t, repo, 0)

		require.NoError(t, repo.Offers.UpsertLine(ctx, offerID, pkgID, 10))
		require.NoError(t, repo.Offers.UpsertLine(ctx, offerID, pkgID, 12.5))

		lines, err := repo.Offers.Lines(ctx, offerID)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 12.5, lines[0].AddOnPrice)
	})

	t.Run("unknown person yields an advisory", func(t *testing.T) {
		got, err := repo.AddressForPerson(ctx, "Dr. No Body")
		require.NoError(t, err)
		assert.Nil(t, got.Address)
		assert.Contains(t, got.Advisory, "Dr. No Body")
	})

	t.Run("deleting an offer removes its lines", func(t *testing.T) {
		pkgID, err := repo.Packages.Create(ctx, "Metabolomics")
		require.NoError(t, err)
		offerID := newOffer(t, repo, 0)
		require.NoError(t, repo.Offers.UpsertLine(ctx, offerID, pkgID, 1))

		require.NoError(t, repo.Offers.Delete(ctx, offerID))
		selected, err := repo.Offers.IsPackageSelected(ctx, pkgID)
		require.NoError(t, err)
		assert.False(t, selected)
	})

	t.Run("dump lists the packages table", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, tabledump.Write(ctx, pool, "packages", &out))
		assert.Contains(t, out.String(), "package_name")
		assert.Contains(t, out.String(), "Proteomics standard")
	})
}
