package projects

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerlab/offerdb/internal/infra/db"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Repo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, NewRepo(mock)
}

func TestCode(t *testing.T) {
	assert.Equal(t, "QABCD", Code("/MY_SPACE/QABCD"))
	assert.Equal(t, "QABCD", Code("QABCD"))
	assert.Equal(t, "", Code(""))
}

func TestIdentifiers(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("SELECT openbis_project_identifier FROM projects").
		WillReturnRows(pgxmock.NewRows([]string{"openbis_project_identifier"}).
			AddRow("/IVAC_ALPS/QALPS").
			AddRow("/MFT/QMFTX"))

	got, err := repo.Identifiers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"QALPS", "QMFTX"}, got)
}

func TestShortTitleMatchesByReference(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("FROM projects").WithArgs("%QALPS%").
		WillReturnRows(pgxmock.NewRows([]string{"id", "ident", "short", "long"}).
			AddRow(int64(1), "/IVAC_ALPS/QALPS", "ALPS", "Immunopeptidomics of ALPS"))

	title, err := repo.ShortTitle(context.Background(), "QALPS")
	require.NoError(t, err)
	assert.Equal(t, "ALPS", title)
}

func TestLongDescriptionUnknownProject(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("FROM projects").WithArgs("%QNONE%").WillReturnError(pgx.ErrNoRows)

	_, err := repo.LongDescription(context.Background(), "QNONE")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestPrincipalInvestigator(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("JOIN projects_persons").WithArgs("%QALPS%", RolePI).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "title", "first", "family", "email"}).
			AddRow(int64(9), "", "Dr.", "Ada", "Lovelace", "ada@example.org"))

	pi, err := repo.PrincipalInvestigator(context.Background(), "QALPS")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ada Lovelace", pi.FullName())
	assert.Equal(t, "ada@example.org", pi.Email)
}

func TestClientEmail(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("JOIN projects_persons").WithArgs("%QALPS%", RolePI).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "title", "first", "family", "email"}).
			AddRow(int64(9), "alovelace", "Dr.", "Ada", "Lovelace", "ada@example.org"))

	email, err := repo.ClientEmail(context.Background(), "QALPS")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.org", email)
}
