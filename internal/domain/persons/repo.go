package persons

import (
	"context"
	"fmt"

	"github.com/offerlab/offerdb/internal/infra/db"
)

type Repo struct{ q db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{q: q} }

func (r *Repo) IDByName(ctx context.Context, title, firstName, familyName string) (int64, error) {
	var id int64
	if err := r.q.QueryRow(ctx, `
		SELECT id FROM persons
		WHERE title=$1 AND first_name=$2 AND family_name=$3
		ORDER BY id
		LIMIT 1
	`, title, firstName, familyName).Scan(&id); err != nil {
		return 0, fmt.Errorf("person %s %s %s: %w", title, firstName, familyName, db.NotFound(err))
	}
	return id, nil
}

func (r *Repo) OrganizationIDForPerson(ctx context.Context, personID int64) (int64, error) {
	var id int64
	if err := r.q.QueryRow(ctx, `
		SELECT organization_id FROM persons_organizations
		WHERE person_id=$1
		ORDER BY organization_id
		LIMIT 1
	`, personID).Scan(&id); err != nil {
		return 0, fmt.Errorf("organization of person %d: %w", personID, db.NotFound(err))
	}
	return id, nil
}

func (r *Repo) AddressForOrganization(ctx context.Context, organizationID int64) (*Address, error) {
	var a Address
	if err := r.q.QueryRow(ctx, `
		SELECT group_acronym, institute, umbrella_organization, street, zip_code, city, country
		FROM organizations WHERE id=$1
	`, organizationID).Scan(
		&a.GroupAcronym,
		&a.Institute,
		&a.UmbrellaOrganization,
		&a.Street,
		&a.ZipCode,
		&a.City,
		&a.Country,
	); err != nil {
		return nil, fmt.Errorf("organization %d: %w", organizationID, db.NotFound(err))
	}
	return &a, nil
}

func (r *Repo) EmailByUsername(ctx context.Context, username string) (string, error) {
	var email string
	if err := r.q.QueryRow(ctx, `SELECT email FROM persons WHERE username=$1`, username).Scan(&email); err != nil {
		return "", fmt.Errorf("person %q: %w", username, db.NotFound(err))
	}
	return email, nil
}

// Usernames lists the application users.
func (r *Repo) Usernames(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT user_name FROM "user" ORDER BY user_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
