package projects

import (
	"context"
	"fmt"

	"github.com/offerlab/offerdb/internal/domain/persons"
	"github.com/offerlab/offerdb/internal/infra/db"
)

type Repo struct{ q db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{q: q} }

// Identifiers returns the project codes (identifiers without their openBIS space).
func (r *Repo) Identifiers(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT openbis_project_identifier FROM projects ORDER BY openbis_project_identifier
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var ident string
		if err := rows.Scan(&ident); err != nil {
			return nil, err
		}
		out = append(out, Code(ident))
	}
	return out, rows.Err()
}

// Get looks a project up by reference; ref may be the code or the full identifier.
func (r *Repo) Get(ctx context.Context, ref string) (*Project, error) {
	var p Project
	if err := r.q.QueryRow(ctx, `
		SELECT id, openbis_project_identifier, short_title, long_description
		FROM projects
		WHERE openbis_project_identifier LIKE $1
		ORDER BY id
		LIMIT 1
	`, like(ref)).Scan(&p.ID, &p.Identifier, &p.ShortTitle, &p.LongDescription); err != nil {
		return nil, fmt.Errorf("project %q: %w", ref, db.NotFound(err))
	}
	return &p, nil
}

func (r *Repo) ShortTitle(ctx context.Context, ref string) (string, error) {
	p, err := r.Get(ctx, ref)
	if err != nil {
		return "", err
	}
	return p.ShortTitle, nil
}

func (r *Repo) LongDescription(ctx context.Context, ref string) (string, error) {
	p, err := r.Get(ctx, ref)
	if err != nil {
		return "", err
	}
	return p.LongDescription, nil
}

const piQuery = `
	SELECT DISTINCT pe.id, COALESCE(pe.username,''), pe.title, pe.first_name, pe.family_name, pe.email
	FROM projects pr
	JOIN projects_persons pp ON pp.project_id = pr.id
	JOIN persons pe ON pe.id = pp.person_id
	WHERE pp.project_role = $2 AND pr.openbis_project_identifier LIKE $1
	ORDER BY pe.id
	LIMIT 1`

// PrincipalInvestigator returns the PI of the referenced project.
func (r *Repo) PrincipalInvestigator(ctx context.Context, ref string) (*persons.Person, error) {
	var p persons.Person
	if err := r.q.QueryRow(ctx, piQuery, like(ref), RolePI).Scan(
		&p.ID,
		&p.Username,
		&p.Title,
		&p.FirstName,
		&p.FamilyName,
		&p.Email,
	); err != nil {
		return nil, fmt.Errorf("PI of project %q: %w", ref, db.NotFound(err))
	}
	return &p, nil
}

// ClientEmail is the e-mail address of the project's PI.
func (r *Repo) ClientEmail(ctx context.Context, ref string) (string, error) {
	p, err := r.PrincipalInvestigator(ctx, ref)
	if err != nil {
		return "", err
	}
	return p.Email, nil
}

func like(ref string) string { return "%" + ref + "%" }
