// Package repository bundles the table repositories over one pool and hosts the lookups that span
// several of them.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/offerlab/offerdb/internal/domain/offers"
	"github.com/offerlab/offerdb/internal/domain/packages"
	"github.com/offerlab/offerdb/internal/domain/persons"
	"github.com/offerlab/offerdb/internal/domain/projects"
	"github.com/offerlab/offerdb/internal/infra/db"
)

// Pinger is the part of the pool used for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Conn is what New needs from the connection pool; *pgxpool.Pool satisfies it.
type Conn interface {
	db.Pool
	Pinger
}

type Repository struct {
	Packages *packages.Repo
	Offers   *offers.Repo
	Persons  *persons.Repo
	Projects *projects.Repo

	conn Conn
	log  zerolog.Logger
}

// New wires every repository to the same instrumented pool.
func New(conn Conn, log zerolog.Logger) *Repository {
	p := db.Instrument(conn)
	return &Repository{
		Packages: packages.NewRepo(p),
		Offers:   offers.NewRepo(p),
		Persons:  persons.NewRepo(p),
		Projects: projects.NewRepo(p),
		conn:     conn,
		log:      log.With().Str("component", "repository").Logger(),
	}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

// AddressLookup is the result of AddressForPerson. Exactly one of Address and Advisory is set.
type AddressLookup struct {
	Address  *persons.Address `json:"address,omitempty"`
	Advisory string           `json:"advisory,omitempty"`
}

// SplitFullName splits "title first... family". Middle names stay with the first name.
func SplitFullName(fullName string) (title, first, family string, ok bool) {
	parts := strings.Fields(fullName)
	if len(parts) < 3 {
		return "", "", "", false
	}
	return parts[0], strings.Join(parts[1:len(parts)-1], " "), parts[len(parts)-1], true
}

// AddressForPerson resolves the organization address of a person given as "title first family".
// A person or organization link that cannot be found yields an advisory, not an error.
func (r *Repository) AddressForPerson(ctx context.Context, fullName string) (*AddressLookup, error) {
	title, first, family, ok := SplitFullName(fullName)
	if !ok {
		r.log.Warn().Str("name", fullName).Msg("person name needs title, first and family name")
		return &AddressLookup{Advisory: missingPerson(fullName)}, nil
	}

	personID, err := r.Persons.IDByName(ctx, title, first, family)
	switch {
	case errors.Is(err, db.ErrNotFound):
		r.log.Warn().Str("name", fullName).Msg("person not found")
		return &AddressLookup{Advisory: missingPerson(fullName)}, nil
	case err != nil:
		return nil, err
	}

	orgID, err := r.Persons.OrganizationIDForPerson(ctx, personID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		r.log.Warn().Int64("person_id", personID).Msg("person has no organization")
		return &AddressLookup{Advisory: missingOrganization(personID)}, nil
	case err != nil:
		return nil, err
	}

	addr, err := r.Persons.AddressForOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &AddressLookup{Address: addr}, nil
}

func missingPerson(fullName string) string {
	return fmt.Sprintf("There is no entry in the persons table for the person %s. "+
		"The address fields in the generated .docx file will thus be placeholders. "+
		"Please consider creating the user before creating the offer.", fullName)
}

func missingOrganization(personID int64) string {
	return fmt.Sprintf("There is no entry in the persons_organizations table for the person with id %d. "+
		"The address fields in the generated .docx file will thus be placeholders. "+
		"Please consider linking the user to their organization before creating the offer.", personID)
}
