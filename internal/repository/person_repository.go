package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PersonRepository persists clients and technicians. Both kinds share one
// table so tax id and email are unique across them.
type PersonRepository interface {
	Create(ctx context.Context, person *domain.Person) error
	Update(ctx context.Context, person *domain.Person) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Person, error)
	GetByTaxID(ctx context.Context, taxID string) (*domain.Person, error)
	GetByEmail(ctx context.Context, email string) (*domain.Person, error)
	List(ctx context.Context, kind domain.PersonKind) ([]domain.Person, error)
	Count(ctx context.Context) (int64, error)
}

type personRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository returns a Postgres-backed implementation.
func NewPersonRepository(pool *pgxpool.Pool) PersonRepository {
	return &personRepository{pool: pool}
}

const personColumns = `id, kind, name, tax_id, email, password_hash, roles, created_at`

func (r *personRepository) Create(ctx context.Context, person *domain.Person) error {
	const query = `
        INSERT INTO persons (kind, name, tax_id, email, password_hash, roles)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		person.Kind,
		person.Name,
		person.TaxID,
		person.Email,
		person.PasswordHash,
		person.Roles.Strings(),
	).Scan(&person.ID, &person.CreatedAt)
	return translate(err)
}

func (r *personRepository) Update(ctx context.Context, person *domain.Person) error {
	const query = `
        UPDATE persons SET name=$1, tax_id=$2, email=$3, password_hash=$4, roles=$5
        WHERE id=$6 AND kind=$7`

	cmd, err := r.pool.Exec(ctx, query,
		person.Name,
		person.TaxID,
		person.Email,
		person.PasswordHash,
		person.Roles.Strings(),
		person.ID,
		person.Kind,
	)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *personRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM persons WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *personRepository) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	return r.fetchSingle(ctx, `SELECT `+personColumns+` FROM persons WHERE id=$1`, id)
}

func (r *personRepository) GetByTaxID(ctx context.Context, taxID string) (*domain.Person, error) {
	return r.fetchSingle(ctx, `SELECT `+personColumns+` FROM persons WHERE tax_id=$1`, taxID)
}

func (r *personRepository) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	return r.fetchSingle(ctx, `SELECT `+personColumns+` FROM persons WHERE email=$1`, email)
}

func (r *personRepository) List(ctx context.Context, kind domain.PersonKind) ([]domain.Person, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+personColumns+` FROM persons WHERE kind=$1 ORDER BY id`, kind)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *person)
	}
	return result, rows.Err()
}

func (r *personRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM persons`).Scan(&n); err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (r *personRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Person, error) {
	person, err := scanPerson(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translate(err)
	}
	return person, nil
}

func scanPerson(row pgx.Row) (*domain.Person, error) {
	var (
		person domain.Person
		roles  []string
	)
	if err := row.Scan(
		&person.ID,
		&person.Kind,
		&person.Name,
		&person.TaxID,
		&person.Email,
		&person.PasswordHash,
		&roles,
		&person.CreatedAt,
	); err != nil {
		return nil, err
	}
	person.Roles = domain.RoleSetFromStrings(roles)
	return &person, nil
}
