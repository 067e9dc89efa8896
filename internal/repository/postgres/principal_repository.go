package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"course-market/internal/apperr"
	"course-market/internal/domain"
	"course-market/internal/repository"
)

const (
	studentsTable    = "students"
	instructorsTable = "instructors"
)

const createPrincipalsTable = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL,
	password TEXT NOT NULL,
	full_name TEXT NOT NULL,
	bio TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL,
	birth_date TIMESTAMPTZ NOT NULL,
	phone_number TEXT NOT NULL DEFAULT '',
	profile_picture TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL,
	geometry JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT %[1]s_email_key UNIQUE (email)
)`

const principalColumns = `id, email, password, full_name, bio, role, birth_date, phone_number, profile_picture, location, geometry, created_at, updated_at`

// PrincipalRepository stores the accounts of one role in its own table.
type PrincipalRepository struct {
	db    DBTX
	table string
}

func NewPrincipalRepository(db DBTX, table string) repository.PrincipalRepository {
	return &PrincipalRepository{db: db, table: table}
}

func (r *PrincipalRepository) Init(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, fmt.Sprintf(createPrincipalsTable, r.table)); err != nil {
		return fmt.Errorf("create %s table: %w", r.table, err)
	}
	return nil
}

func (r *PrincipalRepository) Create(ctx context.Context, p *domain.Principal) (int64, error) {
	geometry, err := json.Marshal(p.Geometry)
	if err != nil {
		return 0, fmt.Errorf("encode geometry: %w", err)
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	var id int64
	err = r.db.QueryRow(ctx, fmt.Sprintf(`
INSERT INTO %s (email, password, full_name, bio, role, birth_date, phone_number, profile_picture, location, geometry, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id`, r.table),
		p.Email,
		p.PasswordHash,
		p.FullName,
		p.Bio,
		string(p.Role),
		p.BirthDate.UTC(),
		p.PhoneNumber,
		p.ProfilePicture,
		p.Location,
		geometry,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", r.table, constraintError(err, func(cause error) error {
			return apperr.DuplicateEmail("email must be unique", cause)
		}))
	}
	p.ID = id
	return id, nil
}

func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1`, principalColumns, r.table), email)
	return scanPrincipal(row)
}

func (r *PrincipalRepository) GetByID(ctx context.Context, id int64) (*domain.Principal, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, principalColumns, r.table), id)
	return scanPrincipal(row)
}

func (r *PrincipalRepository) List(ctx context.Context) ([]domain.Principal, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY id ASC`, principalColumns, r.table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close()

	var principals []domain.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		principals = append(principals, *p)
	}
	return principals, rows.Err()
}

func scanPrincipal(row pgx.Row) (*domain.Principal, error) {
	var (
		p        domain.Principal
		role     string
		geometry []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.FullName,
		&p.Bio,
		&role,
		&p.BirthDate,
		&p.PhoneNumber,
		&p.ProfilePicture,
		&p.Location,
		&geometry,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan principal: %w", err)
	}
	p.Role = domain.Role(role)
	if err := json.Unmarshal(geometry, &p.Geometry); err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	return &p, nil
}
