package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/auth"
)

// StaffRepository stores the accounts allowed to sign in.
type StaffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository constructs a repository.
func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

// Create inserts a staff account. Emails are stored lower-cased.
func (r *StaffRepository) Create(ctx context.Context, s *auth.Staff) error {
	s.ID = uuid.NewString()
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.CreatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff (id, email, password_hash, created_at) VALUES ($1,$2,$3,$4)
	`, s.ID, s.Email, s.PasswordHash, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("Staff account %s already exists", s.Email))
		}
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

// FindByEmail looks an account up by email.
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (auth.Staff, error) {
	var (
		s  auth.Staff
		id uuid.UUID
	)
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at FROM staff WHERE email=$1
	`, strings.ToLower(strings.TrimSpace(email)))
	if err := row.Scan(&id, &s.Email, &s.PasswordHash, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Staff{}, apperrors.NotFound("Staff account not found")
		}
		return auth.Staff{}, fmt.Errorf("select staff: %w", err)
	}
	s.ID = id.String()
	return s, nil
}

// List returns every staff account without password hashes.
func (r *StaffRepository) List(ctx context.Context) ([]auth.Staff, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, created_at FROM staff ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("select staff: %w", err)
	}
	defer rows.Close()
	var out []auth.Staff
	for rows.Next() {
		var (
			s  auth.Staff
			id uuid.UUID
		)
		if err := rows.Scan(&id, &s.Email, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		s.ID = id.String()
		out = append(out, s)
	}
	return out, rows.Err()
}
