package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

const uniqueViolation = "23505"

// StudentRepository wraps all SQL used for student records.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository constructs a repository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// List returns every student ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]student.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, data, created_at, updated_at
		FROM students ORDER BY lower(name), roll_no
	`)
	if err != nil {
		return nil, fmt.Errorf("select students: %w", err)
	}
	defer rows.Close()
	var out []student.Record
	for rows.Next() {
		rec, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return out, nil
}

// Get returns a student by id.
func (r *StudentRepository) Get(ctx context.Context, id string) (student.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Record{}, apperrors.NotFound("Student not found")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, data, created_at, updated_at FROM students WHERE id=$1
	`, id)
	rec, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.Record{}, apperrors.NotFound("Student not found")
		}
		return student.Record{}, err
	}
	return rec, nil
}

// FindByRollNo returns the student holding rollNo.
func (r *StudentRepository) FindByRollNo(ctx context.Context, rollNo string) (student.Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, data, created_at, updated_at FROM students WHERE roll_no=$1
	`, rollNo)
	rec, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.Record{}, apperrors.NotFound("Student not found")
		}
		return student.Record{}, err
	}
	return rec, nil
}

// Create inserts a new student and assigns its id and timestamps.
func (r *StudentRepository) Create(ctx context.Context, rec *student.Record) error {
	data, err := encodeValues(rec)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	id := uuid.NewString()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO students (id, roll_no, name, data, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, id, rec.RollNo, rec.Name, data, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("Student with roll number %s already exists", rec.RollNo))
		}
		return fmt.Errorf("insert student: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

// Update replaces every field of an existing student.
func (r *StudentRepository) Update(ctx context.Context, rec *student.Record) error {
	if _, err := uuid.Parse(rec.ID); err != nil {
		return apperrors.NotFound("Student not found")
	}
	data, err := encodeValues(rec)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		UPDATE students SET roll_no=$1, name=$2, data=$3, updated_at=$4
		WHERE id=$5
		RETURNING created_at
	`, rec.RollNo, rec.Name, data, now, rec.ID)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("Student not found")
		}
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("Student with roll number %s already exists", rec.RollNo))
		}
		return fmt.Errorf("update student: %w", err)
	}
	rec.UpdatedAt = now
	return nil
}

// Delete removes a student by id.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NotFound("Student not found")
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Student not found")
	}
	return nil
}

func scanStudent(row pgx.Row) (student.Record, error) {
	var (
		rec  student.Record
		id   uuid.UUID
		data []byte
	)
	if err := row.Scan(&id, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan student: %w", err)
	}
	values := map[student.Field]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return rec, fmt.Errorf("decode student %s: %w", id, err)
	}
	for f, v := range values {
		rec.Set(f, v)
	}
	rec.ID = id.String()
	return rec, nil
}

func encodeValues(rec *student.Record) ([]byte, error) {
	data, err := json.Marshal(rec.Values())
	if err != nil {
		return nil, fmt.Errorf("encode student: %w", err)
	}
	return data, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
