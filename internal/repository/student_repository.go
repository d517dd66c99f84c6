package repository

import (
	"context"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

const studentColumns = `id, matric_no, first_name, last_name, email, is_active, created_at, updated_at`

func scanStudent(row interface{ Scan(...any) error }, s *model.Student) error {
	return row.Scan(&s.ID, &s.MatricNo, &s.FirstName, &s.LastName, &s.Email,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

// GetByMatricNo retrieves a student by matric number.
func (r *StudentRepository) GetByMatricNo(ctx context.Context, matricNo string) (*model.Student, error) {
	s := &model.Student{}
	row := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE matric_no = $1`, matricNo)
	if err := scanStudent(row, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	row := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	if err := scanStudent(row, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new student. Identity fields are write-once.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (matric_no, first_name, last_name, email, is_active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING id, is_active, created_at, updated_at`,
		s.MatricNo, s.FirstName, s.LastName, s.Email,
	).Scan(&s.ID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

// SetActive flips the active flag. Deactivation is the only removal path;
// student rows are never deleted.
func (r *StudentRepository) SetActive(ctx context.Context, id int, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET is_active = $1, updated_at = NOW() WHERE id = $2`,
		active, id)
	return err
}

// ListPaginated retrieves students with pagination.
func (r *StudentRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Student, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students
		 ORDER BY matric_no ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}
