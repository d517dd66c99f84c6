package repository

import (
	"context"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository handles course and enrollment data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, title, examiner_id, created_at, updated_at
		 FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Code, &c.Title, &c.ExaminerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (code, title, examiner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.Code, c.Title, c.ExaminerID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// ListByExaminer retrieves all courses owned by an examiner.
func (r *CourseRepository) ListByExaminer(ctx context.Context, examinerID int) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, title, examiner_id, created_at, updated_at
		 FROM courses WHERE examiner_id = $1
		 ORDER BY code ASC`, examinerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &c.ExaminerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Enroll adds students to a course, ignoring duplicates.
func (r *CourseRepository) Enroll(ctx context.Context, courseID int, studentIDs []int) error {
	for _, sid := range studentIDs {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO course_students (course_id, student_id)
			 VALUES ($1, $2)
			 ON CONFLICT (course_id, student_id) DO NOTHING`,
			courseID, sid,
		); err != nil {
			return err
		}
	}
	return nil
}

// ListEnrolled retrieves the students enrolled in a course.
func (r *CourseRepository) ListEnrolled(ctx context.Context, courseID int) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.matric_no, s.first_name, s.last_name, s.email, s.is_active, s.created_at, s.updated_at
		 FROM students s
		 JOIN course_students cs ON cs.student_id = s.id
		 WHERE cs.course_id = $1
		 ORDER BY s.matric_no ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
