package repository

import (
	"context"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, title, course_id, examiner_id, password_hash, start_time, end_time,
	duration_minutes, max_attempts, passing_score, instructions, status, created_at, updated_at`

func scanExam(row interface{ Scan(...any) error }, e *model.Exam) error {
	return row.Scan(&e.ID, &e.Title, &e.CourseID, &e.ExaminerID, &e.PasswordHash,
		&e.StartTime, &e.EndTime, &e.DurationMinutes, &e.MaxAttempts,
		&e.PassingScore, &e.Instructions, &e.Status, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	row := r.pool.QueryRow(ctx, `SELECT `+examColumns+` FROM exams WHERE id = $1`, id)
	if err := scanExam(row, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, course_id, examiner_id, password_hash, start_time, end_time,
		                    duration_minutes, max_attempts, passing_score, instructions, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.CourseID, e.ExaminerID, e.PasswordHash, e.StartTime, e.EndTime,
		e.DurationMinutes, e.MaxAttempts, e.PassingScore, e.Instructions, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update rewrites the mutable fields of a DRAFT exam. The caller is
// responsible for the draft-only check.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, password_hash = $2, start_time = $3, end_time = $4,
		     duration_minutes = $5, max_attempts = $6, passing_score = $7,
		     instructions = $8, updated_at = NOW()
		 WHERE id = $9`,
		e.Title, e.PasswordHash, e.StartTime, e.EndTime,
		e.DurationMinutes, e.MaxAttempts, e.PassingScore, e.Instructions, e.ID)
	return err
}

// UpdateStatus updates an exam's status.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	return err
}

// ListByExaminerPaginated retrieves exams owned by an examiner with pagination.
func (r *ExamRepository) ListByExaminerPaginated(ctx context.Context, examinerID, limit, offset int) ([]model.Exam, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exams WHERE examiner_id = $1`, examinerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE examiner_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, examinerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := scanExam(rows, &e); err != nil {
			return nil, 0, err
		}
		exams = append(exams, e)
	}
	return exams, total, rows.Err()
}

// ListAvailableForStudent retrieves published exams of courses the student is
// enrolled in, each with the lobby overlay (attempts taken, last score).
func (r *ExamRepository) ListAvailableForStudent(ctx context.Context, studentID int) ([]model.LobbyExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+prefixedExamColumns("e")+`, c.code, c.title,
		        COUNT(es.id) AS attempts_taken,
		        (SELECT res.percentage
		           FROM exam_sessions s2
		           JOIN results res ON res.session_id = s2.id
		          WHERE s2.exam_id = e.id AND s2.student_id = $1
		          ORDER BY s2.attempt_number DESC LIMIT 1) AS last_score
		 FROM exams e
		 JOIN courses c ON c.id = e.course_id
		 JOIN course_students cs ON cs.course_id = c.id AND cs.student_id = $1
		 LEFT JOIN exam_sessions es ON es.exam_id = e.id AND es.student_id = $1
		 WHERE e.status = $2
		 GROUP BY e.id, c.code, c.title
		 ORDER BY e.created_at DESC`,
		studentID, model.ExamStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lobby []model.LobbyExam
	for rows.Next() {
		var le model.LobbyExam
		if err := rows.Scan(&le.ID, &le.Title, &le.CourseID, &le.ExaminerID, &le.PasswordHash,
			&le.StartTime, &le.EndTime, &le.DurationMinutes, &le.MaxAttempts,
			&le.PassingScore, &le.Instructions, &le.Status, &le.CreatedAt, &le.UpdatedAt,
			&le.CourseCode, &le.CourseTitle, &le.AttemptsTaken, &le.LastScore); err != nil {
			return nil, err
		}
		le.CanTakeExam = le.AttemptsTaken < le.MaxAttempts
		lobby = append(lobby, le)
	}
	return lobby, rows.Err()
}

func prefixedExamColumns(alias string) string {
	return alias + `.id, ` + alias + `.title, ` + alias + `.course_id, ` + alias + `.examiner_id, ` +
		alias + `.password_hash, ` + alias + `.start_time, ` + alias + `.end_time, ` +
		alias + `.duration_minutes, ` + alias + `.max_attempts, ` + alias + `.passing_score, ` +
		alias + `.instructions, ` + alias + `.status, ` + alias + `.created_at, ` + alias + `.updated_at`
}

// IsStudentEnrolled reports whether the student is enrolled in the exam's course.
func (r *ExamRepository) IsStudentEnrolled(ctx context.Context, examID uuid.UUID, studentID int) (bool, error) {
	var enrolled bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM exams e
		   JOIN course_students cs ON cs.course_id = e.course_id
		   WHERE e.id = $1 AND cs.student_id = $2
		 )`, examID, studentID).Scan(&enrolled)
	return enrolled, err
}
