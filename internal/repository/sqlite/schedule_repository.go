package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"course-market/internal/apperr"
	"course-market/internal/domain"
	"course-market/internal/repository"
)

const createSchedulesTable = `
CREATE TABLE IF NOT EXISTS schedules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	starts_at DATETIME NOT NULL,
	instructor_id INTEGER NOT NULL,
	student_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(instructor_id) REFERENCES instructors(id),
	FOREIGN KEY(student_id) REFERENCES students(id)
);
CREATE INDEX IF NOT EXISTS idx_schedules_instructor_id ON schedules(instructor_id);
`

type ScheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) repository.ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSchedulesTable); err != nil {
		return fmt.Errorf("create schedules table: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) (int64, error) {
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO schedules (starts_at, instructor_id, student_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		schedule.Time.UTC(),
		schedule.InstructorID,
		schedule.StudentID,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert schedule: %w", constraintError(err, func(cause error) error {
			return apperr.FieldConstraint("schedule already exists", cause)
		}))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("schedule last insert id: %w", err)
	}
	schedule.ID = id
	return id, nil
}

func (r *ScheduleRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]domain.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT s.id, s.starts_at, s.instructor_id, s.student_id, s.created_at, s.updated_at, st.full_name, st.location
FROM schedules s
LEFT JOIN students st ON st.id = s.student_id
WHERE s.instructor_id = ?
ORDER BY s.starts_at ASC, s.id ASC`, instructorID)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		var (
			s        domain.Schedule
			fullName sql.NullString
			location sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Time, &s.InstructorID, &s.StudentID, &s.CreatedAt, &s.UpdatedAt, &fullName, &location); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		if fullName.Valid {
			s.Student = &domain.PrincipalSummary{FullName: fullName.String, Location: location.String}
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}
