package postgres

import (
	"context"
	"fmt"
	"time"

	"course-market/internal/apperr"
	"course-market/internal/domain"
	"course-market/internal/repository"
)

const createSchedulesTable = `
CREATE TABLE IF NOT EXISTS schedules (
	id BIGSERIAL PRIMARY KEY,
	starts_at TIMESTAMPTZ NOT NULL,
	instructor_id BIGINT NOT NULL REFERENCES instructors(id),
	student_id BIGINT NOT NULL REFERENCES students(id),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedules_instructor_id ON schedules(instructor_id)`

type ScheduleRepository struct {
	db DBTX
}

func NewScheduleRepository(db DBTX) repository.ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Init(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createSchedulesTable); err != nil {
		return fmt.Errorf("create schedules table: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) (int64, error) {
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO schedules (starts_at, instructor_id, student_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`,
		schedule.Time.UTC(),
		schedule.InstructorID,
		schedule.StudentID,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert schedule: %w", constraintError(err, func(cause error) error {
			return apperr.FieldConstraint("schedule already exists", cause)
		}))
	}
	schedule.ID = id
	return id, nil
}

func (r *ScheduleRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]domain.Schedule, error) {
	rows, err := r.db.Query(ctx, `
SELECT s.id, s.starts_at, s.instructor_id, s.student_id, s.created_at, s.updated_at, st.full_name, st.location
FROM schedules s
LEFT JOIN students st ON st.id = s.student_id
WHERE s.instructor_id = $1
ORDER BY s.starts_at ASC, s.id ASC`, instructorID)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		var (
			s        domain.Schedule
			fullName *string
			location *string
		)
		if err := rows.Scan(&s.ID, &s.Time, &s.InstructorID, &s.StudentID, &s.CreatedAt, &s.UpdatedAt, &fullName, &location); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		if fullName != nil {
			s.Student = &domain.PrincipalSummary{FullName: *fullName, Location: deref(location)}
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}
