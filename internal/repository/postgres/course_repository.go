package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"course-market/internal/apperr"
	"course-market/internal/domain"
	"course-market/internal/repository"
)

const createCoursesTable = `
CREATE TABLE IF NOT EXISTS courses (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	price BIGINT NOT NULL DEFAULT 0,
	img_url TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT '',
	level TEXT NOT NULL DEFAULT '',
	category_id BIGINT NOT NULL REFERENCES categories(id),
	instructor_id BIGINT NOT NULL REFERENCES instructors(id),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_courses_category_id ON courses(category_id);
CREATE INDEX IF NOT EXISTS idx_courses_instructor_id ON courses(instructor_id)`

const selectCourses = `
SELECT c.id, c.name, c.detail, c.price, c.img_url, c.type, c.level, c.category_id, c.instructor_id, c.created_at, c.updated_at,
	COALESCE(cat.name, ''), i.full_name, i.profile_picture, i.location
FROM courses c
LEFT JOIN categories cat ON cat.id = c.category_id
LEFT JOIN instructors i ON i.id = c.instructor_id`

type CourseRepository struct {
	db DBTX
}

func NewCourseRepository(db DBTX) repository.CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Init(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createCoursesTable); err != nil {
		return fmt.Errorf("create courses table: %w", err)
	}
	return nil
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) (int64, error) {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO courses (name, detail, price, img_url, type, level, category_id, instructor_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`,
		course.Name,
		course.Detail,
		course.Price,
		course.ImgURL,
		course.Type,
		course.Level,
		course.CategoryID,
		course.InstructorID,
		course.CreatedAt,
		course.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert course: %w", constraintError(err, func(cause error) error {
			return apperr.FieldConstraint("course already exists", cause)
		}))
	}
	course.ID = id
	return id, nil
}

func (r *CourseRepository) Get(ctx context.Context, id int64) (*domain.Course, error) {
	course, err := scanCourse(r.db.QueryRow(ctx, selectCourses+`
WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan course: %w", err)
	}
	return course, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	return r.query(ctx, selectCourses+`
ORDER BY c.id ASC`)
}

func (r *CourseRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Course, error) {
	return r.query(ctx, selectCourses+`
WHERE c.category_id = $1
ORDER BY c.id ASC`, categoryID)
}

func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]domain.Course, error) {
	courses, err := r.query(ctx, selectCourses+`
WHERE c.instructor_id = $1
ORDER BY c.id ASC`, instructorID)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i].Instructor = nil
	}
	return courses, nil
}

func (r *CourseRepository) query(ctx context.Context, query string, args ...any) ([]domain.Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var (
		course         domain.Course
		fullName       *string
		profilePicture *string
		location       *string
	)
	if err := row.Scan(
		&course.ID,
		&course.Name,
		&course.Detail,
		&course.Price,
		&course.ImgURL,
		&course.Type,
		&course.Level,
		&course.CategoryID,
		&course.InstructorID,
		&course.CreatedAt,
		&course.UpdatedAt,
		&course.CategoryName,
		&fullName,
		&profilePicture,
		&location,
	); err != nil {
		return nil, err
	}
	if fullName != nil {
		course.Instructor = &domain.PrincipalSummary{
			FullName:       *fullName,
			ProfilePicture: deref(profilePicture),
			Location:       deref(location),
		}
	}
	return &course, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
