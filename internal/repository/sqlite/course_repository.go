package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"course-market/internal/apperr"
	"course-market/internal/domain"
	"course-market/internal/repository"
)

const createCoursesTable = `
CREATE TABLE IF NOT EXISTS courses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	price INTEGER NOT NULL DEFAULT 0,
	img_url TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT '',
	level TEXT NOT NULL DEFAULT '',
	category_id INTEGER NOT NULL,
	instructor_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(category_id) REFERENCES categories(id),
	FOREIGN KEY(instructor_id) REFERENCES instructors(id)
);
CREATE INDEX IF NOT EXISTS idx_courses_category_id ON courses(category_id);
CREATE INDEX IF NOT EXISTS idx_courses_instructor_id ON courses(instructor_id);
`

const selectCourses = `
SELECT c.id, c.name, c.detail, c.price, c.img_url, c.type, c.level, c.category_id, c.instructor_id, c.created_at, c.updated_at,
	COALESCE(cat.name, ''), i.full_name, i.profile_picture, i.location
FROM courses c
LEFT JOIN categories cat ON cat.id = c.category_id
LEFT JOIN instructors i ON i.id = c.instructor_id`

type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) repository.CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCoursesTable); err != nil {
		return fmt.Errorf("create courses table: %w", err)
	}
	return nil
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) (int64, error) {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO courses (name, detail, price, img_url, type, level, category_id, instructor_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
	)
	if err != nil {
		return 0, fmt.Errorf("insert course: %w", constraintError(err, func(cause error) error {
			return apperr.FieldConstraint("course already exists", cause)
		}))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("course last insert id: %w", err)
	}
	course.ID = id
	return id, nil
}

func (r *CourseRepository) Get(ctx context.Context, id int64) (*domain.Course, error) {
	row := r.db.QueryRowContext(ctx, selectCourses+`
WHERE c.id = ?`, id)
	course, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return course, err
}

func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	return r.query(ctx, selectCourses+`
ORDER BY c.id ASC`)
}

func (r *CourseRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Course, error) {
	return r.query(ctx, selectCourses+`
WHERE c.category_id = ?
ORDER BY c.id ASC`, categoryID)
}

func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]domain.Course, error) {
	courses, err := r.query(ctx, selectCourses+`
WHERE c.instructor_id = ?
ORDER BY c.id ASC`, instructorID)
	if err != nil {
		return nil, err
	}
	// the owner is implied by the caller
	for i := range courses {
		courses[i].Instructor = nil
	}
	return courses, nil
}

func (r *CourseRepository) query(ctx context.Context, query string, args ...any) ([]domain.Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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

func scanCourse(row interface {
	Scan(dest ...any) error
}) (*domain.Course, error) {
	var (
		course         domain.Course
		fullName       sql.NullString
		profilePicture sql.NullString
		location       sql.NullString
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
	if fullName.Valid {
		course.Instructor = &domain.PrincipalSummary{
			FullName:       fullName.String,
			ProfilePicture: profilePicture.String,
			Location:       location.String,
		}
	}
	return &course, nil
}
