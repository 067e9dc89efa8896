package repository

import (
	"context"
	"errors"

	"course-market/internal/domain"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// PrincipalRepository persists the accounts of one role. Students and
// instructors live in separate tables, each with its own repository.
type PrincipalRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, principal *domain.Principal) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.Principal, error)
	GetByID(ctx context.Context, id int64) (*domain.Principal, error)
	List(ctx context.Context) ([]domain.Principal, error)
}

// CategoryRepository manages course category reference data.
type CategoryRepository interface {
	Init(ctx context.Context) error
	Ensure(ctx context.Context, name string) (int64, error)
	List(ctx context.Context) ([]domain.Category, error)
}

// CourseRepository persists courses. Get, List and ListByCategory join the
// owning instructor and the category name; ListByInstructor joins the
// category name only.
type CourseRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, course *domain.Course) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.Course, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]domain.Course, error)
}

// ScheduleRepository persists booked time slots.
type ScheduleRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, schedule *domain.Schedule) (int64, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]domain.Schedule, error)
}

// Store bundles the repositories of one database backend.
type Store struct {
	Students    PrincipalRepository
	Instructors PrincipalRepository
	Categories  CategoryRepository
	Courses     CourseRepository
	Schedules   ScheduleRepository
}

// Principals returns the repository holding accounts of the given role.
func (s *Store) Principals(role domain.Role) PrincipalRepository {
	if role == domain.RoleInstructor {
		return s.Instructors
	}
	return s.Students
}

// Init creates the schema. Order matters: courses and schedules reference
// principals and categories.
func (s *Store) Init(ctx context.Context) error {
	for _, init := range []func(context.Context) error{
		s.Students.Init,
		s.Instructors.Init,
		s.Categories.Init,
		s.Courses.Init,
		s.Schedules.Init,
	} {
		if err := init(ctx); err != nil {
			return err
		}
	}
	return nil
}
