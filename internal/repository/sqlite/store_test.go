package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-market/internal/apperr"
	"course-market/internal/domain"
	"course-market/internal/repository"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func newPrincipal(email string, role domain.Role) *domain.Principal {
	return &domain.Principal{
		Email:        email,
		PasswordHash: "$2a$10$hash",
		FullName:     "Ada Lovelace",
		Role:         role,
		BirthDate:    time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC),
		Location:     "London",
		Geometry:     domain.Geometry{Type: "Point", Coordinates: []float64{-0.1276, 51.5072}},
	}
}

func TestPrincipalRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p := newPrincipal("ada@example.com", domain.RoleInstructor)
	p.Bio = "maths"
	id, err := store.Instructors.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)

	byEmail, err := store.Instructors.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
	assert.Equal(t, domain.RoleInstructor, byEmail.Role)
	assert.Equal(t, "maths", byEmail.Bio)
	assert.Equal(t, p.Geometry, byEmail.Geometry)
	assert.True(t, p.BirthDate.Equal(byEmail.BirthDate))

	byID, err := store.Instructors.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)

	// roles are stored in separate tables
	_, err = store.Students.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.Students.GetByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPrincipalRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Students.Create(ctx, newPrincipal("dup@example.com", domain.RoleStudent))
	require.NoError(t, err)

	_, err = store.Students.Create(ctx, newPrincipal("dup@example.com", domain.RoleStudent))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
	assert.Equal(t, "email must be unique", apperr.From(err).Message)

	// the same email may exist once per role
	_, err = store.Instructors.Create(ctx, newPrincipal("dup@example.com", domain.RoleInstructor))
	assert.NoError(t, err)
}

func TestPrincipalRepository_List(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	empty, err := store.Instructors.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := store.Instructors.Create(ctx, newPrincipal(email, domain.RoleInstructor))
		require.NoError(t, err)
	}

	all, err := store.Instructors.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a@example.com", all[0].Email)
	assert.Equal(t, "b@example.com", all[1].Email)
}

func TestCategoryRepository_EnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.Categories.Ensure(ctx, "Music")
	require.NoError(t, err)
	again, err := store.Categories.Ensure(ctx, "Music")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	categories, err := store.Categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: first, Name: "Music"}}, categories)
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	instructor := newPrincipal("teach@example.com", domain.RoleInstructor)
	instructor.ProfilePicture = "https://cdn.example.com/ada.png"
	_, err := store.Instructors.Create(ctx, instructor)
	require.NoError(t, err)

	music, err := store.Categories.Ensure(ctx, "Music")
	require.NoError(t, err)
	art, err := store.Categories.Ensure(ctx, "Art")
	require.NoError(t, err)

	course := &domain.Course{
		Name:         "Piano 101",
		Detail:       "Scales and chords",
		Price:        150000,
		ImgURL:       "https://cdn.example.com/piano.png",
		Type:         "online",
		Level:        "beginner",
		CategoryID:   music,
		InstructorID: instructor.ID,
	}
	id, err := store.Courses.Create(ctx, course)
	require.NoError(t, err)

	got, err := store.Courses.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Piano 101", got.Name)
	assert.Equal(t, int64(150000), got.Price)
	assert.Equal(t, "Music", got.CategoryName)
	require.NotNil(t, got.Instructor)
	assert.Equal(t, domain.PrincipalSummary{
		FullName:       "Ada Lovelace",
		ProfilePicture: "https://cdn.example.com/ada.png",
		Location:       "London",
	}, *got.Instructor)

	_, err = store.Courses.Get(ctx, id+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	byMusic, err := store.Courses.ListByCategory(ctx, music)
	require.NoError(t, err)
	assert.Len(t, byMusic, 1)

	byArt, err := store.Courses.ListByCategory(ctx, art)
	require.NoError(t, err)
	assert.Empty(t, byArt)

	owned, err := store.Courses.ListByInstructor(ctx, instructor.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Music", owned[0].CategoryName)
	assert.Nil(t, owned[0].Instructor)

	all, err := store.Courses.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCourseRepository_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	instructor := newPrincipal("teach@example.com", domain.RoleInstructor)
	_, err := store.Instructors.Create(ctx, instructor)
	require.NoError(t, err)

	_, err = store.Courses.Create(ctx, &domain.Course{
		Name:         "Orphan",
		CategoryID:   999,
		InstructorID: instructor.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrFieldConstraint)
}

func TestScheduleRepository_ListByInstructor(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	instructor := newPrincipal("teach@example.com", domain.RoleInstructor)
	_, err := store.Instructors.Create(ctx, instructor)
	require.NoError(t, err)
	student := newPrincipal("learn@example.com", domain.RoleStudent)
	student.FullName = "Grace Hopper"
	student.Location = "New York"
	_, err = store.Students.Create(ctx, student)
	require.NoError(t, err)

	later := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{later, earlier} {
		_, err := store.Schedules.Create(ctx, &domain.Schedule{
			Time:         at,
			InstructorID: instructor.ID,
			StudentID:    student.ID,
		})
		require.NoError(t, err)
	}

	schedules, err := store.Schedules.ListByInstructor(ctx, instructor.ID)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.True(t, schedules[0].Time.Equal(earlier))
	require.NotNil(t, schedules[0].Student)
	assert.Equal(t, "Grace Hopper", schedules[0].Student.FullName)
	assert.Equal(t, "New York", schedules[0].Student.Location)

	none, err := store.Schedules.ListByInstructor(ctx, instructor.ID+1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_PrincipalsByRole(t *testing.T) {
	store := newTestStore(t)

	assert.Same(t, store.Students, store.Principals(domain.RoleStudent))
	assert.Same(t, store.Instructors, store.Principals(domain.RoleInstructor))
}
