package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-market/internal/apperr"
	"course-market/internal/auth"
	"course-market/internal/domain"
	"course-market/internal/geocoding"
	"course-market/internal/repository"
	"course-market/internal/repository/sqlite"
	"course-market/internal/storage"
)

var paris = domain.Geometry{Type: "Point", Coordinates: []float64{2.3522, 48.8566}}

type fakeGeocoder struct {
	calls int
	err   error
}

func (f *fakeGeocoder) Forward(_ context.Context, query string) (domain.Geometry, error) {
	f.calls++
	if f.err != nil {
		return domain.Geometry{}, f.err
	}
	if strings.EqualFold(query, "atlantis") {
		return domain.Geometry{}, geocoding.ErrNoMatch
	}
	return paris, nil
}

type fakeImages struct {
	uploaded  []string
	deleted   []string
	err       error
	deleteErr error
}

func (f *fakeImages) UploadImage(_ context.Context, img storage.Image) (storage.Object, error) {
	if f.err != nil {
		return storage.Object{}, f.err
	}
	key := "images/" + img.Filename
	f.uploaded = append(f.uploaded, key)
	return storage.Object{Key: key, URL: "https://cdn.example.com/" + key}, nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

type testEnv struct {
	store       *repository.Store
	tokens      *auth.TokenService
	geocoder    *fakeGeocoder
	images      *fakeImages
	logs        *logtest.Hook
	students    PrincipalService
	instructors PrincipalService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := sqlite.NewStore(db)
	require.NoError(t, store.Init(context.Background()))

	hasher, err := auth.NewBcryptHasher(4)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService("test-secret", 0)
	require.NoError(t, err)

	logger, logs := logtest.NewNullLogger()
	env := &testEnv{
		store:    store,
		tokens:   tokens,
		geocoder: &fakeGeocoder{},
		images:   &fakeImages{},
		logs:     logs,
	}
	deps := PrincipalDeps{Hasher: hasher, Tokens: tokens, Geocoder: env.geocoder, Images: env.images, Logger: logger}
	env.students = NewPrincipalService(domain.RoleStudent, store.Students, deps)
	env.instructors = NewPrincipalService(domain.RoleInstructor, store.Instructors, deps)
	return env
}

func validRegistration(email string) RegisterInput {
	return RegisterInput{
		Email:     email,
		Password:  "s3cret",
		FullName:  "Ada Lovelace",
		BirthDate: "1990-12-10",
		Location:  "Paris",
	}
}

func TestRegister_MissingFieldOrder(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input RegisterInput
		want  string
	}{
		{"everything missing", RegisterInput{}, "Email is required"},
		{"email only", RegisterInput{Email: "a@x.com"}, "Password is required"},
		{"no full name", RegisterInput{Email: "a@x.com", Password: "p", Location: "Paris"}, "Full Name is required"},
		{"no birth date", RegisterInput{Email: "a@x.com", Password: "p", FullName: "A", Location: "Paris"}, "Birth Date is required"},
		{"no location", RegisterInput{Email: "a@x.com", Password: "p", FullName: "A", BirthDate: "2000-01-01"}, "Location is required"},
		{"blank email", RegisterInput{Email: "   ", Password: "p"}, "Email is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.students.Register(context.Background(), tt.input, nil)
			require.Error(t, err)
			appErr := apperr.From(err)
			assert.Equal(t, apperr.KindMissingField, appErr.Kind)
			assert.Equal(t, tt.want, appErr.Message)
		})
	}
	assert.Zero(t, env.geocoder.calls)
}

func TestRegister_InvalidBirthDate(t *testing.T) {
	env := newTestEnv(t)

	input := validRegistration("a@x.com")
	input.BirthDate = "yesterday"
	_, err := env.students.Register(context.Background(), input, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindFieldConstraint, apperr.KindOf(err))
	assert.Equal(t, "birthDate must be a valid date", apperr.From(err).Message)
}

func TestRegister_StoresGeocodedPrincipal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	input := validRegistration("ada@example.com")
	input.Bio = "maths"
	input.ProfilePicture = "https://example.com/ada.png"
	created, err := env.instructors.Register(ctx, input, nil)
	require.NoError(t, err)
	assert.Empty(t, created.PasswordHash)
	assert.Equal(t, domain.RoleInstructor, created.Role)

	stored, err := env.store.Instructors.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, paris, stored.Geometry)
	assert.Equal(t, "https://example.com/ada.png", stored.ProfilePicture)
	assert.Equal(t, time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC), stored.BirthDate.UTC())
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2a$"))
}

func TestRegister_UploadedImageBecomesProfilePicture(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	input := validRegistration("img@example.com")
	input.ProfilePicture = "https://example.com/ignored.png"
	_, err := env.students.Register(ctx, input, &storage.Image{Filename: "me.png", Body: strings.NewReader("png")})
	require.NoError(t, err)

	stored, err := env.store.Students.GetByEmail(ctx, "img@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/me.png", stored.ProfilePicture)
	assert.Empty(t, env.images.deleted)
}

func TestRegister_FailureRemovesUploadedImage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	input := validRegistration("lost@example.com")
	input.Location = "Atlantis"
	_, err := env.students.Register(ctx, input, &storage.Image{Filename: "me.png", Body: strings.NewReader("png")})
	require.Error(t, err)
	assert.Equal(t, apperr.KindLocationNotFound, apperr.KindOf(err))
	assert.Equal(t, []string{"images/me.png"}, env.images.deleted)

	_, err = env.store.Students.GetByEmail(ctx, "lost@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegister_FailedCleanupIsLogged(t *testing.T) {
	env := newTestEnv(t)
	env.images.deleteErr = errors.New("access denied")

	input := validRegistration("lost@example.com")
	input.Location = "Atlantis"
	_, err := env.students.Register(context.Background(), input, &storage.Image{Filename: "me.png", Body: strings.NewReader("png")})
	require.Error(t, err)
	assert.Equal(t, apperr.KindLocationNotFound, apperr.KindOf(err))

	entry := env.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "images/me.png", entry.Data["key"])
}

func TestRegister_PasswordTooLong(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	input := validRegistration("long@example.com")
	input.Password = strings.Repeat("p", 80)
	_, err := env.students.Register(ctx, input, &storage.Image{Filename: "me.png", Body: strings.NewReader("png")})
	require.Error(t, err)
	appErr := apperr.From(err)
	assert.Equal(t, apperr.KindFieldConstraint, appErr.Kind)
	assert.Equal(t, "password must be at most 72 bytes", appErr.Message)
	assert.Empty(t, env.images.uploaded)
	assert.Zero(t, env.geocoder.calls)

	input.Password = strings.Repeat("p", 72)
	_, err = env.students.Register(ctx, input, nil)
	require.NoError(t, err)
}

func TestRegister_UploadFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.images.err = errors.New("bucket unavailable")

	_, err := env.students.Register(ctx, validRegistration("a@x.com"), &storage.Image{Filename: "me.png", Body: strings.NewReader("png")})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Zero(t, env.geocoder.calls)

	_, err = env.store.Students.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegister_GeocoderFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	env.geocoder.err = errors.New("timeout")

	_, err := env.students.Register(context.Background(), validRegistration("a@x.com"), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.students.Register(context.Background(), validRegistration("dup@example.com"), nil)
	require.NoError(t, err)

	_, err = env.students.Register(context.Background(), validRegistration("dup@example.com"), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindDuplicateEmail, apperr.KindOf(err))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.instructors.Register(ctx, validRegistration("ada@example.com"), nil)
	require.NoError(t, err)

	session, err := env.instructors.Authenticate(ctx, LoginInput{Email: "ada@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, paris, session.Principal.Geometry)
	assert.Empty(t, session.Principal.PasswordHash)

	claims, err := env.tokens.Verify(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.Principal.ID, claims.ID)
	assert.Equal(t, domain.RoleInstructor, claims.Role)
}

func TestAuthenticate_Failures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.students.Register(ctx, validRegistration("grace@example.com"), nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		svc      PrincipalService
		input    LoginInput
		wantKind apperr.Kind
		wantMsg  string
	}{
		{"missing email", env.students, LoginInput{Password: "x"}, apperr.KindMissingField, "Email is required"},
		{"missing password", env.students, LoginInput{Email: "grace@example.com"}, apperr.KindMissingField, "Password is required"},
		{"unknown email", env.students, LoginInput{Email: "nobody@example.com", Password: "s3cret"}, apperr.KindInvalidCredentials, "Invalid email or password"},
		{"wrong password", env.students, LoginInput{Email: "grace@example.com", Password: "nope"}, apperr.KindInvalidCredentials, "Invalid email or password"},
		{"other role", env.instructors, LoginInput{Email: "grace@example.com", Password: "s3cret"}, apperr.KindInvalidCredentials, "Invalid email or password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Authenticate(ctx, tt.input)
			require.Error(t, err)
			appErr := apperr.From(err)
			assert.Equal(t, tt.wantKind, appErr.Kind)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func seedInstructorWithCourse(t *testing.T, env *testEnv) (instructorID, categoryID, courseID int64) {
	t.Helper()
	ctx := context.Background()

	instructor, err := env.instructors.Register(ctx, validRegistration("teach@example.com"), nil)
	require.NoError(t, err)
	categoryID, err = env.store.Categories.Ensure(ctx, "Music")
	require.NoError(t, err)

	course, err := NewCourseService(env.store.Courses).CreateCourse(ctx, instructor.ID, CourseInput{
		Name:       "Piano 101",
		Price:      150000,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return instructor.ID, categoryID, course.ID
}

func TestDirectoryService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	instructorID, _, _ := seedInstructorWithCourse(t, env)

	student, err := env.students.Register(ctx, validRegistration("learn@example.com"), nil)
	require.NoError(t, err)
	_, err = env.store.Schedules.Create(ctx, &domain.Schedule{
		Time:         time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		InstructorID: instructorID,
		StudentID:    student.ID,
	})
	require.NoError(t, err)

	dir := NewDirectoryService(env.store)

	list, err := dir.ListInstructors(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Instructor.PasswordHash)
	require.Len(t, list[0].Courses, 1)
	assert.Equal(t, "Piano 101", list[0].Courses[0].Name)
	assert.Nil(t, list[0].Schedules)

	profile, err := dir.GetInstructor(ctx, instructorID)
	require.NoError(t, err)
	assert.Equal(t, "Music", profile.Courses[0].CategoryName)
	require.Len(t, profile.Schedules, 1)
	assert.Equal(t, "Ada Lovelace", profile.Schedules[0].Student.FullName)

	for _, id := range []int64{instructorID + 1, 0, -3} {
		_, err = dir.GetInstructor(ctx, id)
		require.Error(t, err)
		assert.Equal(t, "Instructor not found", apperr.From(err).Message)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	}
}

func TestCourseService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	instructorID, categoryID, courseID := seedInstructorWithCourse(t, env)
	courses := NewCourseService(env.store.Courses)

	got, err := courses.GetCourse(ctx, courseID)
	require.NoError(t, err)
	assert.Equal(t, instructorID, got.InstructorID)
	require.NotNil(t, got.Instructor)
	assert.Equal(t, "Ada Lovelace", got.Instructor.FullName)

	_, err = courses.GetCourse(ctx, courseID+1)
	assert.Equal(t, "Course not found", apperr.From(err).Message)

	byCategory, err := courses.ListByCategory(ctx, categoryID)
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	empty, err := env.store.Categories.Ensure(ctx, "Art")
	require.NoError(t, err)
	_, err = courses.ListByCategory(ctx, empty)
	assert.Equal(t, apperr.KindNoContentInCategory, apperr.KindOf(err))
	_, err = courses.ListByCategory(ctx, 0)
	assert.Equal(t, apperr.KindNoContentInCategory, apperr.KindOf(err))

	all, err := courses.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCourseService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	instructorID, categoryID, _ := seedInstructorWithCourse(t, env)
	courses := NewCourseService(env.store.Courses)

	tests := []struct {
		name  string
		input CourseInput
		want  string
	}{
		{"no name", CourseInput{CategoryID: categoryID}, "name is required"},
		{"no category", CourseInput{Name: "Guitar"}, "CategoryId is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := courses.CreateCourse(ctx, instructorID, tt.input)
			require.Error(t, err)
			assert.Equal(t, apperr.KindFieldConstraint, apperr.KindOf(err))
			assert.Equal(t, tt.want, apperr.From(err).Message)
		})
	}

	_, err := courses.CreateCourse(ctx, instructorID, CourseInput{Name: "Guitar", CategoryID: categoryID + 50})
	assert.Equal(t, apperr.KindFieldConstraint, apperr.KindOf(err))
}
