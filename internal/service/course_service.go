package service

import (
	"context"
	"errors"
	"strings"

	"course-market/internal/apperr"
	"course-market/internal/domain"
	"course-market/internal/repository"
)

const msgCourseNotFound = "Course not found"

// CourseInput is what an instructor may set on a new course. The owner is
// never part of it.
type CourseInput struct {
	Name       string `validate:"required" message:"name is required"`
	Detail     string
	Price      int64
	ImgURL     string
	Type       string
	CategoryID int64 `validate:"required" message:"CategoryId is required"`
	Level      string
}

// CourseService coordinates course catalogue operations.
type CourseService interface {
	ListCourses(ctx context.Context) ([]domain.Course, error)
	GetCourse(ctx context.Context, id int64) (*domain.Course, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.Course, error)
	CreateCourse(ctx context.Context, instructorID int64, input CourseInput) (*domain.Course, error)
}

type courseService struct {
	courses repository.CourseRepository
}

func NewCourseService(courses repository.CourseRepository) CourseService {
	return &courseService{courses: courses}
}

func (s *courseService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.courses.List(ctx)
}

func (s *courseService) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	if id <= 0 {
		return nil, apperr.NotFound(msgCourseNotFound)
	}
	course, err := s.courses.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgCourseNotFound)
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Course, error) {
	if categoryID <= 0 {
		return nil, apperr.NoContentInCategory()
	}
	courses, err := s.courses.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, apperr.NoContentInCategory()
	}
	return courses, nil
}

func (s *courseService) CreateCourse(ctx context.Context, instructorID int64, input CourseInput) (*domain.Course, error) {
	input.Name = strings.TrimSpace(input.Name)

	msg, err := firstViolation(input)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return nil, apperr.FieldConstraint(msg, nil)
	}

	course := &domain.Course{
		Name:         input.Name,
		Detail:       input.Detail,
		Price:        input.Price,
		ImgURL:       input.ImgURL,
		Type:         input.Type,
		Level:        input.Level,
		CategoryID:   input.CategoryID,
		InstructorID: instructorID,
	}
	if _, err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}
