package service

import (
	"context"
	"errors"

	"course-market/internal/apperr"
	"course-market/internal/domain"
	"course-market/internal/repository"
)

const msgInstructorNotFound = "Instructor not found"

// DirectoryService assembles instructor listings and profile pages.
type DirectoryService interface {
	ListInstructors(ctx context.Context) ([]domain.InstructorProfile, error)
	GetInstructor(ctx context.Context, id int64) (*domain.InstructorProfile, error)
}

type directoryService struct {
	instructors repository.PrincipalRepository
	courses     repository.CourseRepository
	schedules   repository.ScheduleRepository
}

func NewDirectoryService(store *repository.Store) DirectoryService {
	return &directoryService{
		instructors: store.Instructors,
		courses:     store.Courses,
		schedules:   store.Schedules,
	}
}

func (s *directoryService) ListInstructors(ctx context.Context) ([]domain.InstructorProfile, error) {
	instructors, err := s.instructors.List(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.InstructorProfile, 0, len(instructors))
	for i := range instructors {
		courses, err := s.courses.ListByInstructor(ctx, instructors[i].ID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, domain.InstructorProfile{
			Instructor: *sanitizePrincipal(&instructors[i]),
			Courses:    courses,
		})
	}
	return profiles, nil
}

func (s *directoryService) GetInstructor(ctx context.Context, id int64) (*domain.InstructorProfile, error) {
	if id <= 0 {
		return nil, apperr.NotFound(msgInstructorNotFound)
	}

	instructor, err := s.instructors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgInstructorNotFound)
		}
		return nil, err
	}

	courses, err := s.courses.ListByInstructor(ctx, id)
	if err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListByInstructor(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.InstructorProfile{
		Instructor: *sanitizePrincipal(instructor),
		Courses:    courses,
		Schedules:  schedules,
	}, nil
}
