package domain

import "time"

// Category groups courses. It is reference data loaded by the seeder.
type Category struct {
	ID   int64
	Name string
}

// Course is a class published by an instructor.
type Course struct {
	ID           int64
	Name         string
	Detail       string
	Price        int64
	ImgURL       string
	Type         string
	Level        string
	CategoryID   int64
	InstructorID int64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated by joined reads only.
	CategoryName string
	Instructor   *PrincipalSummary
}

// Schedule books a student into one of an instructor's time slots.
type Schedule struct {
	ID           int64
	Time         time.Time
	InstructorID int64
	StudentID    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated by joined reads only.
	Student *PrincipalSummary
}

// InstructorProfile aggregates an instructor with the associations shown on
// directory pages.
type InstructorProfile struct {
	Instructor Principal
	Courses    []Course
	Schedules  []Schedule
}
