package http

import (
	"time"

	"course-market/internal/domain"
)

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	Location    domain.Geometry `json:"location"`
	Role        domain.Role     `json:"role"`
	Email       string          `json:"email"`
}

type categoryResponse struct {
	Name string `json:"name"`
}

type instructorSummaryResponse struct {
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture"`
	Location       string `json:"location"`
}

type studentSummaryResponse struct {
	FullName string `json:"fullName"`
	Location string `json:"location"`
}

type instructorCourseResponse struct {
	Name       string            `json:"name"`
	Detail     string            `json:"detail"`
	Price      int64             `json:"price"`
	ImgURL     string            `json:"imgUrl"`
	Type       string            `json:"type"`
	CategoryID int64             `json:"CategoryId"`
	Level      string            `json:"level"`
	Category   *categoryResponse `json:"Category,omitempty"`
}

type scheduleResponse struct {
	Time    time.Time               `json:"time"`
	Student *studentSummaryResponse `json:"Student"`
}

type instructorResponse struct {
	ID             int64                      `json:"id"`
	Role           domain.Role                `json:"role"`
	FullName       string                     `json:"fullName"`
	Bio            string                     `json:"bio"`
	ProfilePicture string                     `json:"profilePicture"`
	Location       string                     `json:"location"`
	PhoneNumber    string                     `json:"phoneNumber"`
	Email          string                     `json:"email"`
	Geometry       domain.Geometry            `json:"geometry"`
	Courses        []instructorCourseResponse `json:"Courses"`
}

type instructorDetailResponse struct {
	instructorResponse
	Schedules []scheduleResponse `json:"Schedules"`
}

type courseResponse struct {
	ID           int64                      `json:"id"`
	Name         string                     `json:"name"`
	Detail       string                     `json:"detail"`
	Price        int64                      `json:"price"`
	ImgURL       string                     `json:"imgUrl"`
	Type         string                     `json:"type"`
	CategoryID   int64                      `json:"CategoryId"`
	InstructorID int64                      `json:"InstructorId"`
	Level        string                     `json:"level"`
	Instructor   *instructorSummaryResponse `json:"Instructor"`
	Category     *categoryResponse          `json:"Category"`
}

type createdCourseResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Detail       string    `json:"detail"`
	Price        int64     `json:"price"`
	ImgURL       string    `json:"imgUrl"`
	Type         string    `json:"type"`
	CategoryID   int64     `json:"CategoryId"`
	InstructorID int64     `json:"InstructorId"`
	Level        string    `json:"level"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func instructorToResponse(profile domain.InstructorProfile, withCategory bool) instructorResponse {
	p := profile.Instructor
	resp := instructorResponse{
		ID:             p.ID,
		Role:           p.Role,
		FullName:       p.FullName,
		Bio:            p.Bio,
		ProfilePicture: p.ProfilePicture,
		Location:       p.Location,
		PhoneNumber:    p.PhoneNumber,
		Email:          p.Email,
		Geometry:       p.Geometry,
		Courses:        make([]instructorCourseResponse, len(profile.Courses)),
	}
	for i, course := range profile.Courses {
		resp.Courses[i] = instructorCourseResponse{
			Name:       course.Name,
			Detail:     course.Detail,
			Price:      course.Price,
			ImgURL:     course.ImgURL,
			Type:       course.Type,
			CategoryID: course.CategoryID,
			Level:      course.Level,
		}
		if withCategory {
			resp.Courses[i].Category = &categoryResponse{Name: course.CategoryName}
		}
	}
	return resp
}

func instructorToDetailResponse(profile domain.InstructorProfile) instructorDetailResponse {
	resp := instructorDetailResponse{
		instructorResponse: instructorToResponse(profile, true),
		Schedules:          make([]scheduleResponse, len(profile.Schedules)),
	}
	for i, schedule := range profile.Schedules {
		resp.Schedules[i] = scheduleResponse{Time: schedule.Time}
		if schedule.Student != nil {
			resp.Schedules[i].Student = &studentSummaryResponse{
				FullName: schedule.Student.FullName,
				Location: schedule.Student.Location,
			}
		}
	}
	return resp
}

func courseToResponse(course domain.Course) courseResponse {
	resp := courseResponse{
		ID:           course.ID,
		Name:         course.Name,
		Detail:       course.Detail,
		Price:        course.Price,
		ImgURL:       course.ImgURL,
		Type:         course.Type,
		CategoryID:   course.CategoryID,
		InstructorID: course.InstructorID,
		Level:        course.Level,
		Category:     &categoryResponse{Name: course.CategoryName},
	}
	if course.Instructor != nil {
		resp.Instructor = &instructorSummaryResponse{
			FullName:       course.Instructor.FullName,
			ProfilePicture: course.Instructor.ProfilePicture,
			Location:       course.Instructor.Location,
		}
	}
	return resp
}

func coursesToResponse(courses []domain.Course) []courseResponse {
	resp := make([]courseResponse, len(courses))
	for i := range courses {
		resp[i] = courseToResponse(courses[i])
	}
	return resp
}

func createdCourseToResponse(course domain.Course) createdCourseResponse {
	return createdCourseResponse{
		ID:           course.ID,
		Name:         course.Name,
		Detail:       course.Detail,
		Price:        course.Price,
		ImgURL:       course.ImgURL,
		Type:         course.Type,
		CategoryID:   course.CategoryID,
		InstructorID: course.InstructorID,
		Level:        course.Level,
		CreatedAt:    course.CreatedAt,
		UpdatedAt:    course.UpdatedAt,
	}
}
