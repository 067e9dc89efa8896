package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"course-market/internal/apperr"
	"course-market/internal/auth"
	"course-market/internal/domain"
	"course-market/internal/service"
	"course-market/internal/storage"
)

const imageField = "image"

var registeredMessages = map[domain.Role]string{
	domain.RoleStudent:    "Success create a new student",
	domain.RoleInstructor: "Success create a new instructor!",
}

// TokenVerifier checks access tokens presented by clients.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// Deps are the services the handler routes to. Metrics is optional.
type Deps struct {
	Principals []service.PrincipalService
	Directory  service.DirectoryService
	Courses    service.CourseService
	Tokens     TokenVerifier
	Logger     *logrus.Logger
	Metrics    *Metrics
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	principals map[domain.Role]service.PrincipalService
	order      []domain.Role
	directory  service.DirectoryService
	courses    service.CourseService
	tokens     TokenVerifier
	logger     *logrus.Logger
	metrics    *Metrics
}

func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.New()
	}
	h := &Handler{
		principals: make(map[domain.Role]service.PrincipalService, len(deps.Principals)),
		directory:  deps.Directory,
		courses:    deps.Courses,
		tokens:     deps.Tokens,
		logger:     logger,
		metrics:    deps.Metrics,
	}
	for _, svc := range deps.Principals {
		h.principals[svc.Role()] = svc
		h.order = append(h.order, svc.Role())
	}
	return h
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(recovery(h.logger), requestLogger(h.logger))
	if h.metrics != nil {
		router.Use(h.metrics.middleware())
		router.GET("/metrics", gin.WrapH(h.metrics.handler()))
	}
	router.Use(errorResponder(h.logger))

	for _, role := range h.order {
		svc := h.principals[role]
		group := router.Group("/" + string(role))
		group.POST("/register", h.register(svc))
		group.POST("/login", h.login(svc))
	}

	router.GET("/instructor", h.listInstructors)
	router.GET("/instructor/:id", h.guard(domain.RoleInstructor, h.getInstructor))

	router.GET("/course", h.listCourses)
	router.GET("/course/:id", h.getCourse)
	router.GET("/course/category/:id", h.listCoursesByCategory)
	router.POST("/course", h.guard(domain.RoleInstructor, h.createCourse))

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
}

// Router builds the full HTTP handler with CORS applied.
func (h *Handler) Router() http.Handler {
	router := gin.New()
	h.RegisterRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}

type registerRequest struct {
	Email          string `json:"email" form:"email"`
	Password       string `json:"password" form:"password"`
	FullName       string `json:"fullName" form:"fullName"`
	BirthDate      string `json:"birthDate" form:"birthDate"`
	Location       string `json:"location" form:"location"`
	Bio            string `json:"bio" form:"bio"`
	PhoneNumber    string `json:"phoneNumber" form:"phoneNumber"`
	ProfilePicture string `json:"profilePicture" form:"profilePicture"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type courseRequest struct {
	Name       string `json:"name" form:"name"`
	Detail     string `json:"detail" form:"detail"`
	Price      int64  `json:"price" form:"price"`
	ImgURL     string `json:"imgUrl" form:"imgUrl"`
	Type       string `json:"type" form:"type"`
	CategoryID int64  `json:"CategoryId" form:"CategoryId"`
	Level      string `json:"level" form:"level"`
}

// bindBody accepts JSON, urlencoded and multipart bodies. An empty body
// binds to the zero value so required-field checks report the first field.
func bindBody(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBind(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.FieldConstraint("invalid request body", err)
	}
	return nil
}

func (h *Handler) register(svc service.PrincipalService) gin.HandlerFunc {
	role := svc.Role()
	return func(c *gin.Context) {
		var req registerRequest
		if err := bindBody(c, &req); err != nil {
			fail(c, err)
			return
		}

		image, cleanup, err := formImage(c)
		if err != nil {
			fail(c, err)
			return
		}
		defer cleanup()

		_, err = svc.Register(c.Request.Context(), service.RegisterInput{
			Email:          req.Email,
			Password:       req.Password,
			FullName:       req.FullName,
			BirthDate:      req.BirthDate,
			Location:       req.Location,
			Bio:            req.Bio,
			PhoneNumber:    req.PhoneNumber,
			ProfilePicture: req.ProfilePicture,
		}, image)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, messageResponse{Message: registeredMessages[role]})
	}
}

// formImage opens the optional multipart image. The returned cleanup is
// always safe to call.
func formImage(c *gin.Context) (*storage.Image, func(), error) {
	noop := func() {}
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, noop, nil
	}

	header, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, apperr.FieldConstraint("invalid image upload", err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, err
	}
	return &storage.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func() { file.Close() }, nil
}

func (h *Handler) login(svc service.PrincipalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := bindBody(c, &req); err != nil {
			fail(c, err)
			return
		}

		session, err := svc.Authenticate(c.Request.Context(), service.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, loginResponse{
			AccessToken: session.AccessToken,
			Location:    session.Principal.Geometry,
			Role:        session.Principal.Role,
			Email:       session.Principal.Email,
		})
	}
}

func (h *Handler) listInstructors(c *gin.Context) {
	profiles, err := h.directory.ListInstructors(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	resp := make([]instructorResponse, len(profiles))
	for i := range profiles {
		resp[i] = instructorToResponse(profiles[i], false)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getInstructor(c *gin.Context, _ int64) {
	profile, err := h.directory.GetInstructor(c.Request.Context(), pathID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, instructorToDetailResponse(*profile))
}

func (h *Handler) listCourses(c *gin.Context) {
	courses, err := h.courses.ListCourses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, coursesToResponse(courses))
}

func (h *Handler) getCourse(c *gin.Context) {
	course, err := h.courses.GetCourse(c.Request.Context(), pathID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, courseToResponse(*course))
}

func (h *Handler) listCoursesByCategory(c *gin.Context) {
	courses, err := h.courses.ListByCategory(c.Request.Context(), pathID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, coursesToResponse(courses))
}

func (h *Handler) createCourse(c *gin.Context, instructorID int64) {
	var req courseRequest
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}

	course, err := h.courses.CreateCourse(c.Request.Context(), instructorID, service.CourseInput{
		Name:       req.Name,
		Detail:     req.Detail,
		Price:      req.Price,
		ImgURL:     req.ImgURL,
		Type:       req.Type,
		CategoryID: req.CategoryID,
		Level:      req.Level,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, createdCourseToResponse(*course))
}

// pathID parses the :id parameter. Anything that is not a positive integer
// yields 0, which services treat as a miss.
func pathID(c *gin.Context) int64 {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
