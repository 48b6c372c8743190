package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/lesson-scheduler/internal/middleware"
	"github.com/iliyamo/lesson-scheduler/internal/model"
	"github.com/iliyamo/lesson-scheduler/internal/schedule"
)

// CatalogHandler serves students, teachers and the time slot catalog.
type CatalogHandler struct {
	Catalog *schedule.Catalog
	Log     *zap.Logger
}

// NewCatalogHandler builds a CatalogHandler.
func NewCatalogHandler(cat *schedule.Catalog, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Catalog: cat, Log: log}
}

func (h *CatalogHandler) ListStudents(c echo.Context) error {
	items, err := h.Catalog.Students(c.Request().Context())
	if err != nil {
		return respond(c, h.Log, err)
	}
	if items == nil {
		items = []model.Student{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) CreateStudent(c echo.Context) error {
	var in schedule.NewStudent
	if err := bindStrict(c, &in); err != nil {
		return badBody(c, err)
	}
	s, err := h.Catalog.CreateStudent(c.Request().Context(), middleware.IdentityFrom(c), in)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// UpdateStudent handles PUT and PATCH /v1/students/:id.
func (h *CatalogHandler) UpdateStudent(c echo.Context) error {
	var patch model.StudentPatch
	if err := bindStrict(c, &patch); err != nil {
		return badBody(c, err)
	}
	s, err := h.Catalog.UpdateStudent(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), patch)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *CatalogHandler) DeleteStudent(c echo.Context) error {
	s, err := h.Catalog.DeleteStudent(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *CatalogHandler) ListTeachers(c echo.Context) error {
	items, err := h.Catalog.Teachers(c.Request().Context())
	if err != nil {
		return respond(c, h.Log, err)
	}
	if items == nil {
		items = []model.Teacher{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) CreateTeacher(c echo.Context) error {
	var t model.Teacher
	if err := bindStrict(c, &t); err != nil {
		return badBody(c, err)
	}
	created, err := h.Catalog.CreateTeacher(c.Request().Context(), middleware.IdentityFrom(c), t)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) DeleteTeacher(c echo.Context) error {
	t, err := h.Catalog.DeleteTeacher(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *CatalogHandler) ListTimeSlots(c echo.Context) error {
	slots, err := h.Catalog.TimeSlots(c.Request().Context())
	if err != nil {
		return respond(c, h.Log, err)
	}
	if slots == nil {
		slots = []string{}
	}
	return c.JSON(http.StatusOK, slots)
}

// ReplaceTimeSlots handles PUT /v1/timeSlots.  The body is the full
// ordered array of slot keys.
func (h *CatalogHandler) ReplaceTimeSlots(c echo.Context) error {
	var slots []string
	if err := bindStrict(c, &slots); err != nil {
		return badBody(c, err)
	}
	saved, err := h.Catalog.ReplaceTimeSlots(c.Request().Context(), middleware.IdentityFrom(c), slots)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, saved)
}
