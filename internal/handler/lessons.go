package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/lesson-scheduler/internal/middleware"
	"github.com/iliyamo/lesson-scheduler/internal/model"
	"github.com/iliyamo/lesson-scheduler/internal/schedule"
)

// LessonHandler exposes the scheduler over HTTP.
type LessonHandler struct {
	Scheduler *schedule.Scheduler
	Log       *zap.Logger
}

// NewLessonHandler builds a LessonHandler.
func NewLessonHandler(s *schedule.Scheduler, log *zap.Logger) *LessonHandler {
	return &LessonHandler{Scheduler: s, Log: log}
}

// createdResponse is the default body of POST /v1/lessons.
type createdResponse struct {
	CreatedCount int               `json:"createdCount"`
	Created      []model.Lesson    `json:"created"`
	Outcomes     []schedule.Result `json:"outcomes"`
}

// Create handles POST /v1/lessons.  ?shape=flat returns only the array of
// booked lessons.
func (h *LessonHandler) Create(c echo.Context) error {
	var req schedule.CreateRequest
	if err := bindStrict(c, &req); err != nil {
		return badBody(c, err)
	}
	res, err := h.Scheduler.Create(c.Request().Context(), middleware.IdentityFrom(c), req)
	if err != nil {
		return respond(c, h.Log, err)
	}
	created := res.Created
	if created == nil {
		created = []model.Lesson{}
	}
	if strings.EqualFold(c.QueryParam("shape"), "flat") {
		return c.JSON(http.StatusCreated, created)
	}
	return c.JSON(http.StatusCreated, createdResponse{
		CreatedCount: len(created),
		Created:      created,
		Outcomes:     res.Outcomes,
	})
}

// List handles GET /v1/lessons?date=&from=&to=&teacherId=.
func (h *LessonHandler) List(c echo.Context) error {
	f := schedule.Filter{
		TeacherID: strings.TrimSpace(c.QueryParam("teacherId")),
		Date:      strings.TrimSpace(c.QueryParam("date")),
		From:      strings.TrimSpace(c.QueryParam("from")),
		To:        strings.TrimSpace(c.QueryParam("to")),
	}
	lessons, err := h.Scheduler.List(c.Request().Context(), f)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if lessons == nil {
		lessons = []model.Lesson{}
	}
	return c.JSON(http.StatusOK, lessons)
}

// Update handles PUT and PATCH /v1/lessons/:id as a merge patch.
func (h *LessonHandler) Update(c echo.Context) error {
	var patch model.LessonPatch
	if err := bindStrict(c, &patch); err != nil {
		return badBody(c, err)
	}
	l, err := h.Scheduler.Update(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), patch)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, l)
}

// Delete handles DELETE /v1/lessons/:id and returns the removed lesson.
func (h *LessonHandler) Delete(c echo.Context) error {
	l, err := h.Scheduler.Delete(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, l)
}
