package router // package router registers the HTTP routes of the lesson API

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/lesson-scheduler/internal/handler"
	"github.com/iliyamo/lesson-scheduler/internal/middleware"
)

// Deps carries what the routes need.  Limiter may be nil.
type Deps struct {
	Lessons   *handler.LessonHandler
	Catalog   *handler.CatalogHandler
	JWTSecret string
	Limiter   echo.MiddlewareFunc
}

// Use installs the global middleware: one log line per request and, when
// timeout is positive, a deadline on the request context.
func Use(e *echo.Echo, log *zap.Logger, timeout time.Duration) {
	e.Use(middleware.RequestLogger(log))
	if timeout > 0 {
		e.Use(echomw.ContextTimeout(timeout))
	}
}

// RegisterRoutes mounts the health probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI mounts /v1.  Reads are public; every mutation needs a valid
// token, passes the rate limiter and, for catalogs, an admin role.
func RegisterAPI(e *echo.Echo, d Deps) {
	v1 := e.Group("/v1")

	v1.GET("/lessons", d.Lessons.List)
	v1.GET("/students", d.Catalog.ListStudents)
	v1.GET("/teachers", d.Catalog.ListTeachers)
	v1.GET("/timeSlots", d.Catalog.ListTimeSlots)

	guard := []echo.MiddlewareFunc{middleware.JWTAuth(d.JWTSecret), middleware.RequireMutator()}
	if d.Limiter != nil {
		guard = append(guard, d.Limiter)
	}

	v1.POST("/lessons", d.Lessons.Create, guard...)
	v1.PUT("/lessons/:id", d.Lessons.Update, guard...)
	v1.PATCH("/lessons/:id", d.Lessons.Update, guard...)
	v1.DELETE("/lessons/:id", d.Lessons.Delete, guard...)

	admin := append(append([]echo.MiddlewareFunc{}, guard...), middleware.RequireAdmin())

	v1.POST("/students", d.Catalog.CreateStudent, admin...)
	v1.PUT("/students/:id", d.Catalog.UpdateStudent, admin...)
	v1.PATCH("/students/:id", d.Catalog.UpdateStudent, admin...)
	v1.DELETE("/students/:id", d.Catalog.DeleteStudent, admin...)

	v1.POST("/teachers", d.Catalog.CreateTeacher, admin...)
	v1.DELETE("/teachers/:id", d.Catalog.DeleteTeacher, admin...)

	v1.PUT("/timeSlots", d.Catalog.ReplaceTimeSlots, admin...)
}
