package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/colegio-api/internal/middleware"
	"github.com/noah-isme/colegio-api/internal/models"
)

// Handlers groups every resource handler mounted under the API prefix.
type Handlers struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Subjects  *SubjectHandler
	Grades    *GradeHandler
	Schedules *ScheduleHandler
	Topics    *TopicHandler
	Dashboard *DashboardHandler
	Exports   *ExportHandler
}

// RegisterRoutes mounts the API on api. Every route except login and signed
// export downloads requires a bearer token; role gates are coarse and the
// services refine them per record.
func RegisterRoutes(api *gin.RouterGroup, tokens middleware.TokenValidator, h Handlers) {
	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	staffOrSelf := middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), middleware.Self)

	api.POST("/auth/login", h.Auth.Login)
	if h.Exports != nil {
		api.GET("/exports/:token", h.Exports.Download)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))

	secured.GET("/auth/me", h.Auth.Me)

	users := secured.Group("/users")
	users.GET("", staff, h.Users.List)
	users.POST("", admin, h.Users.Create)
	users.GET("/:id", staffOrSelf, h.Users.Get)
	users.PATCH("/:id", admin, h.Users.Update)
	users.DELETE("/:id", admin, h.Users.Delete)
	users.GET("/:id/subjects", staff, h.Users.Subjects)
	users.PUT("/:id/subjects", admin, h.Users.SetSubjects)
	users.GET("/:id/schedule", staff, h.Users.Schedule)

	subjects := secured.Group("/subjects")
	subjects.GET("", h.Subjects.List)
	subjects.GET("/:id", h.Subjects.Get)
	subjects.POST("", admin, h.Subjects.Create)
	subjects.PATCH("/:id", admin, h.Subjects.Update)
	subjects.DELETE("/:id", admin, h.Subjects.Delete)

	grades := secured.Group("/grades")
	grades.GET("", h.Grades.List)
	grades.GET("/:id", h.Grades.Get)
	grades.POST("", staff, h.Grades.Create)
	grades.PATCH("/:id", staff, h.Grades.Update)
	grades.DELETE("/:id", staff, h.Grades.Delete)

	students := secured.Group("/students/:id")
	students.GET("/grades", h.Grades.StudentGrades)
	students.GET("/report", h.Grades.ReportCard)
	students.GET("/report-card", h.Grades.ExportReportCard)
	students.POST("/report-card/link", h.Grades.PublishReportCard)

	schedules := secured.Group("/schedules")
	schedules.GET("", h.Schedules.List)
	schedules.GET("/timetable", h.Schedules.Timetable)
	schedules.GET("/timetable.ics", h.Schedules.Calendar)
	schedules.GET("/:id", h.Schedules.Get)
	schedules.POST("", admin, h.Schedules.Create)
	schedules.DELETE("/:id", admin, h.Schedules.Delete)

	topics := secured.Group("/topics")
	topics.GET("", h.Topics.List)
	topics.GET("/:id", h.Topics.Get)
	topics.POST("", staff, h.Topics.Create)
	topics.PATCH("/:id", staff, h.Topics.Update)
	topics.DELETE("/:id", staff, h.Topics.Delete)

	dashboard := secured.Group("/dashboard")
	dashboard.GET("/admin", admin, h.Dashboard.Admin)
	dashboard.GET("/teacher/:id", staff, h.Dashboard.Teacher)
	dashboard.GET("/student/:id", h.Dashboard.Student)
}
