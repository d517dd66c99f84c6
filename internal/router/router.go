package router

import (
	"net/http"
	"time"

	"github.com/chasfatacademy/exam-backend/internal/config"
	"github.com/chasfatacademy/exam-backend/internal/handler"
	"github.com/chasfatacademy/exam-backend/internal/middleware"
	"github.com/chasfatacademy/exam-backend/internal/response"
	"github.com/chasfatacademy/exam-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	Session       *handler.SessionHandler
	Exam          *handler.ExamHandler
	Course        *handler.CourseHandler
	StudentMgmt   *handler.StudentManagementHandler
	WS            *handler.WSHandler
}

// Setup builds the Gin engine with all middleware and routes mounted.
func Setup(cfg *config.Config, authService *service.AuthService, h Handlers) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(response.RequestIDMiddleware())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		// Dev default. Credentials cannot be combined with a wildcard origin.
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.Brotli())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/student/login", loginLimiter.Middleware(), h.Auth.StudentLogin)
		auth.POST("/examiner/login", loginLimiter.Middleware(), h.Auth.ExaminerLogin)
		auth.POST("/student/logout",
			middleware.RequireStudentJWT(authService), h.Auth.StudentLogout)
	}

	student := api.Group("/student")
	student.Use(middleware.RequireStudentJWT(authService))
	student.Use(middleware.CheckSingleDeviceLogin(authService))
	{
		student.GET("/profile", h.StudentPortal.Profile)
		student.GET("/exams", h.StudentPortal.Lobby)
		student.POST("/exams/:exam_id/validate", h.StudentPortal.ValidateAccess)

		sessions := student.Group("/sessions/:session_id")
		{
			sessions.GET("", h.Session.Get)
			sessions.POST("/start", h.Session.Start)
			sessions.GET("/time", h.Session.Time)
			sessions.PUT("/answers", h.Session.SaveAnswer)
			sessions.PUT("/answers/batch", h.Session.SaveAnswerBatch)
			sessions.GET("/answers", h.Session.ListAnswers)
			sessions.POST("/submit", h.Session.Submit)
			sessions.POST("/auto-submit", h.Session.AutoSubmit)
			sessions.GET("/result", h.Session.Result)
		}
	}

	// WebSocket auth rides the query string because browsers cannot set
	// headers on the upgrade request.
	wsGroup := r.Group("/ws/v1/student")
	wsGroup.Use(middleware.RequireStudentWSAuth(authService))
	wsGroup.Use(middleware.CheckSingleDeviceLogin(authService))
	{
		wsGroup.GET("/sessions/:session_id/stream", h.WS.SessionStream)
	}

	examiner := api.Group("/examiner")
	examiner.Use(middleware.RequireExaminerJWT(authService))
	{
		examiner.GET("/me", h.Auth.ExaminerProfile)

		examiner.POST("/courses", h.Course.Create)
		examiner.GET("/courses", h.Course.List)
		examiner.POST("/courses/:course_id/students", h.Course.Enroll)
		examiner.GET("/courses/:course_id/students", h.Course.ListEnrolled)

		examiner.POST("/exams", h.Exam.Create)
		examiner.GET("/exams", h.Exam.List)
		examiner.GET("/exams/:exam_id", h.Exam.Get)
		examiner.PUT("/exams/:exam_id", h.Exam.Update)
		examiner.POST("/exams/:exam_id/publish", h.Exam.Publish)
		examiner.POST("/exams/:exam_id/archive", h.Exam.Archive)
		examiner.POST("/exams/:exam_id/questions", h.Exam.AddQuestion)
		examiner.PUT("/exams/:exam_id/questions", h.Exam.ReplaceQuestions)
		examiner.GET("/exams/:exam_id/questions", h.Exam.ListQuestions)
		examiner.GET("/exams/:exam_id/results", h.Exam.Results)

		examiner.POST("/students", h.StudentMgmt.Create)
		examiner.GET("/students", h.StudentMgmt.List)
		examiner.POST("/students/:student_id/deactivate", h.StudentMgmt.Deactivate)
		examiner.POST("/students/:student_id/activate", h.StudentMgmt.Activate)
		examiner.POST("/students/:student_id/reset-login", h.StudentMgmt.ResetLogin)
	}

	return r
}
