package routes

import (
	"learnity/backend/config"
	"learnity/backend/controllers"
	"learnity/backend/middleware"
	"learnity/backend/models"
	"learnity/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, svc *services.Services) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, cfg)
	optionalAuth := middleware.OptionalAuth(db, cfg)
	adminMiddleware := middleware.AdminMiddleware()
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	teacherOnly := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, svc)
	api.Post("/auth/register", authController.Register)
	api.Post("/auth/login", authController.Login)
	api.Get("/auth/me", authMiddleware, authController.Me)

	// User routes
	userController := controllers.NewUserController(db, cfg, svc)
	api.Get("/user/profile", authMiddleware, userController.GetProfile)
	api.Put("/user/profile", authMiddleware, userController.UpdateProfile)
	api.Get("/teachers", userController.ListTeachers)
	api.Get("/teachers/:id", userController.GetTeacher)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg, svc)
	enrollmentController := controllers.NewEnrollmentController(db, cfg, svc)
	progressController := controllers.NewProgressController(db, cfg, svc)
	reviewController := controllers.NewReviewController(db, cfg, svc)
	liveController := controllers.NewLiveController(db, cfg, svc)

	courses := api.Group("/courses")
	courses.Get("/", coursesController.GetCourses)
	courses.Get("/:id/reviews", reviewController.GetCourseReviews)
	courses.Get("/:id/progress", authMiddleware, progressController.CourseProgress)
	courses.Get("/:id/live", authMiddleware, liveController.Upcoming)
	courses.Post("/:id/enroll", authMiddleware, studentOnly, enrollmentController.Enroll)
	courses.Post("/:id/reviews", authMiddleware, studentOnly, reviewController.CreateReview)
	courses.Get("/:id", optionalAuth, coursesController.GetCourse)

	api.Get("/enrollments", authMiddleware, enrollmentController.MyEnrollments)

	// Progress routes
	api.Post("/lessons/:id/progress", authMiddleware, progressController.RecordWatch)
	api.Post("/lessons/:id/complete", authMiddleware, progressController.CompleteLesson)
	api.Get("/certificates", authMiddleware, progressController.MyCertificates)
	api.Get("/certificates/verify/:number", progressController.VerifyCertificate)

	// Reviews routes
	api.Put("/reviews/:id", authMiddleware, reviewController.UpdateReview)
	api.Delete("/reviews/:id", authMiddleware, reviewController.DeleteReview)

	// Quiz routes
	quizController := controllers.NewQuizController(db, cfg, svc)
	quizzes := api.Group("/quizzes", authMiddleware)
	quizzes.Get("/:id", quizController.GetQuiz)
	quizzes.Post("/:id/attempts", quizController.SubmitAttempt)
	quizzes.Get("/:id/attempts", quizController.MyAttempts)

	// Gamification routes
	gamificationController := controllers.NewGamificationController(db, cfg, svc)
	api.Get("/gamification/me", authMiddleware, gamificationController.Me)
	api.Get("/badges", gamificationController.Badges)
	api.Get("/leaderboard", gamificationController.Leaderboard)

	// Wallet routes
	walletController := controllers.NewWalletController(db, cfg, svc)
	wallet := api.Group("/wallet", authMiddleware)
	wallet.Get("/", walletController.GetWallet)
	wallet.Get("/transactions", walletController.GetTransactions)
	wallet.Post("/topup", walletController.TopUp)

	// Tutoring session routes
	sessionController := controllers.NewSessionController(db, cfg, svc)
	sessions := api.Group("/sessions", authMiddleware)
	sessions.Post("/", studentOnly, sessionController.BookSession)
	sessions.Get("/", sessionController.ListSessions)
	sessions.Get("/:id", sessionController.GetSession())
	sessions.Post("/:id/accept", teacherOnly, sessionController.Accept())
	sessions.Post("/:id/decline", teacherOnly, sessionController.Decline())
	sessions.Post("/:id/cancel", sessionController.Cancel())
	sessions.Post("/:id/complete", teacherOnly, sessionController.Complete())

	// Live session routes
	api.Get("/live/:id/join", authMiddleware, liveController.Join)

	// Messaging routes
	messageController := controllers.NewMessageController(db, cfg, svc)
	api.Post("/messages", authMiddleware, messageController.Send)
	api.Get("/conversations", authMiddleware, messageController.Conversations)
	api.Get("/conversations/:id/messages", authMiddleware, messageController.Messages)
	api.Post("/conversations/:id/read", authMiddleware, messageController.MarkRead)

	// Dashboard routes
	dashboardController := controllers.NewDashboardController(db, cfg, svc)
	api.Get("/dashboard/student", authMiddleware, studentOnly, dashboardController.StudentDashboard)
	api.Get("/dashboard/teacher", authMiddleware, teacherOnly, dashboardController.TeacherDashboard)

	// Teacher routes
	analyticsController := controllers.NewAnalyticsController(db, cfg, svc)
	// Guards are per route: group middleware on /teacher would also match /teachers.
	teacher := api.Group("/teacher")
	teacher.Get("/courses", authMiddleware, teacherOnly, coursesController.GetTeacherCourses)
	teacher.Post("/courses", authMiddleware, teacherOnly, coursesController.CreateCourse)
	teacher.Put("/courses/:id", authMiddleware, teacherOnly, coursesController.UpdateCourse)
	teacher.Delete("/courses/:id", authMiddleware, teacherOnly, coursesController.DeleteCourse)
	teacher.Post("/courses/:id/publish", authMiddleware, teacherOnly, coursesController.PublishCourse)
	teacher.Post("/courses/:id/archive", authMiddleware, teacherOnly, coursesController.ArchiveCourse)
	teacher.Get("/courses/:id/analytics", authMiddleware, teacherOnly, analyticsController.GetCourseAnalytics)
	teacher.Post("/courses/:id/sections", authMiddleware, teacherOnly, coursesController.CreateSection)
	teacher.Put("/sections/:id", authMiddleware, teacherOnly, coursesController.UpdateSection)
	teacher.Delete("/sections/:id", authMiddleware, teacherOnly, coursesController.DeleteSection)
	teacher.Post("/sections/:id/lessons", authMiddleware, teacherOnly, coursesController.CreateLesson)
	teacher.Put("/lessons/:id", authMiddleware, teacherOnly, coursesController.UpdateLesson)
	teacher.Delete("/lessons/:id", authMiddleware, teacherOnly, coursesController.DeleteLesson)
	teacher.Post("/courses/:id/quizzes", authMiddleware, teacherOnly, quizController.CreateQuiz)
	teacher.Put("/quizzes/:id", authMiddleware, teacherOnly, quizController.UpdateQuiz)
	teacher.Post("/quizzes/:id/questions", authMiddleware, teacherOnly, quizController.AddQuestion)
	teacher.Put("/questions/:id", authMiddleware, teacherOnly, quizController.UpdateQuestion)
	teacher.Delete("/questions/:id", authMiddleware, teacherOnly, quizController.DeleteQuestion)
	teacher.Post("/courses/:id/live", authMiddleware, teacherOnly, liveController.ScheduleLive)
	teacher.Delete("/live/:id", authMiddleware, teacherOnly, liveController.Cancel)

	// Admin routes
	adminController := controllers.NewAdminController(db, cfg, svc)
	admin := api.Group("/admin", authMiddleware, adminMiddleware)
	admin.Get("/teacher-applications", adminController.GetApplications)
	admin.Post("/teacher-applications/:id/approve", adminController.ApproveApplication)
	admin.Post("/teacher-applications/:id/reject", adminController.RejectApplication)
	admin.Get("/users", adminController.GetUsers)
	admin.Post("/users/:id/suspend", adminController.SuspendUser())
	admin.Post("/users/:id/activate", adminController.ActivateUser())
	admin.Get("/audit-logs", adminController.GetAuditLogs)
	admin.Get("/security-events", adminController.GetSecurityEvents)
	admin.Get("/stats", adminController.GetStats)
}
