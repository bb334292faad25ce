package routes

import (
	"academia_go/controllers"
	"academia_go/middleware"
	"academia_go/storage"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, archive *storage.Service) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	teacherController := &controllers.TeacherController{}
	studentController := &controllers.StudentController{}
	subjectController := &controllers.SubjectController{}
	classroomController := &controllers.ClassroomController{}
	sessionController := &controllers.CourseSessionController{}
	enrollmentController := &controllers.EnrollmentController{}
	dashboardController := &controllers.DashboardController{}
	healthController := &controllers.HealthController{}
	attendanceController := controllers.NewAttendanceController(archive)
	notificationController := controllers.NewNotificationController()
	logController := controllers.NewLogController(archive)

	// Health check (no authentication)
	app.Get("/health", healthController.Health)

	// API group
	api := app.Group("/api")
	api.Get("/health", healthController.Health)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)
	protected.Post("/auth/logout", authController.Logout)

	// User management (admin only)
	users := protected.Group("/users", middleware.RequireAdmin())
	users.Get("/", userController.GetUsers)
	users.Get("/:id", userController.GetUser)
	users.Post("/", authController.Register)
	users.Put("/:id", userController.UpdateUser)
	users.Delete("/:id", userController.DeleteUser)

	// Teacher directory
	teachers := protected.Group("/teachers")
	teachers.Get("/", teacherController.GetTeachers)
	teachers.Get("/:id", teacherController.GetTeacher)
	teachers.Post("/", middleware.RequireAdmin(), teacherController.CreateTeacher)
	teachers.Put("/:id", middleware.RequireAdmin(), teacherController.UpdateTeacher)
	teachers.Delete("/:id", middleware.RequireAdmin(), teacherController.DeleteTeacher)

	// Student directory
	students := protected.Group("/students")
	students.Get("/", studentController.GetStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Post("/", middleware.RequireAdmin(), studentController.CreateStudent)
	students.Put("/:id", middleware.RequireAdmin(), studentController.UpdateStudent)
	students.Delete("/:id", middleware.RequireAdmin(), studentController.DeleteStudent)

	// Subjects
	subjects := protected.Group("/subjects")
	subjects.Get("/", subjectController.GetSubjects)
	subjects.Get("/:id", subjectController.GetSubject)
	subjects.Post("/", middleware.RequireAdmin(), subjectController.CreateSubject)
	subjects.Put("/:id", middleware.RequireAdmin(), subjectController.UpdateSubject)
	subjects.Delete("/:id", middleware.RequireAdmin(), subjectController.DeleteSubject)

	// Classrooms
	classrooms := protected.Group("/classrooms")
	classrooms.Get("/", classroomController.GetClassrooms)
	classrooms.Get("/:id", classroomController.GetClassroom)
	classrooms.Post("/", middleware.RequireAdmin(), classroomController.CreateClassroom)
	classrooms.Put("/:id", middleware.RequireAdmin(), classroomController.UpdateClassroom)
	classrooms.Delete("/:id", middleware.RequireAdmin(), classroomController.DeleteClassroom)

	// Course sessions
	sessions := protected.Group("/course-sessions")
	sessions.Get("/", sessionController.GetCourseSessions)
	sessions.Get("/mine", sessionController.GetMyCourseSessions)
	sessions.Get("/:id", sessionController.GetCourseSession)
	sessions.Post("/", middleware.RequireAdmin(), sessionController.CreateCourseSession)
	sessions.Put("/:id", middleware.RequireAdmin(), sessionController.UpdateCourseSession)
	sessions.Delete("/:id", middleware.RequireAdmin(), sessionController.DeleteCourseSession)

	// Enrollments
	enrollments := protected.Group("/enrollments")
	enrollments.Get("/session/:course_session_id", enrollmentController.GetEnrollmentsBySession)
	enrollments.Get("/student/:student_id", enrollmentController.GetEnrollmentsByStudent)
	enrollments.Post("/", middleware.RequireAdmin(), enrollmentController.Enroll)
	enrollments.Post("/bulk", middleware.RequireAdmin(), enrollmentController.BulkEnroll)
	enrollments.Put("/:id/withdraw", middleware.RequireAdmin(), enrollmentController.Withdraw)

	// Attendance recording and statistics
	att := protected.Group("/attendance", middleware.RequireTeacherOrAdmin())
	att.Get("/sheet", attendanceController.GetSheet)
	att.Post("/", attendanceController.Submit)
	att.Get("/history/session/:course_session_id", attendanceController.GetSessionHistory)
	att.Get("/history/student/:student_id", attendanceController.GetStudentHistory)
	att.Get("/stats/course/:course_session_id", attendanceController.GetCourseStats)
	att.Get("/stats/student/:student_id", attendanceController.GetStudentStats)
	att.Get("/export/:course_session_id", attendanceController.ExportCourseReport)
	att.Post("/reconcile", middleware.RequireAdmin(), attendanceController.Reconcile)

	// Dashboard (admin only)
	protected.Get("/dashboard", middleware.RequireAdmin(), dashboardController.GetDashboard)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Put("/:id/read", notificationController.MarkRead)
	notifications.Put("/read-all", notificationController.MarkAllRead)

	// Activity logs (admin only)
	logs := protected.Group("/logs", middleware.RequireAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Post("/flush", logController.FlushLogs)
	logs.Get("/archives", logController.GetArchives)
	logs.Get("/archives/:id/download", logController.DownloadArchive)
}
