package routes

import (
	"sekoly_go/controllers"
	"sekoly_go/middleware"
	"sekoly_go/services"
	"sekoly_go/services/notifications"
	"sekoly_go/storage"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, notifService *notifications.Service, archiveService *services.LogArchiveService, store *storage.StorageService) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	classLevelController := &controllers.ClassLevelController{}
	cashRegisterController := &controllers.CashRegisterController{}
	schoolYearController := controllers.NewSchoolYearController()
	classController := controllers.NewClassController()
	feeObligationController := controllers.NewFeeObligationController()
	paymentController := controllers.NewPaymentController(notifService)
	paymentImportController := controllers.NewPaymentImportController(store)
	enrollmentController := controllers.NewEnrollmentController(notifService)
	notificationController := controllers.NewNotificationController(notifService)
	logController := controllers.NewLogController(archiveService)

	// API group
	api := app.Group("/api")

	api.Get("/health", controllers.HealthCheck)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)

	// User management routes
	users := protected.Group("/users")
	users.Get("/", middleware.RequireStaffOrAdmin(), userController.GetUsers)
	users.Get("/:id", middleware.RequireStaffOrAdmin(), userController.GetUser)
	users.Post("/", middleware.RequireAdmin(), userController.CreateUser)
	users.Put("/:id", middleware.RequireAdmin(), userController.UpdateUser)
	users.Delete("/:id", middleware.RequireAdmin(), userController.DeleteUser)

	// School year routes
	schoolYears := protected.Group("/school-years")
	schoolYears.Get("/", schoolYearController.GetSchoolYears)
	schoolYears.Get("/current", schoolYearController.GetCurrentSchoolYear)
	schoolYears.Get("/:id", schoolYearController.GetSchoolYear)
	schoolYears.Post("/", middleware.RequireAdmin(), schoolYearController.CreateSchoolYear)
	schoolYears.Post("/:id/set-current", middleware.RequireAdmin(), schoolYearController.SetCurrentSchoolYear)

	// Class level routes
	classLevels := protected.Group("/class-levels")
	classLevels.Get("/", classLevelController.GetClassLevels)
	classLevels.Post("/", middleware.RequireAdmin(), classLevelController.CreateClassLevel)
	classLevels.Put("/:id", middleware.RequireAdmin(), classLevelController.UpdateClassLevel)

	// Class routes
	classes := protected.Group("/classes")
	classes.Get("/", classController.GetClasses)
	classes.Get("/school-year/:school_year_id", classController.GetClassesBySchoolYear)
	classes.Get("/:id", classController.GetClass)
	classes.Post("/", middleware.RequireAdmin(), classController.CreateClass)
	classes.Put("/:id", middleware.RequireAdmin(), classController.UpdateClass)

	// Fee catalog routes
	feeObligations := protected.Group("/fee-obligations")
	feeObligations.Get("/", feeObligationController.GetFeeObligations)
	feeObligations.Get("/:id", feeObligationController.GetFeeObligation)
	feeObligations.Post("/", middleware.RequireAdmin(), feeObligationController.CreateFeeObligation)
	feeObligations.Put("/:id", middleware.RequireAdmin(), feeObligationController.UpdateFeeObligation)
	feeObligations.Delete("/:id", middleware.RequireAdmin(), feeObligationController.DeleteFeeObligation)

	// Cash register routes
	cashRegisters := protected.Group("/cash-registers")
	cashRegisters.Get("/", cashRegisterController.GetCashRegisters)
	cashRegisters.Post("/", middleware.RequireAdmin(), cashRegisterController.CreateCashRegister)
	cashRegisters.Put("/:id", middleware.RequireAdmin(), cashRegisterController.UpdateCashRegister)

	// Payment routes; staff can record and validate, refunds are admin only
	payments := protected.Group("/payments", middleware.RequireStaffOrAdmin())
	payments.Get("/", paymentController.GetPayments)
	payments.Get("/stats", paymentController.GetPaymentStats)
	payments.Get("/:id", paymentController.GetPayment)
	payments.Post("/", paymentController.CreatePayment)
	payments.Post("/import", paymentImportController.ImportPayments)
	payments.Post("/:id/validate", paymentController.ValidatePayment)
	payments.Post("/:id/cancel", paymentController.CancelPayment)
	payments.Post("/:id/refund", middleware.RequireAdmin(), paymentController.RefundPayment)

	// Enrollment routes
	enrollments := protected.Group("/enrollments", middleware.RequireStaffOrAdmin())
	enrollments.Get("/", enrollmentController.GetApplications)
	enrollments.Get("/:id", enrollmentController.GetApplication)
	enrollments.Get("/:id/schedule", enrollmentController.GetSchedule)
	enrollments.Get("/:id/payments", enrollmentController.GetApplicationPayments)
	enrollments.Post("/", enrollmentController.CreateApplication)
	enrollments.Post("/:id/accept", enrollmentController.AcceptApplication)
	enrollments.Post("/:id/reject", enrollmentController.RejectApplication)
	enrollments.Post("/:id/cancel", enrollmentController.CancelApplication)
	enrollments.Post("/:id/confirm", enrollmentController.ConfirmApplication)
	enrollments.Delete("/:id", middleware.RequireAdmin(), enrollmentController.DeleteApplication)

	// Notification routes
	notifs := protected.Group("/notifications")
	notifs.Get("/", notificationController.GetNotifications)
	notifs.Post("/:id/read", notificationController.MarkNotificationRead)
	notifs.Post("/read-all", notificationController.MarkAllNotificationsRead)

	// Activity log routes (admin only)
	logs := protected.Group("/logs", middleware.RequireAdmin())
	logs.Get("/", logController.GetActivityLogs)
	logs.Get("/archives", logController.GetLogArchives)
	logs.Get("/archives/:id/download", logController.DownloadLogArchive)
	logs.Post("/flush", logController.FlushLogs)
}
