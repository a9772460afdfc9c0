package router

import (
	"log"
	"os"
	"time"

	"github.com/RamPrasathM-2005/College-Integration-sub001/config"
	"github.com/RamPrasathM-2005/College-Integration-sub001/database"
	"github.com/RamPrasathM-2005/College-Integration-sub001/handlers"
	attendance_handlers "github.com/RamPrasathM-2005/College-Integration-sub001/handlers/attendance"
	auth_handlers "github.com/RamPrasathM-2005/College-Integration-sub001/handlers/auth"
	course_handlers "github.com/RamPrasathM-2005/College-Integration-sub001/handlers/course"
	elective_handlers "github.com/RamPrasathM-2005/College-Integration-sub001/handlers/elective"
	marks_handlers "github.com/RamPrasathM-2005/College-Integration-sub001/handlers/marks"
	timetable_handlers "github.com/RamPrasathM-2005/College-Integration-sub001/handlers/timetable"
	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/RamPrasathM-2005/College-Integration-sub001/services"
	"github.com/RamPrasathM-2005/College-Integration-sub001/services/storage"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/auth"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/cache"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "college-integration-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load environment configuration")
	}

	// Initialize Redis cache for brute force protection and report caching
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and report caching will be disabled.", err)
	}

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Object store for roster/report archival; optional
	var objectStore *storage.ObjectStore
	if getEnv.SPACES_ACCESS_KEY != "" {
		objectStore, err = storage.New(storage.Config{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: object store unavailable: %v. Archival disabled.", err)
			objectStore = nil
		}
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize auth handler with brute force protection
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)

	// Domain services
	marksService := services.NewMarksService(db, redisCache)
	outcomeService := services.NewOutcomeService(db, marksService)
	curriculumService := services.NewCurriculumService(db)
	rosterService := services.NewRosterService(getEnv.ROSTER_DIR, objectStore)
	electiveService := services.NewElectiveService(db, rosterService)
	exportService := services.NewExportService(marksService, objectStore)
	attendanceService := services.NewAttendanceService(db)
	timetableService := services.NewTimetableService(db)

	// Domain handlers
	semesterHandler := course_handlers.NewSemesterHandler(db)
	courseHandler := course_handlers.NewCourseHandler(db)
	outcomeHandler := course_handlers.NewOutcomeHandler(db, outcomeService)
	sectionHandler := course_handlers.NewSectionHandler(db, curriculumService)
	marksHandler := marks_handlers.NewMarksHandler(db, marksService, exportService)
	electiveHandler := elective_handlers.NewElectiveHandler(db, electiveService, curriculumService)
	attendanceHandler := attendance_handlers.NewAttendanceHandler(db, attendanceService)
	timetableHandler := timetable_handlers.NewTimetableHandler(db, timetableService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	adminOnly := authMiddleware.RequireRole(model.RoleAdmin)
	staffOrAdmin := authMiddleware.RequireRole(model.RoleStaff, model.RoleAdmin)
	studentOnly := authMiddleware.RequireRole(model.RoleStudent)

	// ==================== Curriculum ====================

	// Semesters
	semesters := api.Group("/semesters", authMiddleware.Required())
	semesters.Get("/", semesterHandler.ListSemesters)
	semesters.Get("/:id", semesterHandler.GetSemester)
	semesters.Post("/", adminOnly, semesterHandler.CreateSemester)
	semesters.Put("/:id", adminOnly, semesterHandler.UpdateSemester)
	semesters.Delete("/:id", adminOnly, semesterHandler.DeleteSemester)
	semesters.Get("/:id/buckets", electiveHandler.ListBuckets)

	// Courses
	courses := api.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Post("/", adminOnly, courseHandler.CreateCourse)
	courses.Put("/:id", adminOnly, courseHandler.UpdateCourse)
	courses.Delete("/:id", adminOnly, courseHandler.DeleteCourse)

	// CO partitions and assessment tools
	courses.Get("/:id/outcomes", outcomeHandler.ListOutcomes)
	courses.Put("/:id/partitions", staffOrAdmin, outcomeHandler.UpdatePartitions)

	outcomes := api.Group("/outcomes", authMiddleware.Required())
	outcomes.Get("/:id/tools", outcomeHandler.ListTools)
	outcomes.Put("/:id/tools", staffOrAdmin, outcomeHandler.SaveTools)

	// Sections, staff allocation and enrollment
	courses.Get("/:id/sections", sectionHandler.ListSections)
	courses.Post("/:id/sections", adminOnly, sectionHandler.CreateSection)
	courses.Get("/:id/staff", sectionHandler.ListStaff)
	courses.Post("/:id/staff", adminOnly, sectionHandler.AllocateStaff)
	courses.Post("/:id/enrollments", adminOnly, sectionHandler.EnrollStudent)

	// ==================== Marks ====================

	marks := api.Group("/marks", authMiddleware.Required())
	marks.Post("/", staffOrAdmin, marksHandler.SubmitMark)

	tools := api.Group("/tools", authMiddleware.Required())
	tools.Post("/:id/marks/import", staffOrAdmin, marksHandler.ImportMarks)

	courses.Get("/:id/report", staffOrAdmin, marksHandler.CourseReport)
	courses.Get("/:id/report/export", staffOrAdmin, marksHandler.ExportReport)

	// ==================== CBCS Electives ====================

	electives := api.Group("/electives", authMiddleware.Required())
	electives.Post("/buckets", adminOnly, electiveHandler.CreateBucket)
	electives.Post("/buckets/:id/courses", adminOnly, electiveHandler.AddCourse)
	electives.Post("/configs", adminOnly, electiveHandler.CreateConfig)
	electives.Put("/configs/:id/status", adminOnly, electiveHandler.UpdateConfigStatus)
	electives.Post("/configs/:id/allocate", adminOnly, electiveHandler.RunAllocation)
	electives.Get("/runs/:run_id", staffOrAdmin, electiveHandler.GetRun)

	electives.Post("/buckets/:id/select", studentOnly, electiveHandler.SelectElective)
	electives.Get("/selections", studentOnly, electiveHandler.MySelections)
	electives.Post("/configs/:id/choices", studentOnly, electiveHandler.SubmitChoices)

	// ==================== Attendance ====================

	attendance := api.Group("/attendance", authMiddleware.Required())
	attendance.Post("/", staffOrAdmin, attendanceHandler.MarkSheet)
	attendance.Get("/students/:id/courses/:course_id", staffOrAdmin, attendanceHandler.StudentSummary)
	attendance.Get("/me/courses/:course_id", studentOnly, attendanceHandler.MySummary)

	// ==================== Timetable ====================

	sections := api.Group("/sections", authMiddleware.Required())
	sections.Get("/:id/timetable", timetableHandler.SectionWeek)
	sections.Post("/:id/timetable", adminOnly, timetableHandler.CreateEntry)

	timetable := api.Group("/timetable", authMiddleware.Required())
	timetable.Delete("/:id", adminOnly, timetableHandler.DeleteEntry)
}
