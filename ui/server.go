package ui

import (
	"log"

	"worklens/app"
	"worklens/domain/core"
	"worklens/ports"

	"github.com/gin-gonic/gin"
)

// Server is the REST surface over the tracking services. It resolves
// bearer tokens to user rows and routes to the app layer; all domain
// decisions live there.
type Server struct {
	router      *gin.Engine
	clock       core.Clock
	users       ports.UserRepository
	clients     ports.ClientRepository
	activities  ports.ActivityRepository
	screenshots ports.ScreenshotRepository
	sessions    *app.SessionManager
	uploads     *app.UploadService
	manual      *app.ManualEntryService
	reports     *app.ReportService
}

// NewServer creates the API server and wires its routes.
func NewServer(
	clock core.Clock,
	users ports.UserRepository,
	clients ports.ClientRepository,
	activities ports.ActivityRepository,
	screenshots ports.ScreenshotRepository,
	sessions *app.SessionManager,
	uploads *app.UploadService,
	manual *app.ManualEntryService,
	reports *app.ReportService,
) *Server {
	s := &Server{
		router:      gin.Default(),
		clock:       clock,
		users:       users,
		clients:     clients,
		activities:  activities,
		screenshots: screenshots,
		sessions:    sessions,
		uploads:     uploads,
		manual:      manual,
		reports:     reports,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes.
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.Use(s.requireAuth())
	{
		api.POST("/start-tracking", s.handleStartTracking)
		api.POST("/stop-tracking", s.handleStopTracking)
		api.GET("/tracking-status", s.handleTrackingStatus)

		api.GET("/activities", s.handleActivities)
		api.GET("/activities/:id/screenshots", s.handleActivityScreenshots)
		api.POST("/upload-screenshot", s.handleUploadScreenshot)
		api.POST("/manual-entry", s.handleManualEntry)

		api.GET("/clients", s.handleListClients)
		api.POST("/clients", s.handleCreateClient)
		api.GET("/clients-summary", s.handleClientsSummary)

		api.GET("/daily-summary", s.handleDailySummary)
		api.GET("/weekly-report", s.handleWeeklyReport)
		api.GET("/me", s.handleMe)
	}

	admin := api.Group("/admin")
	admin.Use(s.requireAdmin())
	{
		admin.GET("/users", s.handleAdminUsers)
		admin.GET("/users/:id/activities", s.handleAdminUserActivities)
		admin.GET("/users/:id/summary", s.handleAdminUserSummary)
		admin.GET("/users/:id/weekly-report", s.handleAdminWeeklyReport)
		admin.GET("/users/:id/weekly-report.xlsx", s.handleAdminWeeklyReportExcel)
	}
}

// Router exposes the configured engine, for tests and embedding.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start(addr string) error {
	log.Printf("[API] Listening on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
