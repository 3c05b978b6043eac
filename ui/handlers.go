package ui

import (
	"io"
	"log"
	"net/http"
	"time"

	"worklens/app"
	"worklens/domain/core"
	"worklens/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case core.IsValidationError(err):
		return http.StatusBadRequest
	case core.IsConflictError(err):
		return http.StatusConflict
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// queryDate reads the optional ?date=YYYY-MM-DD parameter, defaulting to
// today.
func (s *Server) queryDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return s.clock.Now(), true
	}
	date, err := time.ParseInLocation("2006-01-02", raw, s.clock.Now().Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func (s *Server) handleStartTracking(c *gin.Context) {
	user := currentUser(c)
	if err := s.sessions.Start(user.ID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "tracking", "user_id": user.ID})
}

func (s *Server) handleStopTracking(c *gin.Context) {
	if err := s.sessions.Stop(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (s *Server) handleTrackingStatus(c *gin.Context) {
	userID, running := s.sessions.Active()
	resp := gin.H{"tracking": running}
	if running {
		resp["user_id"] = userID
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleActivities(c *gin.Context) {
	date, ok := s.queryDate(c)
	if !ok {
		return
	}
	intervals, err := s.activities.ListByUserAndDate(c.Request.Context(), currentUser(c).ID, date)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": intervals, "count": len(intervals)})
}

func (s *Server) handleActivityScreenshots(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}
	shots, err := s.screenshots.ListByActivity(c.Request.Context(), activityID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screenshots": shots})
}

func (s *Server) handleUploadScreenshot(c *gin.Context) {
	file, err := c.FormFile("screenshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screenshot file is required"})
		return
	}

	window := models.WindowInfo{
		Application: c.PostForm("application"),
		WindowTitle: c.PostForm("window_title"),
	}
	if window.Application == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application is required"})
		return
	}

	takenAt := time.Time{}
	if raw := c.PostForm("taken_at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "taken_at must be RFC3339"})
			return
		}
		takenAt = parsed
	}

	opened, err := file.Open()
	if err != nil {
		s.fail(c, core.NewStorageError("open upload", err))
		return
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		s.fail(c, core.NewStorageError("read upload", err))
		return
	}

	result, err := s.uploads.ProcessUpload(c.Request.Context(), currentUser(c).ID, window, data, takenAt)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleManualEntry(c *gin.Context) {
	var entry app.ManualEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.manual.Submit(c.Request.Context(), currentUser(c).ID, entry)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleListClients(c *gin.Context) {
	clients, err := s.clients.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

type createClientRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
}

func (s *Server) handleCreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client name is required"})
		return
	}

	client := &models.Client{
		ID:           uuid.New(),
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
	}
	if err := s.clients.Create(c.Request.Context(), client); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (s *Server) handleClientsSummary(c *gin.Context) {
	date, ok := s.queryDate(c)
	if !ok {
		return
	}
	rows, err := s.reports.ClientSummary(c.Request.Context(), currentUser(c).ID, date)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": rows})
}

func (s *Server) handleDailySummary(c *gin.Context) {
	date, ok := s.queryDate(c)
	if !ok {
		return
	}
	summary, err := s.reports.DailySummary(c.Request.Context(), currentUser(c).ID, date)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleWeeklyReport(c *gin.Context) {
	report, err := s.reports.Weekly(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
