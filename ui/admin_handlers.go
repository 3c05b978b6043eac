package ui

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// adminTargetUser resolves the :id route parameter to a user row.
func (s *Server) adminTargetUser(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return uuid.Nil, false
	}
	if _, err := s.users.GetByID(c.Request.Context(), userID); err != nil {
		s.fail(c, err)
		return uuid.Nil, false
	}
	return userID, true
}

func (s *Server) handleAdminUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) handleAdminUserActivities(c *gin.Context) {
	userID, ok := s.adminTargetUser(c)
	if !ok {
		return
	}

	// Without a date the full history is returned, most recent first.
	if c.Query("date") == "" {
		intervals, err := s.activities.ListByUser(c.Request.Context(), userID)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"activities": intervals, "count": len(intervals)})
		return
	}

	date, ok := s.queryDate(c)
	if !ok {
		return
	}
	intervals, err := s.activities.ListByUserAndDate(c.Request.Context(), userID, date)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": intervals, "count": len(intervals)})
}

func (s *Server) handleAdminUserSummary(c *gin.Context) {
	userID, ok := s.adminTargetUser(c)
	if !ok {
		return
	}
	date, ok := s.queryDate(c)
	if !ok {
		return
	}
	summary, err := s.reports.DailySummary(c.Request.Context(), userID, date)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleAdminWeeklyReport(c *gin.Context) {
	userID, ok := s.adminTargetUser(c)
	if !ok {
		return
	}
	report, err := s.reports.Weekly(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleAdminWeeklyReportExcel(c *gin.Context) {
	userID, ok := s.adminTargetUser(c)
	if !ok {
		return
	}
	report, err := s.reports.Weekly(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	workbook, err := buildWeeklyWorkbook(report)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("weekly-report-%s-%s.xlsx", userID, report.WeekStart)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		log.Printf("[API] Weekly report export failed: %v", err)
	}
}
