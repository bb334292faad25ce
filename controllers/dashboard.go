package controllers

import (
	"time"

	"academia_go/database"
	"academia_go/models"
	"academia_go/services/attendance"

	"github.com/gofiber/fiber/v2"
)

type DashboardController struct{}

// GetDashboard returns the admin overview: directory counts, today's session
// load and the attendance recorded so far today.
func (dc *DashboardController) GetDashboard(c *fiber.Ctx) error {
	var studentCount, teacherCount, subjectCount, sessionCount int64

	database.DB.Model(&models.Student{}).Where("status = ?", "active").Count(&studentCount)
	database.DB.Model(&models.Teacher{}).Where("active = ?", true).Count(&teacherCount)
	database.DB.Model(&models.Subject{}).Where("active = ?", true).Count(&subjectCount)
	database.DB.Model(&models.CourseSession{}).
		Where("status = ?", models.SessionActive).Count(&sessionCount)

	now := time.Now()
	today := attendance.DateOnly(now)

	// Sessions that meet today, split into recorded and pending
	var sessions []models.CourseSession
	database.DB.Preload("Subject").Preload("Teacher").
		Where("status = ?", models.SessionActive).Find(&sessions)

	type sessionToday struct {
		CourseSession models.CourseSession `json:"course_session"`
		Recorded      bool                 `json:"recorded"`
	}

	var meetingToday []sessionToday
	recordedCount := 0
	for _, session := range sessions {
		if !attendance.MeetsOn(session.DaysOfWeek, today) {
			continue
		}
		var rowCount int64
		database.DB.Model(&models.AttendanceRecord{}).
			Where("course_session_id = ? AND date = ?", session.ID, today).
			Count(&rowCount)
		entry := sessionToday{CourseSession: session, Recorded: rowCount > 0}
		if entry.Recorded {
			recordedCount++
		}
		meetingToday = append(meetingToday, entry)
	}

	var todayRecords []models.AttendanceRecord
	database.DB.Where("date = ?", today).Find(&todayRecords)
	todayTotals := attendance.Totals(todayRecords)

	return c.JSON(fiber.Map{
		"counts": fiber.Map{
			"students":        studentCount,
			"teachers":        teacherCount,
			"subjects":        subjectCount,
			"active_sessions": sessionCount,
		},
		"today": fiber.Map{
			"date":              today.Format("2006-01-02"),
			"sessions_meeting":  len(meetingToday),
			"sessions_recorded": recordedCount,
			"sessions_pending":  len(meetingToday) - recordedCount,
			"sessions":          meetingToday,
			"attendance":        todayTotals,
		},
	})
}
