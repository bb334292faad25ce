package attendance

import (
	"academia_go/models"
	"sort"
	"time"
)

// StatusCounts holds raw per-status counts. Justificado is kept distinct here
// and folded into present only where percentages are derived.
type StatusCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
}

func (c *StatusCounts) add(status models.AttendanceStatus) {
	switch status {
	case models.AttendancePresent:
		c.Present++
	case models.AttendanceAbsent:
		c.Absent++
	case models.AttendanceLate:
		c.Late++
	case models.AttendanceExcused:
		c.Excused++
	}
}

// Total is the number of counted records.
func (c StatusCounts) Total() int {
	return c.Present + c.Absent + c.Late + c.Excused
}

// FoldedPresent is the present count with Justificado folded in.
func (c StatusCounts) FoldedPresent() int {
	return c.Present + c.Excused
}

// AttendancePercentage is (present + late + excused) / total * 100,
// 0 when there are no records.
func (c StatusCounts) AttendancePercentage() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	attended := c.Present + c.Late + c.Excused
	return float64(attended) / float64(total) * 100
}

// DateSummary aggregates one session date.
type DateSummary struct {
	Date   time.Time    `json:"date"`
	Counts StatusCounts `json:"counts"`
	Total  int          `json:"total"`
}

// StudentSummary aggregates one student across all dates of a course.
type StudentSummary struct {
	StudentID            uint         `json:"student_id"`
	Counts               StatusCounts `json:"counts"`
	Total                int          `json:"total"`
	AttendancePercentage float64      `json:"attendance_percentage"`
}

// CourseTotals aggregates a whole course across all dates and students.
type CourseTotals struct {
	Counts     StatusCounts `json:"counts"`
	Total      int          `json:"total"`
	PresentPct float64      `json:"present_pct"`
	AbsentPct  float64      `json:"absent_pct"`
	LatePct    float64      `json:"late_pct"`
	ExcusedPct float64      `json:"excused_pct"`
}

// SummarizeByDate groups records by calendar date, sorted ascending.
// Zero records yield an empty slice, never an error.
func SummarizeByDate(records []models.AttendanceRecord) []DateSummary {
	byDate := make(map[time.Time]*DateSummary)
	for _, rec := range records {
		day := DateOnly(rec.Date)
		summary, ok := byDate[day]
		if !ok {
			summary = &DateSummary{Date: day}
			byDate[day] = summary
		}
		summary.Counts.add(rec.Status)
		summary.Total++
	}

	out := make([]DateSummary, 0, len(byDate))
	for _, summary := range byDate {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SummarizeByStudent groups records by student, sorted by student id.
func SummarizeByStudent(records []models.AttendanceRecord) []StudentSummary {
	byStudent := make(map[uint]*StudentSummary)
	for _, rec := range records {
		summary, ok := byStudent[rec.StudentID]
		if !ok {
			summary = &StudentSummary{StudentID: rec.StudentID}
			byStudent[rec.StudentID] = summary
		}
		summary.Counts.add(rec.Status)
		summary.Total++
	}

	out := make([]StudentSummary, 0, len(byStudent))
	for _, summary := range byStudent {
		summary.AttendancePercentage = summary.Counts.AttendancePercentage()
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out
}

// Totals computes overall per-status percentages across all records.
// Zero records yield zeroed percentages, not NaN.
func Totals(records []models.AttendanceRecord) CourseTotals {
	var totals CourseTotals
	for _, rec := range records {
		totals.Counts.add(rec.Status)
	}
	totals.Total = totals.Counts.Total()
	if totals.Total == 0 {
		return totals
	}
	div := float64(totals.Total)
	totals.PresentPct = float64(totals.Counts.Present) / div * 100
	totals.AbsentPct = float64(totals.Counts.Absent) / div * 100
	totals.LatePct = float64(totals.Counts.Late) / div * 100
	totals.ExcusedPct = float64(totals.Counts.Excused) / div * 100
	return totals
}
