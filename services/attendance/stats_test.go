package attendance

import (
	"academia_go/models"
	"testing"
	"time"
)

func record(session, student uint, day int, status models.AttendanceStatus) models.AttendanceRecord {
	return models.AttendanceRecord{
		CourseSessionID: session,
		StudentID:       student,
		Date:            time.Date(2025, 3, day, 0, 0, 0, 0, time.Local),
		Status:          status,
	}
}

func TestSummarizeByStudentPercentage(t *testing.T) {
	// One student across five dates: Presente, Presente, Tardanza, Ausente,
	// Justificado. Justificado folds into present, so 4/5 = 80%.
	records := []models.AttendanceRecord{
		record(1, 7, 3, models.AttendancePresent),
		record(1, 7, 4, models.AttendancePresent),
		record(1, 7, 5, models.AttendanceLate),
		record(1, 7, 6, models.AttendanceAbsent),
		record(1, 7, 7, models.AttendanceExcused),
	}

	summaries := SummarizeByStudent(records)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 student summary, got %d", len(summaries))
	}

	s := summaries[0]
	if s.StudentID != 7 {
		t.Fatalf("expected student 7, got %d", s.StudentID)
	}
	if s.Total != 5 {
		t.Fatalf("expected total 5, got %d", s.Total)
	}
	if s.AttendancePercentage != 80 {
		t.Fatalf("expected 80%%, got %v", s.AttendancePercentage)
	}
	if s.Counts.Absent != 1 {
		t.Fatalf("expected 1 absence, got %d", s.Counts.Absent)
	}
	if s.Counts.Excused != 1 {
		t.Fatalf("expected Justificado tracked distinctly, got %d", s.Counts.Excused)
	}
}

func TestSummarizeByDate(t *testing.T) {
	records := []models.AttendanceRecord{
		record(1, 1, 3, models.AttendancePresent),
		record(1, 2, 3, models.AttendanceExcused),
		record(1, 3, 3, models.AttendanceAbsent),
		record(1, 1, 10, models.AttendanceLate),
		record(1, 2, 10, models.AttendancePresent),
	}

	summaries := SummarizeByDate(records)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(summaries))
	}
	if !summaries[0].Date.Before(summaries[1].Date) {
		t.Fatalf("expected dates sorted ascending")
	}

	first := summaries[0]
	if first.Total != 3 {
		t.Fatalf("expected 3 records on first date, got %d", first.Total)
	}
	if first.Counts.FoldedPresent() != 2 {
		t.Fatalf("expected Justificado folded into present (2), got %d", first.Counts.FoldedPresent())
	}
	if first.Counts.Absent != 1 {
		t.Fatalf("expected 1 absence on first date, got %d", first.Counts.Absent)
	}
}

func TestTotals(t *testing.T) {
	records := []models.AttendanceRecord{
		record(1, 1, 3, models.AttendancePresent),
		record(1, 2, 3, models.AttendancePresent),
		record(1, 3, 3, models.AttendanceAbsent),
		record(1, 4, 3, models.AttendanceLate),
	}

	totals := Totals(records)
	if totals.Total != 4 {
		t.Fatalf("expected total 4, got %d", totals.Total)
	}
	if totals.PresentPct != 50 {
		t.Fatalf("expected present 50%%, got %v", totals.PresentPct)
	}
	if totals.AbsentPct != 25 {
		t.Fatalf("expected absent 25%%, got %v", totals.AbsentPct)
	}
	if totals.LatePct != 25 {
		t.Fatalf("expected late 25%%, got %v", totals.LatePct)
	}
}

func TestEmptyAggregates(t *testing.T) {
	// Zero records must yield zeroed aggregates, never NaN or a panic.
	if got := SummarizeByDate(nil); len(got) != 0 {
		t.Fatalf("expected empty date summaries, got %d", len(got))
	}
	if got := SummarizeByStudent(nil); len(got) != 0 {
		t.Fatalf("expected empty student summaries, got %d", len(got))
	}

	totals := Totals(nil)
	if totals.Total != 0 {
		t.Fatalf("expected zero total, got %d", totals.Total)
	}
	if totals.PresentPct != 0 || totals.AbsentPct != 0 || totals.LatePct != 0 || totals.ExcusedPct != 0 {
		t.Fatalf("expected zeroed percentages, got %+v", totals)
	}

	var empty StatusCounts
	if pct := empty.AttendancePercentage(); pct != 0 {
		t.Fatalf("expected 0%% for empty counts, got %v", pct)
	}
}
