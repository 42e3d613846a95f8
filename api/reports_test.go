/*
reports_test.go - Unit tests for the lesson-table report endpoint

Tests for:
- Full table layout (rows, columns, cells, totals, dues)
- Reporting-window filtering vs unfiltered payment dues
- Conflict response when billing configuration is missing
*/
package api

import (
	"fmt"
	"net/http"
	"testing"
)

func createLesson(t *testing.T, router http.Handler, teacherID, groupID int64, minutes int, date string) int64 {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/lessons", CreateLessonRequest{
		TeacherID: teacherID, GroupID: groupID, DurationMinutes: minutes, Date: date,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Failed to create lesson: %d %s", rec.Code, rec.Body.String())
	}
	return decodeBody[LessonDTO](t, rec).ID
}

func TestLessonTable_FullLayout(t *testing.T) {
	// GIVEN: An hourly teacher with lessons for a paying customer and for a
	//        customer-less adult group, with the clock pinned to 2025-03-20
	// WHEN: Requesting the unfiltered lesson table
	// THEN: Rows, columns, cells, totals, and both payment dues line up

	_, router := newTestRouter(t)

	teacherID := createTeacher(t, router, "24.0000", true, 15)
	customerID := createCustomer(t, router, 1)
	paidGroup := createGroup(t, router, &customerID)
	adultGroup := createGroup(t, router, nil)

	l1 := createLesson(t, router, teacherID, paidGroup, 60, "2025-03-10")
	l2 := createLesson(t, router, teacherID, paidGroup, 90, "2025-03-12")
	l3 := createLesson(t, router, teacherID, adultGroup, 45, "2025-03-16")

	rec := doRequest(t, router, http.MethodGet, "/api/reports/lesson-table", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	table := decodeBody[LessonTableDTO](t, rec)

	if table.AsOf != "2025-03-20" {
		t.Errorf("Expected as_of 2025-03-20, got %s", table.AsOf)
	}

	// One teacher row.
	if len(table.Teachers) != 1 || table.Teachers[0].TeacherID != teacherID {
		t.Fatalf("Expected single row for teacher %d, got %+v", teacherID, table.Teachers)
	}
	row := table.Teachers[0]
	if row.Total.Lessons != 3 || row.Total.DurationMinutes != 195 || row.Total.Cost != "78.0000" {
		t.Errorf("Wrong row total: %+v", row.Total)
	}

	// Paying customer column first, student column (null id) last.
	if len(table.Customers) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(table.Customers))
	}
	paid, student := table.Customers[0], table.Customers[1]
	if paid.CustomerID == nil || *paid.CustomerID != customerID {
		t.Fatalf("Expected customer %d in first column, got %+v", customerID, paid)
	}
	if student.CustomerID != nil {
		t.Fatalf("Expected null id in student column, got %v", *student.CustomerID)
	}
	if student.Due != nil {
		t.Errorf("Student column must carry no payment due, got %+v", student.Due)
	}
	if paid.Total.Cost != "60.0000" || student.Total.Cost != "18.0000" {
		t.Errorf("Wrong column totals: paid=%s student=%s", paid.Total.Cost, student.Total.Cost)
	}

	// Cells: 60+90 hourly minutes at 24 and a lone 45-minute lesson.
	if len(table.Cells) != 1 || len(table.Cells[0]) != 2 {
		t.Fatalf("Expected 1x2 cell grid, got %v", table.Cells)
	}
	paidCell, studentCell := table.Cells[0][0], table.Cells[0][1]
	if paidCell == nil || studentCell == nil {
		t.Fatalf("Expected both cells populated, got %v / %v", paidCell, studentCell)
	}
	if paidCell.DurationMinutes != 150 || paidCell.Cost != "60.0000" {
		t.Errorf("Wrong paid cell: %+v", paidCell)
	}
	if len(paidCell.LessonIDs) != 2 || paidCell.LessonIDs[0] != l1 || paidCell.LessonIDs[1] != l2 {
		t.Errorf("Wrong lesson ids in paid cell: %v", paidCell.LessonIDs)
	}
	if studentCell.Cost != "18.0000" || len(studentCell.LessonIDs) != 1 || studentCell.LessonIDs[0] != l3 {
		t.Errorf("Wrong student cell: %+v", studentCell)
	}

	if table.Grand.Lessons != 3 || table.Grand.DurationMinutes != 195 || table.Grand.Cost != "78.0000" {
		t.Errorf("Wrong grand total: %+v", table.Grand)
	}

	// Teacher due: payment day 15, as-of 2025-03-20 resolves the cycle
	// [2025-03-15, 2025-04-15); only the 45-minute lesson falls inside.
	due := row.Due
	if due.CycleStart != "2025-03-15" || due.CycleEnd != "2025-04-15" || due.DueDate != "2025-04-14" {
		t.Errorf("Wrong teacher cycle: %+v", due)
	}
	if due.Cost != "18.0000" {
		t.Errorf("Expected teacher due 18.0000, got %s", due.Cost)
	}

	// Customer due: payment day 1 resolves [2025-03-01, 2025-04-01); both
	// paid lessons fall inside.
	if paid.Due == nil {
		t.Fatal("Expected payment due on paying customer column")
	}
	if paid.Due.CycleStart != "2025-03-01" || paid.Due.CycleEnd != "2025-04-01" || paid.Due.DueDate != "2025-03-31" {
		t.Errorf("Wrong customer cycle: %+v", paid.Due)
	}
	if paid.Due.Cost != "60.0000" {
		t.Errorf("Expected customer due 60.0000, got %s", paid.Due.Cost)
	}
}

func TestLessonTable_WindowFiltersCellsNotDues(t *testing.T) {
	// GIVEN: Lessons on both sides of a window boundary
	// WHEN: Requesting the table for [2025-03-11, ...)
	// THEN: Cells only cover the window, but dues still use the full log

	_, router := newTestRouter(t)

	teacherID := createTeacher(t, router, "24.0000", true, 1)
	customerID := createCustomer(t, router, 1)
	groupID := createGroup(t, router, &customerID)

	createLesson(t, router, teacherID, groupID, 60, "2025-03-10")
	createLesson(t, router, teacherID, groupID, 90, "2025-03-12")

	rec := doRequest(t, router, http.MethodGet, "/api/reports/lesson-table?from=2025-03-11", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	table := decodeBody[LessonTableDTO](t, rec)

	if table.Grand.Lessons != 1 || table.Grand.DurationMinutes != 90 || table.Grand.Cost != "36.0000" {
		t.Errorf("Expected only the in-window lesson aggregated, got %+v", table.Grand)
	}
	// Both lessons sit in the current cycle [2025-03-01, 2025-04-01), so the
	// due ignores the window and covers both.
	if table.Teachers[0].Due.Cost != "60.0000" {
		t.Errorf("Expected due over full log 60.0000, got %s", table.Teachers[0].Due.Cost)
	}
}

func TestLessonTable_Empty(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/reports/lesson-table", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	table := decodeBody[LessonTableDTO](t, rec)
	if len(table.Teachers) != 0 || len(table.Customers) != 0 || len(table.Cells) != 0 {
		t.Errorf("Expected empty table, got %+v", table)
	}
	if table.Grand.Cost != "0.0000" {
		t.Errorf("Expected zero grand total, got %s", table.Grand.Cost)
	}
}

func TestLessonTable_MissingBillingConfig_Conflict(t *testing.T) {
	// GIVEN: A lesson whose teacher was deleted after booking
	// WHEN: Requesting the table
	// THEN: 409 with the missing_billing_config code, no partial table

	_, router := newTestRouter(t)

	teacherID := createTeacher(t, router, "24.0000", true, 15)
	customerID := createCustomer(t, router, 1)
	groupID := createGroup(t, router, &customerID)
	createLesson(t, router, teacherID, groupID, 60, "2025-03-10")

	rec := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/teachers/%d", teacherID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Failed to delete teacher: %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/reports/lesson-table", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Code != "missing_billing_config" {
		t.Errorf("Expected code missing_billing_config, got %q", resp.Code)
	}
}

func TestLessonTable_BadWindowRejected(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/reports/lesson-table?from=2025-04-01&to=2025-03-01", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}
