/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates teachers, customers,
	students, groups, and lessons that demonstrate specific report features.

AVAILABLE SCENARIOS:

	small-school:    Two teachers, two customers, one student-only group
	mixed-wages:     Hourly and academic wages in the same report
	clamped-cycles:  Payment days 29-31 around a short month

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create teachers and customers with payment days
 3. Create groups (including a customer-less one where relevant)
 4. Log lessons across billing-cycle boundaries

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "small-school"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared handler dependencies
  - store/sqlite/sqlite.go: Reset
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lernwerk/backoffice/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-school",
		Name:        "Small School",
		Description: "Two teachers, two paying customers, one student-only group",
	},
	{
		ID:          "mixed-wages",
		Name:        "Mixed Wages",
		Description: "Hourly and academic wage types summed in one report",
	},
	{
		ID:          "clamped-cycles",
		Name:        "Clamped Cycles",
		Description: "Payment days 29-31 resolving around a short month",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "small-school":
		err = h.loadSmallSchoolScenario(ctx)
	case "mixed-wages":
		err = h.loadMixedWagesScenario(ctx)
	case "clamped-cycles":
		err = h.loadClampedCyclesScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSmallSchoolScenario(ctx context.Context) error {
	anna, err := h.Store.SaveTeacher(ctx, sqlite.Teacher{
		Name: "Anna Berger", Email: "anna@example.com",
		WageRate: dec("24.0000"), UsesHourlyWage: true, PaymentDay: 15,
	})
	if err != nil {
		return err
	}
	jonas, err := h.Store.SaveTeacher(ctx, sqlite.Teacher{
		Name: "Jonas Keller", Email: "jonas@example.com",
		WageRate: dec("18.0000"), UsesHourlyWage: false, PaymentDay: 1,
	})
	if err != nil {
		return err
	}

	mueller, err := h.Store.SaveCustomer(ctx, sqlite.Customer{
		Name: "Familie Mueller", Email: "mueller@example.com", PaymentDay: 1,
	})
	if err != nil {
		return err
	}
	schmidt, err := h.Store.SaveCustomer(ctx, sqlite.Customer{
		Name: "Familie Schmidt", Email: "schmidt@example.com", PaymentDay: 15,
	})
	if err != nil {
		return err
	}

	lena, err := h.Store.SaveStudent(ctx, sqlite.Student{Name: "Lena Mueller", CustomerID: &mueller})
	if err != nil {
		return err
	}
	tim, err := h.Store.SaveStudent(ctx, sqlite.Student{Name: "Tim Schmidt", CustomerID: &schmidt})
	if err != nil {
		return err
	}
	// Adult learner with no paying customer; their lessons land in the
	// student column.
	maria, err := h.Store.SaveStudent(ctx, sqlite.Student{Name: "Maria Vogel"})
	if err != nil {
		return err
	}

	mathGroup, err := h.Store.SaveGroup(ctx, sqlite.Group{Name: "Mathe Klasse 8", CustomerID: &mueller})
	if err != nil {
		return err
	}
	englishGroup, err := h.Store.SaveGroup(ctx, sqlite.Group{Name: "Englisch Klasse 10", CustomerID: &schmidt})
	if err != nil {
		return err
	}
	adultGroup, err := h.Store.SaveGroup(ctx, sqlite.Group{Name: "Abendkurs Spanisch"})
	if err != nil {
		return err
	}

	members := []struct{ group, student int64 }{
		{mathGroup, lena},
		{englishGroup, tim},
		{adultGroup, maria},
	}
	for _, m := range members {
		if err := h.Store.AddGroupMember(ctx, m.group, m.student); err != nil {
			return err
		}
	}

	today := time.Now()
	lessons := []sqlite.Lesson{
		{TeacherID: anna, GroupID: mathGroup, DurationMinutes: 60, Date: today.AddDate(0, 0, -20)},
		{TeacherID: anna, GroupID: mathGroup, DurationMinutes: 90, Date: today.AddDate(0, 0, -10)},
		{TeacherID: anna, GroupID: adultGroup, DurationMinutes: 60, Date: today.AddDate(0, 0, -5)},
		{TeacherID: jonas, GroupID: englishGroup, DurationMinutes: 45, Date: today.AddDate(0, 0, -15)},
		{TeacherID: jonas, GroupID: englishGroup, DurationMinutes: 90, Date: today.AddDate(0, 0, -3)},
	}
	return h.logLessons(ctx, lessons)
}

func (h *Handler) loadMixedWagesScenario(ctx context.Context) error {
	hourly, err := h.Store.SaveTeacher(ctx, sqlite.Teacher{
		Name: "Hourly Teacher", WageRate: dec("20.0000"), UsesHourlyWage: true, PaymentDay: 10,
	})
	if err != nil {
		return err
	}
	academic, err := h.Store.SaveTeacher(ctx, sqlite.Teacher{
		Name: "Academic Teacher", WageRate: dec("20.0000"), UsesHourlyWage: false, PaymentDay: 10,
	})
	if err != nil {
		return err
	}

	customer, err := h.Store.SaveCustomer(ctx, sqlite.Customer{Name: "Shared Customer", PaymentDay: 10})
	if err != nil {
		return err
	}
	group, err := h.Store.SaveGroup(ctx, sqlite.Group{Name: "Shared Group", CustomerID: &customer})
	if err != nil {
		return err
	}

	// 50 hourly minutes and 30 academic minutes at the same rate sum to an
	// exact 30.0000 when rounded once.
	today := time.Now()
	lessons := []sqlite.Lesson{
		{TeacherID: hourly, GroupID: group, DurationMinutes: 50, Date: today.AddDate(0, 0, -2)},
		{TeacherID: academic, GroupID: group, DurationMinutes: 30, Date: today.AddDate(0, 0, -1)},
	}
	return h.logLessons(ctx, lessons)
}

func (h *Handler) loadClampedCyclesScenario(ctx context.Context) error {
	var teacherIDs []int64
	for day := 29; day <= 31; day++ {
		id, err := h.Store.SaveTeacher(ctx, sqlite.Teacher{
			Name:     fmt.Sprintf("Teacher Day %d", day),
			WageRate: dec("22.5000"), UsesHourlyWage: true, PaymentDay: day,
		})
		if err != nil {
			return err
		}
		teacherIDs = append(teacherIDs, id)
	}

	customer, err := h.Store.SaveCustomer(ctx, sqlite.Customer{Name: "Month-End Customer", PaymentDay: 31})
	if err != nil {
		return err
	}
	group, err := h.Store.SaveGroup(ctx, sqlite.Group{Name: "Month-End Group", CustomerID: &customer})
	if err != nil {
		return err
	}

	today := time.Now()
	var lessons []sqlite.Lesson
	for i, teacherID := range teacherIDs {
		lessons = append(lessons,
			sqlite.Lesson{TeacherID: teacherID, GroupID: group, DurationMinutes: 60, Date: today.AddDate(0, -1, -i)},
			sqlite.Lesson{TeacherID: teacherID, GroupID: group, DurationMinutes: 45, Date: today.AddDate(0, 0, -i)},
		)
	}
	return h.logLessons(ctx, lessons)
}

// logLessons saves lessons, snapshotting each teacher's current wage.
func (h *Handler) logLessons(ctx context.Context, lessons []sqlite.Lesson) error {
	for _, l := range lessons {
		teacher, err := h.Store.GetTeacher(ctx, l.TeacherID)
		if err != nil {
			return err
		}
		if teacher == nil {
			return fmt.Errorf("scenario references unknown teacher %d", l.TeacherID)
		}
		l.WageRate = teacher.WageRate
		l.UsesHourlyWage = teacher.UsesHourlyWage
		if _, err := h.Store.SaveLesson(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
