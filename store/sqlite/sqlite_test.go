package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lernwerk/backoffice/billing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// TEACHERS
// =============================================================================

func TestTeacher_SaveAndGet_PreservesWageRate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveTeacher(ctx, Teacher{
		Name:           "Anna Berger",
		Email:          "anna@example.com",
		WageRate:       mustDecimal(t, "24.5000"),
		UsesHourlyWage: true,
		PaymentDay:     15,
	})
	if err != nil {
		t.Fatalf("Failed to save teacher: %v", err)
	}

	got, err := store.GetTeacher(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get teacher: %v", err)
	}
	if got == nil {
		t.Fatal("Expected teacher, got nil")
	}
	if got.Name != "Anna Berger" || got.Email != "anna@example.com" {
		t.Errorf("Wrong identity fields: %+v", got)
	}
	// Wage rate must survive the TEXT round trip exactly.
	if !got.WageRate.Equal(mustDecimal(t, "24.5")) {
		t.Errorf("Expected wage 24.5000, got %s", got.WageRate)
	}
	if !got.UsesHourlyWage || got.PaymentDay != 15 {
		t.Errorf("Wrong wage config: %+v", got)
	}
}

func TestTeacher_Get_NotFound_ReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetTeacher(context.Background(), 999)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("Expected nil, got %+v", got)
	}
}

func TestTeacher_Update_ChangesConfig(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveTeacher(ctx, Teacher{
		Name: "Old Name", WageRate: mustDecimal(t, "20"), UsesHourlyWage: true, PaymentDay: 1,
	})
	if err != nil {
		t.Fatalf("Failed to save teacher: %v", err)
	}

	err = store.UpdateTeacher(ctx, Teacher{
		ID: id, Name: "New Name", WageRate: mustDecimal(t, "25.0000"),
		UsesHourlyWage: false, PaymentDay: 10,
	})
	if err != nil {
		t.Fatalf("Failed to update teacher: %v", err)
	}

	got, _ := store.GetTeacher(ctx, id)
	if got.Name != "New Name" || got.UsesHourlyWage || got.PaymentDay != 10 {
		t.Errorf("Update not applied: %+v", got)
	}
	if !got.WageRate.Equal(mustDecimal(t, "25")) {
		t.Errorf("Expected wage 25, got %s", got.WageRate)
	}
}

func TestTeacher_Update_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateTeacher(context.Background(), Teacher{
		ID: 42, Name: "Ghost", WageRate: mustDecimal(t, "1"), PaymentDay: 1,
	})
	if err != sql.ErrNoRows {
		t.Fatalf("Expected sql.ErrNoRows, got %v", err)
	}
}

func TestTeacher_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _ := store.SaveTeacher(ctx, Teacher{
		Name: "Temp", WageRate: mustDecimal(t, "10"), UsesHourlyWage: true, PaymentDay: 5,
	})
	if err := store.DeleteTeacher(ctx, id); err != nil {
		t.Fatalf("Failed to delete teacher: %v", err)
	}
	got, _ := store.GetTeacher(ctx, id)
	if got != nil {
		t.Fatal("Teacher still present after delete")
	}
	if err := store.DeleteTeacher(ctx, id); err != sql.ErrNoRows {
		t.Fatalf("Expected sql.ErrNoRows on second delete, got %v", err)
	}
}

// =============================================================================
// STUDENTS AND GROUPS
// =============================================================================

func TestStudent_NullableCustomerLink(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	customerID, err := store.SaveCustomer(ctx, Customer{Name: "Familie Mueller", PaymentDay: 1})
	if err != nil {
		t.Fatalf("Failed to save customer: %v", err)
	}

	linkedID, err := store.SaveStudent(ctx, Student{Name: "Lena", CustomerID: &customerID})
	if err != nil {
		t.Fatalf("Failed to save student: %v", err)
	}
	soloID, err := store.SaveStudent(ctx, Student{Name: "Maria"})
	if err != nil {
		t.Fatalf("Failed to save student: %v", err)
	}

	linked, _ := store.GetStudent(ctx, linkedID)
	if linked.CustomerID == nil || *linked.CustomerID != customerID {
		t.Errorf("Expected customer link %d, got %+v", customerID, linked.CustomerID)
	}
	solo, _ := store.GetStudent(ctx, soloID)
	if solo.CustomerID != nil {
		t.Errorf("Expected no customer link, got %d", *solo.CustomerID)
	}
}

func TestGroupMembers_AddListRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	groupID, err := store.SaveGroup(ctx, Group{Name: "Abendkurs"})
	if err != nil {
		t.Fatalf("Failed to save group: %v", err)
	}
	s1, _ := store.SaveStudent(ctx, Student{Name: "A"})
	s2, _ := store.SaveStudent(ctx, Student{Name: "B"})

	if err := store.AddGroupMember(ctx, groupID, s1); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	if err := store.AddGroupMember(ctx, groupID, s2); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	// Adding the same member twice is a no-op.
	if err := store.AddGroupMember(ctx, groupID, s1); err != nil {
		t.Fatalf("Duplicate add should be a no-op: %v", err)
	}

	members, err := store.ListGroupMembers(ctx, groupID)
	if err != nil {
		t.Fatalf("Failed to list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(members))
	}

	if err := store.RemoveGroupMember(ctx, groupID, s1); err != nil {
		t.Fatalf("Failed to remove member: %v", err)
	}
	if err := store.RemoveGroupMember(ctx, groupID, s1); err != sql.ErrNoRows {
		t.Fatalf("Expected sql.ErrNoRows on second remove, got %v", err)
	}

	members, _ = store.ListGroupMembers(ctx, groupID)
	if len(members) != 1 || members[0].ID != s2 {
		t.Fatalf("Expected only student %d, got %+v", s2, members)
	}
}

// =============================================================================
// LESSONS
// =============================================================================

func seedLessonFixture(t *testing.T, store *Store) (teacherID, paidGroupID, soloGroupID int64) {
	t.Helper()
	ctx := context.Background()

	teacherID, err := store.SaveTeacher(ctx, Teacher{
		Name: "Anna", WageRate: mustDecimal(t, "24.0000"), UsesHourlyWage: true, PaymentDay: 15,
	})
	if err != nil {
		t.Fatalf("Failed to save teacher: %v", err)
	}
	customerID, err := store.SaveCustomer(ctx, Customer{Name: "Mueller", PaymentDay: 1})
	if err != nil {
		t.Fatalf("Failed to save customer: %v", err)
	}
	paidGroupID, err = store.SaveGroup(ctx, Group{Name: "Mathe", CustomerID: &customerID})
	if err != nil {
		t.Fatalf("Failed to save group: %v", err)
	}
	soloGroupID, err = store.SaveGroup(ctx, Group{Name: "Abendkurs"})
	if err != nil {
		t.Fatalf("Failed to save group: %v", err)
	}
	return teacherID, paidGroupID, soloGroupID
}

func TestListLessons_WindowIsHalfOpen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	teacherID, groupID, _ := seedLessonFixture(t, store)

	for _, day := range []int{9, 10, 14, 15} {
		_, err := store.SaveLesson(ctx, Lesson{
			TeacherID: teacherID, GroupID: groupID, DurationMinutes: 60,
			WageRate: mustDecimal(t, "24"), UsesHourlyWage: true,
			Date: date(2025, time.March, day),
		})
		if err != nil {
			t.Fatalf("Failed to save lesson: %v", err)
		}
	}

	from := date(2025, time.March, 10)
	to := date(2025, time.March, 15)
	lessons, err := store.ListLessons(ctx, &from, &to)
	if err != nil {
		t.Fatalf("Failed to list lessons: %v", err)
	}
	if len(lessons) != 2 {
		t.Fatalf("Expected lessons on the 10th and 14th, got %d", len(lessons))
	}
	if lessons[0].Date.Day() != 10 || lessons[1].Date.Day() != 14 {
		t.Errorf("Wrong lessons in window: %+v", lessons)
	}

	// Open-ended sides
	all, _ := store.ListLessons(ctx, nil, nil)
	if len(all) != 4 {
		t.Fatalf("Expected 4 lessons without window, got %d", len(all))
	}
	tail, _ := store.ListLessons(ctx, &to, nil)
	if len(tail) != 1 || tail[0].Date.Day() != 15 {
		t.Fatalf("Expected only the 15th after open-ended from, got %+v", tail)
	}
}

func TestLessonRows_ResolvesCustomerThroughGroup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	teacherID, paidGroupID, soloGroupID := seedLessonFixture(t, store)

	paidID, err := store.SaveLesson(ctx, Lesson{
		TeacherID: teacherID, GroupID: paidGroupID, DurationMinutes: 90,
		WageRate: mustDecimal(t, "24.0000"), UsesHourlyWage: true,
		Date: date(2025, time.March, 10),
	})
	if err != nil {
		t.Fatalf("Failed to save lesson: %v", err)
	}
	soloID, err := store.SaveLesson(ctx, Lesson{
		TeacherID: teacherID, GroupID: soloGroupID, DurationMinutes: 45,
		WageRate: mustDecimal(t, "24.0000"), UsesHourlyWage: true,
		Date: date(2025, time.March, 11),
	})
	if err != nil {
		t.Fatalf("Failed to save lesson: %v", err)
	}

	rows, err := store.LessonRows(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Failed to load lesson rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	if rows[0].LessonID != billing.LessonID(paidID) {
		t.Errorf("Expected lesson %d first, got %d", paidID, rows[0].LessonID)
	}
	if rows[0].CustomerID == billing.NoCustomer {
		t.Error("Paid group lesson lost its customer")
	}
	if rows[1].LessonID != billing.LessonID(soloID) || rows[1].CustomerID != billing.NoCustomer {
		t.Errorf("Student-only lesson should map to NoCustomer: %+v", rows[1])
	}
	if !rows[0].WageRate.Equal(mustDecimal(t, "24")) {
		t.Errorf("Wage snapshot lost: %s", rows[0].WageRate)
	}
}

func TestPaymentDays_CoversBothParties(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t1, _ := store.SaveTeacher(ctx, Teacher{Name: "A", WageRate: mustDecimal(t, "20"), UsesHourlyWage: true, PaymentDay: 15})
	t2, _ := store.SaveTeacher(ctx, Teacher{Name: "B", WageRate: mustDecimal(t, "18"), UsesHourlyWage: false, PaymentDay: 1})
	c1, _ := store.SaveCustomer(ctx, Customer{Name: "C", PaymentDay: 31})

	teachers, customers, err := store.PaymentDays(ctx)
	if err != nil {
		t.Fatalf("Failed to load payment days: %v", err)
	}
	if teachers[billing.TeacherID(t1)] != 15 || teachers[billing.TeacherID(t2)] != 1 {
		t.Errorf("Wrong teacher payment days: %v", teachers)
	}
	if customers[billing.CustomerID(c1)] != 31 {
		t.Errorf("Wrong customer payment days: %v", customers)
	}
}

// =============================================================================
// CONTRACTS
// =============================================================================

func TestContract_OpenEndedAndClosed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	customerID, _ := store.SaveCustomer(ctx, Customer{Name: "Mueller", PaymentDay: 1})

	openID, err := store.SaveContract(ctx, Contract{
		Reference: "ref-open", CustomerID: customerID,
		StartsOn: date(2025, time.January, 1), Notes: "ongoing",
	})
	if err != nil {
		t.Fatalf("Failed to save contract: %v", err)
	}
	end := date(2025, time.June, 30)
	closedID, err := store.SaveContract(ctx, Contract{
		Reference: "ref-closed", CustomerID: customerID,
		StartsOn: date(2025, time.January, 1), EndsOn: &end,
	})
	if err != nil {
		t.Fatalf("Failed to save contract: %v", err)
	}

	open, _ := store.GetContract(ctx, openID)
	if open.EndsOn != nil {
		t.Errorf("Expected open-ended contract, got end %v", open.EndsOn)
	}
	if open.Notes != "ongoing" || open.Reference != "ref-open" {
		t.Errorf("Contract fields lost: %+v", open)
	}

	closed, _ := store.GetContract(ctx, closedID)
	if closed.EndsOn == nil || !closed.EndsOn.Equal(end) {
		t.Errorf("Expected end %s, got %v", end, closed.EndsOn)
	}
}

func TestContract_DuplicateReferenceRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	customerID, _ := store.SaveCustomer(ctx, Customer{Name: "Mueller", PaymentDay: 1})
	first := Contract{Reference: "ref-1", CustomerID: customerID, StartsOn: date(2025, time.January, 1)}
	if _, err := store.SaveContract(ctx, first); err != nil {
		t.Fatalf("Failed to save contract: %v", err)
	}
	if _, err := store.SaveContract(ctx, first); err == nil {
		t.Fatal("Expected unique constraint error for duplicate reference")
	}
}

// =============================================================================
// RESET
// =============================================================================

func TestReset_ClearsAllTables(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	teacherID, groupID, _ := seedLessonFixture(t, store)

	_, err := store.SaveLesson(ctx, Lesson{
		TeacherID: teacherID, GroupID: groupID, DurationMinutes: 60,
		WageRate: mustDecimal(t, "24"), UsesHourlyWage: true,
		Date: date(2025, time.March, 10),
	})
	if err != nil {
		t.Fatalf("Failed to save lesson: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}

	teachers, _ := store.ListTeachers(ctx)
	lessons, _ := store.ListLessons(ctx, nil, nil)
	groups, _ := store.ListGroups(ctx)
	if len(teachers) != 0 || len(lessons) != 0 || len(groups) != 0 {
		t.Fatalf("Reset left data behind: %d teachers, %d lessons, %d groups",
			len(teachers), len(lessons), len(groups))
	}
}
