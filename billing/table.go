/*
table.go - Lesson-table layout

PURPOSE:
  Arranges per-pair aggregates into the final 2-D report: teachers as rows,
  customers as columns, a totals column per teacher, a totals row per
  customer, a grand total, and payment-due entries per party.

ORDERING:
  Teachers and customers are sorted by ascending id. The customer-less
  column (student-only groups) always comes last. The layout is fully
  deterministic for identical input.

TOTALS SEMANTICS:
  Row and column totals are reductions over ALREADY-ROUNDED per-pair costs,
  exactly like a spreadsheet summing its visible cells. They are not
  re-derived from padded values; the padded sum guards per-pair precision,
  the totals then add exact CostScale-digit decimals.

SEE ALSO:
  - engine.go: Produces the inputs and invokes AssembleTable
*/
package billing

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TABLE VALUE OBJECTS
// =============================================================================

// PairKey identifies one (teacher, customer) cell of the table.
type PairKey struct {
	Teacher  TeacherID
	Customer CustomerID // NoCustomer for the student-only column
}

// PairAggregate is the content of one table cell: every lesson the teacher
// gave for that customer inside the reporting window.
type PairAggregate struct {
	Key PairKey

	// LessonIDs in ascending order.
	LessonIDs []LessonID

	DurationMinutes int
	Cost            decimal.Decimal
}

// Total is a pure reduction over a row or column of aggregates.
type Total struct {
	Lessons         int
	DurationMinutes int
	Cost            decimal.Decimal
}

func (t Total) add(a *PairAggregate) Total {
	return Total{
		Lessons:         t.Lessons + len(a.LessonIDs),
		DurationMinutes: t.DurationMinutes + a.DurationMinutes,
		Cost:            t.Cost.Add(a.Cost),
	}
}

// PaymentDue is what one party owes (customer) or is owed (teacher) for
// their own current billing cycle, independent of the reporting window.
type PaymentDue struct {
	SubjectID int64
	Cycle     Cycle
	DueDate   time.Time
	Cost      decimal.Decimal
}

// LessonTable is the assembled report. All slices indexed per party are
// aligned with Teachers / Customers respectively.
type LessonTable struct {
	AsOf time.Time

	Teachers  []TeacherID  // ascending
	Customers []CustomerID // ascending, NoCustomer last when present

	// Cells[i][j] holds the aggregate for Teachers[i] x Customers[j],
	// or nil when that pair had no lessons in the window.
	Cells [][]*PairAggregate

	TeacherTotals  []Total // per teacher row
	CustomerTotals []Total // per customer column
	GrandTotal     Total

	TeacherDues []PaymentDue

	// CustomerDues[j] is nil for the customer-less column, which has
	// nobody to invoice.
	CustomerDues []*PaymentDue
}

// HasStudentColumn reports whether the table carries a customer-less column.
func (t *LessonTable) HasStudentColumn() bool {
	n := len(t.Customers)
	return n > 0 && t.Customers[n-1] == NoCustomer
}

// =============================================================================
// ASSEMBLER
// =============================================================================

// AssembleTable lays out per-pair aggregates and payment-due entries as a
// LessonTable and computes all totals. Pure: no I/O, no failure modes beyond
// contract violations. Duplicate ids in the teacher or customer lists are a
// caller bug and panic.
func AssembleTable(
	asOf time.Time,
	teachers []TeacherID,
	customers []CustomerID,
	pairs map[PairKey]*PairAggregate,
	teacherDues map[TeacherID]PaymentDue,
	customerDues map[CustomerID]PaymentDue,
) *LessonTable {
	teachers = sortedTeachers(teachers)
	customers = sortedCustomers(customers)

	table := &LessonTable{
		AsOf:      dateOnly(asOf),
		Teachers:  teachers,
		Customers: customers,
	}

	zero := Total{Cost: decimal.Zero}
	table.TeacherTotals = make([]Total, len(teachers))
	table.CustomerTotals = make([]Total, len(customers))
	for i := range table.TeacherTotals {
		table.TeacherTotals[i] = zero
	}
	for j := range table.CustomerTotals {
		table.CustomerTotals[j] = zero
	}
	table.GrandTotal = zero

	table.Cells = make([][]*PairAggregate, len(teachers))
	for i, teacher := range teachers {
		row := make([]*PairAggregate, len(customers))
		for j, customer := range customers {
			agg, ok := pairs[PairKey{Teacher: teacher, Customer: customer}]
			if !ok {
				continue
			}
			row[j] = agg
			table.TeacherTotals[i] = table.TeacherTotals[i].add(agg)
			table.CustomerTotals[j] = table.CustomerTotals[j].add(agg)
			table.GrandTotal = table.GrandTotal.add(agg)
		}
		table.Cells[i] = row
	}

	table.TeacherDues = make([]PaymentDue, len(teachers))
	for i, teacher := range teachers {
		table.TeacherDues[i] = teacherDues[teacher]
	}
	table.CustomerDues = make([]*PaymentDue, len(customers))
	for j, customer := range customers {
		if customer == NoCustomer {
			continue
		}
		due := customerDues[customer]
		table.CustomerDues[j] = &due
	}

	return table
}

func sortedTeachers(ids []TeacherID) []TeacherID {
	out := make([]TeacherID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	for i := 1; i < len(out); i++ {
		if out[i] == out[i-1] {
			panic(fmt.Sprintf("billing: duplicate teacher id %d", out[i]))
		}
	}
	return out
}

func sortedCustomers(ids []CustomerID) []CustomerID {
	out := make([]CustomerID, len(ids))
	copy(out, ids)
	// Ascending by id, but the customer-less column sorts last.
	sort.Slice(out, func(i, j int) bool {
		if out[i] == NoCustomer {
			return false
		}
		if out[j] == NoCustomer {
			return true
		}
		return out[i] < out[j]
	})
	for i := 1; i < len(out); i++ {
		if out[i] == out[i-1] {
			panic(fmt.Sprintf("billing: duplicate customer id %d", out[i]))
		}
	}
	return out
}
