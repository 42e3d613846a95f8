/*
engine.go - Lesson aggregation engine

PURPOSE:
  The orchestrating computation: filters lessons to the reporting window,
  groups them by (teacher, customer) pair, drives the padded-sum accumulator
  per group, resolves each party's billing cycle, and assembles the final
  table.

PIPELINE:
  1. Validate caller contract (window order, payment-day ranges) - panics
  2. Verify every referenced party has a payment day - error, no partial table
  3. Filter lessons to [WindowStart, WindowEnd), open-ended per side
  4. Group by pair; sum durations plainly, costs via padded sum
  5. Resolve each party's OWN cycle from AsOf and total the lessons inside
     it across the full (unfiltered) input - the payment-due entries
  6. Lay out via AssembleTable

CONCURRENCY:
  Pure and synchronous. Each call owns its input snapshot; any number of
  calls may run concurrently.

SEE ALSO:
  - cycle.go, paddedsum.go, table.go
*/
package billing

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// INPUT
// =============================================================================

// AggregateInput is one self-contained aggregation request. The caller is
// responsible for handing the engine a consistent snapshot (and for scoping
// it to a single tenant where that applies).
type AggregateInput struct {
	Lessons []LessonRecord

	// Payment day (1-31) per party. Every teacher referenced by a lesson
	// must appear in TeacherPaymentDays; every real customer in
	// CustomerPaymentDays.
	TeacherPaymentDays  map[TeacherID]int
	CustomerPaymentDays map[CustomerID]int

	// Optional reporting window [WindowStart, WindowEnd). A nil bound
	// leaves that side open.
	WindowStart *time.Time
	WindowEnd   *time.Time

	// AsOf is the reference date for billing-cycle resolution.
	// Zero means today.
	AsOf time.Time
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate builds the lesson table for one reporting request.
//
// Returns a *MissingBillingConfigError (wrapping ErrMissingBillingConfig)
// when a lesson references an unconfigured party; the table build is
// all-or-nothing. Contract violations panic; see errors.go.
func Aggregate(in AggregateInput) (*LessonTable, error) {
	if in.WindowStart != nil && in.WindowEnd != nil && in.WindowEnd.Before(*in.WindowStart) {
		panic(fmt.Sprintf("billing: reporting window end %s before start %s",
			in.WindowEnd.Format("2006-01-02"), in.WindowStart.Format("2006-01-02")))
	}
	for id, day := range in.TeacherPaymentDays {
		if day < 1 || day > 31 {
			panic(fmt.Sprintf("billing: payment day %d for teacher %d outside 1..31", day, id))
		}
	}
	for id, day := range in.CustomerPaymentDays {
		if day < 1 || day > 31 {
			panic(fmt.Sprintf("billing: payment day %d for customer %d outside 1..31", day, id))
		}
	}

	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	// Lesson-id order makes grouping, lesson-id sequences, and the first
	// reported configuration error deterministic.
	lessons := make([]LessonRecord, len(in.Lessons))
	copy(lessons, in.Lessons)
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].LessonID < lessons[j].LessonID })

	for _, l := range lessons {
		if _, ok := in.TeacherPaymentDays[l.TeacherID]; !ok {
			return nil, &MissingBillingConfigError{Kind: PartyTeacher, ID: int64(l.TeacherID)}
		}
		if l.CustomerID != NoCustomer {
			if _, ok := in.CustomerPaymentDays[l.CustomerID]; !ok {
				return nil, &MissingBillingConfigError{Kind: PartyCustomer, ID: int64(l.CustomerID)}
			}
		}
	}

	windowed := filterWindow(lessons, in.WindowStart, in.WindowEnd)

	// Group by (teacher, customer) pair.
	pairs := make(map[PairKey]*PairAggregate)
	accs := make(map[PairKey]*CostAccumulator)
	for _, l := range windowed {
		key := PairKey{Teacher: l.TeacherID, Customer: l.CustomerID}
		agg, ok := pairs[key]
		if !ok {
			agg = &PairAggregate{Key: key}
			pairs[key] = agg
			accs[key] = &CostAccumulator{}
		}
		agg.LessonIDs = append(agg.LessonIDs, l.LessonID)
		agg.DurationMinutes += l.DurationMinutes
		accs[key].Add(l)
	}
	for key, agg := range pairs {
		agg.Cost = accs[key].Total()
	}

	// The table lists the parties present in the window.
	teacherSet := make(map[TeacherID]bool)
	customerSet := make(map[CustomerID]bool)
	for key := range pairs {
		teacherSet[key.Teacher] = true
		customerSet[key.Customer] = true
	}

	teacherDues, customerDues := paymentDues(
		lessons, teacherSet, customerSet,
		in.TeacherPaymentDays, in.CustomerPaymentDays, asOf,
	)

	teachers := make([]TeacherID, 0, len(teacherSet))
	for id := range teacherSet {
		teachers = append(teachers, id)
	}
	customers := make([]CustomerID, 0, len(customerSet))
	for id := range customerSet {
		customers = append(customers, id)
	}

	return AssembleTable(asOf, teachers, customers, pairs, teacherDues, customerDues), nil
}

// paymentDues totals, for every listed party, the lessons falling inside
// that party's own current billing cycle. The cycle is anchored on asOf and
// deliberately ignores the reporting window: what a customer owes on their
// next payment day does not change because the report looked at last March.
func paymentDues(
	lessons []LessonRecord,
	teacherSet map[TeacherID]bool,
	customerSet map[CustomerID]bool,
	teacherDays map[TeacherID]int,
	customerDays map[CustomerID]int,
	asOf time.Time,
) (map[TeacherID]PaymentDue, map[CustomerID]PaymentDue) {

	teacherCycles := make(map[TeacherID]Cycle, len(teacherSet))
	teacherAccs := make(map[TeacherID]*CostAccumulator, len(teacherSet))
	for id := range teacherSet {
		teacherCycles[id] = CycleFor(teacherDays[id], asOf)
		teacherAccs[id] = &CostAccumulator{}
	}

	customerCycles := make(map[CustomerID]Cycle)
	customerAccs := make(map[CustomerID]*CostAccumulator)
	for id := range customerSet {
		if id == NoCustomer {
			continue
		}
		customerCycles[id] = CycleFor(customerDays[id], asOf)
		customerAccs[id] = &CostAccumulator{}
	}

	for _, l := range lessons {
		if acc, ok := teacherAccs[l.TeacherID]; ok && teacherCycles[l.TeacherID].Contains(l.Date) {
			acc.Add(l)
		}
		if acc, ok := customerAccs[l.CustomerID]; ok && customerCycles[l.CustomerID].Contains(l.Date) {
			acc.Add(l)
		}
	}

	teacherDues := make(map[TeacherID]PaymentDue, len(teacherAccs))
	for id, acc := range teacherAccs {
		cycle := teacherCycles[id]
		teacherDues[id] = PaymentDue{
			SubjectID: int64(id),
			Cycle:     cycle,
			DueDate:   cycle.DueDate(),
			Cost:      acc.Total(),
		}
	}
	customerDues := make(map[CustomerID]PaymentDue, len(customerAccs))
	for id, acc := range customerAccs {
		cycle := customerCycles[id]
		customerDues[id] = PaymentDue{
			SubjectID: int64(id),
			Cycle:     cycle,
			DueDate:   cycle.DueDate(),
			Cost:      acc.Total(),
		}
	}
	return teacherDues, customerDues
}

func filterWindow(lessons []LessonRecord, start, end *time.Time) []LessonRecord {
	if start == nil && end == nil {
		return lessons
	}
	out := make([]LessonRecord, 0, len(lessons))
	for _, l := range lessons {
		date := dateOnly(l.Date)
		if start != nil && date.Before(dateOnly(*start)) {
			continue
		}
		if end != nil && !date.Before(dateOnly(*end)) {
			continue
		}
		out = append(out, l)
	}
	return out
}
