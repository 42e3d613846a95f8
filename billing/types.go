/*
Package billing provides the lesson-table aggregation engine.

PURPOSE:
  This package contains the core computation of the back office: turning raw
  lesson rows into the teacher/customer billing table. It groups lessons by
  (teacher, customer) pair, sums durations and monetary costs without
  compounding rounding error, resolves each party's billing cycle from their
  payment day, and lays everything out as a deterministic 2-D report.

KEY CONCEPTS IN THIS FILE (types.go):
  - LessonRecord: An immutable raw lesson row (input)
  - TeacherID/CustomerID/LessonID: Type-safe identifiers
  - Wage divisors: hourly lessons bill per 60 minutes, academic per 45

DESIGN PRINCIPLES:
  1. Purity: The engine does no I/O; it consumes an in-memory snapshot
  2. Precision: Uses decimal.Decimal and the padded-sum technique so the
     only rounding happens once, at the very end
  3. Determinism: Identical input always yields an identical table
  4. All-or-nothing: Inconsistent input aborts the whole table build

USAGE:
  table, err := billing.Aggregate(billing.AggregateInput{
      Lessons:             rows,
      TeacherPaymentDays:  map[billing.TeacherID]int{1: 15},
      CustomerPaymentDays: map[billing.CustomerID]int{7: 1},
      AsOf:                time.Now(),
  })

SEE ALSO:
  - cycle.go: Billing-cycle resolution from payment days
  - paddedsum.go: Precision-preserving cost summation
  - engine.go: Grouping and aggregation
  - table.go: Final table layout
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TeacherID int64
type CustomerID int64
type LessonID int64

// NoCustomer marks a lesson given to a student-only group, i.e. one with no
// paying customer behind it. Real customer ids are always >= 1.
const NoCustomer CustomerID = 0

// =============================================================================
// WAGE ARITHMETIC CONSTANTS
// =============================================================================

// CostScale is the number of fractional digits carried by monetary values.
// Wage rates are stored with this scale and every final cost is rounded to it.
const CostScale = 4

const (
	// HourlyMinutes is the billing divisor for hourly wages.
	HourlyMinutes = 60

	// AcademicMinutes is the billing divisor for academic wages
	// (a teaching unit of 45 minutes).
	AcademicMinutes = 45

	// padMinutes is LCM(HourlyMinutes, AcademicMinutes). Padding every
	// contribution up to this common denominator turns the per-lesson
	// division into an exact multiplication; see paddedsum.go.
	padMinutes = 180
)

// =============================================================================
// LESSON RECORD - Raw input row
// =============================================================================

// LessonRecord is one raw lesson as materialized by the persistence layer.
// The wage fields are a snapshot of the teacher's rate at booking time, so
// later rate changes never rewrite past billing.
type LessonRecord struct {
	LessonID  LessonID
	TeacherID TeacherID

	// CustomerID is NoCustomer when the lesson went to a student-only group.
	CustomerID CustomerID

	// DurationMinutes is always > 0.
	DurationMinutes int

	// WageRate is the money per billing unit: per 60 minutes when
	// UsesHourlyWage is set, per 45 minutes otherwise.
	WageRate       decimal.Decimal
	UsesHourlyWage bool

	// Date is the calendar day the lesson took place; time of day is ignored.
	Date time.Time
}

// MustParseDecimal parses a decimal string, returning zero on failure.
// Intended for constants and tests, not for untrusted input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// dateOnly strips the time-of-day component, normalizing to midnight UTC.
// All date comparisons inside the engine run on normalized dates.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
