/*
cycle.go - Billing-cycle resolution

PURPOSE:
  Computes the half-open [Start, End) interval of the billing cycle that a
  reference date falls into, given a party's payment day of month (1-31).

KEY CONCEPTS:
  - Payment day: the day of month a teacher is paid / a customer is invoiced
  - Cycle: the interval between two consecutive occurrences of that day
  - Skip-forward clamp: a payment day that does not exist in a short month
    (e.g. day 30 in February) resolves to the 1st of the FOLLOWING month,
    not to the short month's last day

CLAMP RULE:
  The skip-forward clamp is deliberate, inherited behavior. Clamping to the
  last day of the short month would be the more common convention, but the
  billing history of this business was produced with the skip-forward rule,
  so changing it would shift cycle boundaries under existing invoices. The
  rule is pinned by tests in cycle_test.go.

INVARIANT:
  For every payment day 1..31 and every reference date:
    Start <= reference < End
  A reference date on the payment day itself belongs to the cycle STARTING
  that day.

SEE ALSO:
  - engine.go: Resolves one cycle per teacher and per customer
*/
package billing

import (
	"fmt"
	"time"
)

// =============================================================================
// CYCLE - Half-open billing interval
// =============================================================================

// Cycle is one billing cycle: [Start, End). Both bounds are midnight UTC.
type Cycle struct {
	Start time.Time // inclusive
	End   time.Time // exclusive
}

// Contains reports whether the given date falls inside the cycle.
func (c Cycle) Contains(t time.Time) bool {
	t = dateOnly(t)
	return !t.Before(c.Start) && t.Before(c.End)
}

// DueDate is the day payment for this cycle is due: the last day of the
// cycle, i.e. End minus one day.
func (c Cycle) DueDate() time.Time {
	return c.End.AddDate(0, 0, -1)
}

func (c Cycle) String() string {
	return "[" + c.Start.Format("2006-01-02") + ", " + c.End.Format("2006-01-02") + ")"
}

// =============================================================================
// CYCLE RESOLUTION
// =============================================================================

// CycleFor returns the billing cycle containing ref for the given payment
// day. A payment day outside 1..31 is a caller bug and panics.
//
// The nominal start month is the month before ref when ref's day precedes
// the payment day, otherwise ref's own month. Start and End are the payment
// day resolved in the nominal month and the month after it, each subject to
// the skip-forward clamp.
func CycleFor(paymentDay int, ref time.Time) Cycle {
	if paymentDay < 1 || paymentDay > 31 {
		panic(fmt.Sprintf("billing: payment day %d outside 1..31", paymentDay))
	}
	ref = dateOnly(ref)

	year, month := ref.Year(), ref.Month()
	if ref.Day() < paymentDay {
		// Still inside the cycle that began last month.
		month--
	}

	return Cycle{
		Start: resolvePaymentDate(paymentDay, year, month),
		End:   resolvePaymentDate(paymentDay, year, month+1),
	}
}

// resolvePaymentDate places the payment day in the given month, applying the
// skip-forward clamp when the month is too short. time.Date normalizes
// out-of-range months, so callers may pass e.g. month 0 or 13.
func resolvePaymentDate(paymentDay int, year int, month time.Month) time.Time {
	if paymentDay <= daysInMonth(year, month) {
		return time.Date(year, month, paymentDay, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
