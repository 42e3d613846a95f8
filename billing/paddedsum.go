/*
paddedsum.go - Precision-preserving cost summation

PURPOSE:
  Sums the monetary cost of a set of lessons without accumulating rounding
  error. The naive calculation

      cost = duration / divisor * rate     (divisor 60 or 45)

  rounds once per lesson; with both divisors sharing the factor 3, those
  per-lesson errors do not cancel and the sum drifts.

THE PADDED SUM:
  LCM(60, 45) = 180. Instead of dividing per lesson, each contribution is
  PADDED up to the common denominator:

      hourly:    duration * rate * 3      (180 / 60)
      academic:  duration * rate * 4      (180 / 45)

  Multiplication by an integer is exact for decimals, so the running sum
  stays exact. A single division by 180 at the very end, rounded
  half-to-even at CostScale digits, produces the final cost.

GUARANTEE:
  The result equals the infinite-precision sum of per-lesson costs rounded
  ONCE, and is invariant under permutation of the input.

SEE ALSO:
  - engine.go: Uses one accumulator per (teacher, customer) pair
*/
package billing

import "github.com/shopspring/decimal"

// =============================================================================
// COST ACCUMULATOR
// =============================================================================

// CostAccumulator sums lesson costs via the padded-sum technique.
// The zero value is an empty accumulator, ready for use.
type CostAccumulator struct {
	padded decimal.Decimal
}

// Add folds one lesson into the running padded sum. Exact: no division,
// no rounding.
func (a *CostAccumulator) Add(l LessonRecord) {
	factor := padMinutes / HourlyMinutes // 3
	if !l.UsesHourlyWage {
		factor = padMinutes / AcademicMinutes // 4
	}
	contribution := l.WageRate.Mul(decimal.NewFromInt(int64(l.DurationMinutes * factor)))
	a.padded = a.padded.Add(contribution)
}

// Total performs the single deferred division by 180 and rounds half-to-even
// to CostScale fractional digits.
//
// DivRound carries CostScale+4 digits, enough that the quotient is exact
// whenever the true value sits on a rounding boundary, so RoundBank decides
// every tie correctly.
func (a *CostAccumulator) Total() decimal.Decimal {
	return a.padded.
		DivRound(decimal.NewFromInt(padMinutes), CostScale+4).
		RoundBank(CostScale)
}

// LessonCost sums the given lessons in one shot.
func LessonCost(lessons []LessonRecord) decimal.Decimal {
	var acc CostAccumulator
	for _, l := range lessons {
		acc.Add(l)
	}
	return acc.Total()
}
