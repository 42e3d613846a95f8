package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernwerk/backoffice/billing"
)

func pair(teacher billing.TeacherID, customer billing.CustomerID, lessons int, minutes int, cost string) *billing.PairAggregate {
	ids := make([]billing.LessonID, lessons)
	for i := range ids {
		nextLessonID++
		ids[i] = nextLessonID
	}
	return &billing.PairAggregate{
		Key:             billing.PairKey{Teacher: teacher, Customer: customer},
		LessonIDs:       ids,
		DurationMinutes: minutes,
		Cost:            billing.MustParseDecimal(cost),
	}
}

func TestAssembleTable_SortsPartiesAscending(t *testing.T) {
	// GIVEN: Unordered teacher and customer ids, including the student column
	// THEN: Rows and columns come out ascending, student column last

	pairs := map[billing.PairKey]*billing.PairAggregate{}
	for _, p := range []*billing.PairAggregate{
		pair(30, 2, 1, 45, "10.0000"),
		pair(4, billing.NoCustomer, 1, 60, "20.0000"),
		pair(4, 11, 2, 90, "40.0000"),
	} {
		pairs[p.Key] = p
	}

	table := billing.AssembleTable(
		time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
		[]billing.TeacherID{30, 4},
		[]billing.CustomerID{2, billing.NoCustomer, 11},
		pairs,
		map[billing.TeacherID]billing.PaymentDue{4: {SubjectID: 4}, 30: {SubjectID: 30}},
		map[billing.CustomerID]billing.PaymentDue{2: {SubjectID: 2}, 11: {SubjectID: 11}},
	)

	assert.Equal(t, []billing.TeacherID{4, 30}, table.Teachers)
	assert.Equal(t, []billing.CustomerID{2, 11, billing.NoCustomer}, table.Customers)

	// Cells follow the sorted axes.
	require.NotNil(t, table.Cells[1][0])
	assert.Equal(t, billing.TeacherID(30), table.Cells[1][0].Key.Teacher)
	require.NotNil(t, table.Cells[0][2])
	assert.Equal(t, billing.NoCustomer, table.Cells[0][2].Key.Customer)
	assert.Nil(t, table.Cells[1][1], "teacher 30 gave no lessons for customer 11")
}

func TestAssembleTable_Totals(t *testing.T) {
	pairs := map[billing.PairKey]*billing.PairAggregate{}
	for _, p := range []*billing.PairAggregate{
		pair(1, 7, 2, 120, "40.0000"),
		pair(1, 8, 1, 45, "15.0000"),
		pair(2, 7, 3, 180, "66.6667"),
	} {
		pairs[p.Key] = p
	}

	table := billing.AssembleTable(
		time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
		[]billing.TeacherID{1, 2},
		[]billing.CustomerID{7, 8},
		pairs,
		map[billing.TeacherID]billing.PaymentDue{1: {}, 2: {}},
		map[billing.CustomerID]billing.PaymentDue{7: {}, 8: {}},
	)

	// Teacher 1 row: 40 + 15.
	assert.Equal(t, 3, table.TeacherTotals[0].Lessons)
	assert.Equal(t, 165, table.TeacherTotals[0].DurationMinutes)
	assert.True(t, table.TeacherTotals[0].Cost.Equal(billing.MustParseDecimal("55")))

	// Customer 7 column: 40 + 66.6667.
	assert.Equal(t, 5, table.CustomerTotals[0].Lessons)
	assert.Equal(t, 300, table.CustomerTotals[0].DurationMinutes)
	assert.True(t, table.CustomerTotals[0].Cost.Equal(billing.MustParseDecimal("106.6667")))

	assert.Equal(t, 6, table.GrandTotal.Lessons)
	assert.Equal(t, 345, table.GrandTotal.DurationMinutes)
	assert.True(t, table.GrandTotal.Cost.Equal(billing.MustParseDecimal("121.6667")))
}

func TestAssembleTable_DuplicateIDs_Panic(t *testing.T) {
	asOf := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)

	assert.Panics(t, func() {
		billing.AssembleTable(asOf,
			[]billing.TeacherID{1, 1},
			nil, nil, nil, nil,
		)
	})
	assert.Panics(t, func() {
		billing.AssembleTable(asOf,
			nil,
			[]billing.CustomerID{7, 7}, nil, nil, nil,
		)
	})
}
