/*
reports.go - Lesson-table report endpoint

PURPOSE:
  Bridges the REST surface and the billing engine: loads a consistent
  snapshot from the store, runs the aggregation, and serializes the
  resulting table.

ENDPOINT:
  GET /api/reports/lesson-table?from=YYYY-MM-DD&to=YYYY-MM-DD
  Both bounds optional; the window is half-open [from, to).

ERROR MAPPING:
  A lesson referencing a party without billing configuration aborts the
  whole report with 409 and the offending party in the body. No partial
  tables are ever returned.

SEE ALSO:
  - billing/engine.go: The aggregation itself
  - handlers.go: Shared helpers (writeJSON, queryWindow)
*/
package api

import (
	"errors"
	"net/http"

	"github.com/lernwerk/backoffice/billing"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// LessonTableDTO is the serialized report. Rows are teachers, columns are
// customers; the customer-less student column, when present, is last and
// has a null id and no payment due.
type LessonTableDTO struct {
	AsOf      string         `json:"as_of"`
	Teachers  []TableRowDTO  `json:"teachers"`
	Customers []TableColDTO  `json:"customers"`
	Cells     [][]*CellDTO   `json:"cells"`
	Grand     TableTotalDTO  `json:"grand_total"`
}

// TableRowDTO is one teacher row with its total and payment due.
type TableRowDTO struct {
	TeacherID int64         `json:"teacher_id"`
	Total     TableTotalDTO `json:"total"`
	Due       PaymentDueDTO `json:"payment_due"`
}

// TableColDTO is one customer column. CustomerID is null for the student
// column, which also carries no payment due.
type TableColDTO struct {
	CustomerID *int64         `json:"customer_id"`
	Total      TableTotalDTO  `json:"total"`
	Due        *PaymentDueDTO `json:"payment_due,omitempty"`
}

// CellDTO is one (teacher, customer) aggregate; null cells mean no lessons.
type CellDTO struct {
	LessonIDs       []int64 `json:"lesson_ids"`
	DurationMinutes int     `json:"duration_minutes"`
	Cost            string  `json:"cost"`
}

// TableTotalDTO is a row, column, or grand total.
type TableTotalDTO struct {
	Lessons         int    `json:"lessons"`
	DurationMinutes int    `json:"duration_minutes"`
	Cost            string `json:"cost"`
}

// PaymentDueDTO is what a party owes or is owed for their current cycle.
type PaymentDueDTO struct {
	CycleStart string `json:"cycle_start"`
	CycleEnd   string `json:"cycle_end"`
	DueDate    string `json:"due_date"`
	Cost       string `json:"cost"`
}

// =============================================================================
// HANDLER
// =============================================================================

// LessonTable builds the lesson-table report for the requested window.
func (h *Handler) LessonTable(w http.ResponseWriter, r *http.Request) {
	from, to, ok := queryWindow(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	lessons, err := h.Store.LessonRows(ctx, nil, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load lessons", err)
		return
	}
	teacherDays, customerDays, err := h.Store.PaymentDays(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payment days", err)
		return
	}

	table, err := billing.Aggregate(billing.AggregateInput{
		Lessons:             lessons,
		TeacherPaymentDays:  teacherDays,
		CustomerPaymentDays: customerDays,
		WindowStart:         from,
		WindowEnd:           to,
		AsOf:                h.now(),
	})
	if err != nil {
		var missing *billing.MissingBillingConfigError
		if errors.As(err, &missing) {
			resp := ErrorResponse{
				Error:   missing.Error(),
				Code:    "missing_billing_config",
				Details: missing.Error(),
			}
			writeJSON(w, http.StatusConflict, resp)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to build lesson table", err)
		return
	}

	writeJSON(w, http.StatusOK, toLessonTableDTO(table))
}

// =============================================================================
// CONVERSION
// =============================================================================

func toLessonTableDTO(t *billing.LessonTable) LessonTableDTO {
	dto := LessonTableDTO{
		AsOf:  t.AsOf.Format("2006-01-02"),
		Grand: toTotalDTO(t.GrandTotal),
	}

	dto.Teachers = make([]TableRowDTO, len(t.Teachers))
	for i, id := range t.Teachers {
		dto.Teachers[i] = TableRowDTO{
			TeacherID: int64(id),
			Total:     toTotalDTO(t.TeacherTotals[i]),
			Due:       toPaymentDueDTO(t.TeacherDues[i]),
		}
	}

	dto.Customers = make([]TableColDTO, len(t.Customers))
	for j, id := range t.Customers {
		col := TableColDTO{Total: toTotalDTO(t.CustomerTotals[j])}
		if id != billing.NoCustomer {
			cid := int64(id)
			col.CustomerID = &cid
		}
		if t.CustomerDues[j] != nil {
			due := toPaymentDueDTO(*t.CustomerDues[j])
			col.Due = &due
		}
		dto.Customers[j] = col
	}

	dto.Cells = make([][]*CellDTO, len(t.Cells))
	for i, row := range t.Cells {
		dtoRow := make([]*CellDTO, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			ids := make([]int64, len(cell.LessonIDs))
			for k, lid := range cell.LessonIDs {
				ids[k] = int64(lid)
			}
			dtoRow[j] = &CellDTO{
				LessonIDs:       ids,
				DurationMinutes: cell.DurationMinutes,
				Cost:            cell.Cost.StringFixed(4),
			}
		}
		dto.Cells[i] = dtoRow
	}

	return dto
}

func toTotalDTO(t billing.Total) TableTotalDTO {
	return TableTotalDTO{
		Lessons:         t.Lessons,
		DurationMinutes: t.DurationMinutes,
		Cost:            t.Cost.StringFixed(4),
	}
}

func toPaymentDueDTO(d billing.PaymentDue) PaymentDueDTO {
	return PaymentDueDTO{
		CycleStart: d.Cycle.Start.Format("2006-01-02"),
		CycleEnd:   d.Cycle.End.Format("2006-01-02"),
		DueDate:    d.DueDate.Format("2006-01-02"),
		Cost:       d.Cost.StringFixed(4),
	}
}
