/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DECIMALS:
  Every monetary field is a STRING holding an exact decimal rendering with
  4 fractional digits. Costs never travel as JSON numbers; float64 cannot
  represent them exactly.

VALIDATION:
  Request types carry validator/v10 struct tags; handlers run the shared
  validator instance before touching the store.

SEE ALSO:
  - handlers.go: Uses these types
  - reports.go: Lesson-table response types
*/
package api

import (
	"time"

	"github.com/lernwerk/backoffice/store/sqlite"
)

// =============================================================================
// ENTITY TYPES
// =============================================================================

// TeacherDTO represents a teacher in API responses.
type TeacherDTO struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	WageRate       string `json:"wage_rate"`
	UsesHourlyWage bool   `json:"uses_hourly_wage"`
	PaymentDay     int    `json:"payment_day"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// CreateTeacherRequest is the request to create or update a teacher.
type CreateTeacherRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	WageRate       string `json:"wage_rate" validate:"required"`
	UsesHourlyWage *bool  `json:"uses_hourly_wage" validate:"required"`
	PaymentDay     int    `json:"payment_day" validate:"required,min=1,max=31"`
}

// CustomerDTO represents a paying customer in API responses.
type CustomerDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	PaymentDay int    `json:"payment_day"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// CreateCustomerRequest is the request to create or update a customer.
type CreateCustomerRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	PaymentDay int    `json:"payment_day" validate:"required,min=1,max=31"`
}

// StudentDTO represents a student in API responses.
type StudentDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CustomerID *int64 `json:"customer_id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// CreateStudentRequest is the request to create a student.
type CreateStudentRequest struct {
	Name       string `json:"name" validate:"required"`
	CustomerID *int64 `json:"customer_id" validate:"omitempty,min=1"`
}

// GroupDTO represents a teaching group. A null customer_id marks a
// student-only group; its lessons have no paying customer.
type GroupDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CustomerID *int64 `json:"customer_id"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// CreateGroupRequest is the request to create a group.
type CreateGroupRequest struct {
	Name       string `json:"name" validate:"required"`
	CustomerID *int64 `json:"customer_id" validate:"omitempty,min=1"`
}

// AddGroupMemberRequest links a student to a group.
type AddGroupMemberRequest struct {
	StudentID int64 `json:"student_id" validate:"required,min=1"`
}

// LessonDTO represents a logged lesson. The wage fields are the snapshot
// taken when the lesson was booked.
type LessonDTO struct {
	ID              int64  `json:"id"`
	TeacherID       int64  `json:"teacher_id"`
	GroupID         int64  `json:"group_id"`
	DurationMinutes int    `json:"duration_minutes"`
	WageRate        string `json:"wage_rate"`
	UsesHourlyWage  bool   `json:"uses_hourly_wage"`
	Date            string `json:"date"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// CreateLessonRequest is the request to log a lesson. The wage snapshot is
// filled server-side from the teacher's current configuration.
type CreateLessonRequest struct {
	TeacherID       int64  `json:"teacher_id" validate:"required,min=1"`
	GroupID         int64  `json:"group_id" validate:"required,min=1"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1"`
	Date            string `json:"date" validate:"required"`
}

// ContractDTO represents a customer contract.
type ContractDTO struct {
	ID         int64   `json:"id"`
	Reference  string  `json:"reference"`
	CustomerID int64   `json:"customer_id"`
	StartsOn   string  `json:"starts_on"`
	EndsOn     *string `json:"ends_on,omitempty"`
	Notes      string  `json:"notes,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// CreateContractRequest is the request to create a contract. The reference
// number is generated server-side.
type CreateContractRequest struct {
	CustomerID int64   `json:"customer_id" validate:"required,min=1"`
	StartsOn   string  `json:"starts_on" validate:"required"`
	EndsOn     *string `json:"ends_on"`
	Notes      string  `json:"notes"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the demo scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toTeacherDTO(t *sqlite.Teacher) TeacherDTO {
	return TeacherDTO{
		ID:             t.ID,
		Name:           t.Name,
		Email:          t.Email,
		WageRate:       t.WageRate.StringFixed(4),
		UsesHourlyWage: t.UsesHourlyWage,
		PaymentDay:     t.PaymentDay,
		CreatedAt:      formatCreatedAt(t.CreatedAt),
	}
}

func toCustomerDTO(c *sqlite.Customer) CustomerDTO {
	return CustomerDTO{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		PaymentDay: c.PaymentDay,
		CreatedAt:  formatCreatedAt(c.CreatedAt),
	}
}

func toStudentDTO(st *sqlite.Student) StudentDTO {
	return StudentDTO{
		ID:         st.ID,
		Name:       st.Name,
		CustomerID: st.CustomerID,
		CreatedAt:  formatCreatedAt(st.CreatedAt),
	}
}

func toGroupDTO(g *sqlite.Group) GroupDTO {
	return GroupDTO{
		ID:         g.ID,
		Name:       g.Name,
		CustomerID: g.CustomerID,
		CreatedAt:  formatCreatedAt(g.CreatedAt),
	}
}

func toLessonDTO(l *sqlite.Lesson) LessonDTO {
	return LessonDTO{
		ID:              l.ID,
		TeacherID:       l.TeacherID,
		GroupID:         l.GroupID,
		DurationMinutes: l.DurationMinutes,
		WageRate:        l.WageRate.StringFixed(4),
		UsesHourlyWage:  l.UsesHourlyWage,
		Date:            l.Date.Format("2006-01-02"),
		CreatedAt:       formatCreatedAt(l.CreatedAt),
	}
}

func toContractDTO(c *sqlite.Contract) ContractDTO {
	dto := ContractDTO{
		ID:         c.ID,
		Reference:  c.Reference,
		CustomerID: c.CustomerID,
		StartsOn:   c.StartsOn.Format("2006-01-02"),
		Notes:      c.Notes,
		CreatedAt:  formatCreatedAt(c.CreatedAt),
	}
	if c.EndsOn != nil {
		formatted := c.EndsOn.Format("2006-01-02")
		dto.EndsOn = &formatted
	}
	return dto
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
