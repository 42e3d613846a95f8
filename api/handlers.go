/*
handlers.go - HTTP API handlers for the back office

PURPOSE:
  Exposes the tutoring back office via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the store and the
  billing engine.

ENDPOINTS:
  Teachers:
    GET    /api/teachers               List all teachers
    POST   /api/teachers               Create teacher
    GET    /api/teachers/{id}          Get teacher
    PUT    /api/teachers/{id}          Update teacher
    DELETE /api/teachers/{id}          Delete teacher

  Customers, students, groups, lessons, contracts: same CRUD shape.

  Groups additionally:
    GET    /api/groups/{id}/members    List members
    POST   /api/groups/{id}/members    Add member
    DELETE /api/groups/{id}/members/{studentID}  Remove member

  Reports:
    GET    /api/reports/lesson-table   Build the lesson table (reports.go)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (validator/v10 tags on request DTOs)
  3. Call store / billing engine
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (missing billing configuration, duplicate reference)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - reports.go: Lesson-table report handler
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lernwerk/backoffice/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	validate *validator.Validate

	// now is the clock for billing-cycle resolution; tests pin it.
	now func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:    store,
		validate: validator.New(),
		now:      time.Now,
	}
}

// =============================================================================
// TEACHER HANDLERS
// =============================================================================

// ListTeachers returns all teachers.
func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.Store.ListTeachers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list teachers", err)
		return
	}

	dtos := make([]TeacherDTO, len(teachers))
	for i := range teachers {
		dtos[i] = toTeacherDTO(&teachers[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTeacher returns a single teacher.
func (h *Handler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	teacher, err := h.Store.GetTeacher(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get teacher", err)
		return
	}
	if teacher == nil {
		writeError(w, http.StatusNotFound, "Teacher not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toTeacherDTO(teacher))
}

// CreateTeacher creates a new teacher.
func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTeacher(w, r, h)
	if !ok {
		return
	}

	wageRate, err := decimal.NewFromString(req.WageRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid wage_rate (use a decimal string)", err)
		return
	}

	teacher := sqlite.Teacher{
		Name:           req.Name,
		Email:          req.Email,
		WageRate:       wageRate,
		UsesHourlyWage: *req.UsesHourlyWage,
		PaymentDay:     req.PaymentDay,
	}
	id, err := h.Store.SaveTeacher(r.Context(), teacher)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create teacher", err)
		return
	}

	teacher.ID = id
	writeJSON(w, http.StatusCreated, toTeacherDTO(&teacher))
}

// UpdateTeacher overwrites a teacher's configuration. Logged lessons keep
// their wage snapshot; only future lessons see the new rate.
func (h *Handler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeTeacher(w, r, h)
	if !ok {
		return
	}

	wageRate, err := decimal.NewFromString(req.WageRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid wage_rate (use a decimal string)", err)
		return
	}

	teacher := sqlite.Teacher{
		ID:             id,
		Name:           req.Name,
		Email:          req.Email,
		WageRate:       wageRate,
		UsesHourlyWage: *req.UsesHourlyWage,
		PaymentDay:     req.PaymentDay,
	}
	if err := h.Store.UpdateTeacher(r.Context(), teacher); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Teacher not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update teacher", err)
		return
	}
	writeJSON(w, http.StatusOK, toTeacherDTO(&teacher))
}

// DeleteTeacher removes a teacher.
func (h *Handler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "Teacher", h.Store.DeleteTeacher)
}

func decodeTeacher(w http.ResponseWriter, r *http.Request, h *Handler) (CreateTeacherRequest, bool) {
	var req CreateTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return req, false
	}
	return req, true
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns all customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}

	dtos := make([]CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = toCustomerDTO(&customers[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCustomer returns a single customer.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	customer, err := h.Store.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get customer", err)
		return
	}
	if customer == nil {
		writeError(w, http.StatusNotFound, "Customer not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(customer))
}

// CreateCustomer creates a new customer.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCustomer(w, r, h)
	if !ok {
		return
	}

	customer := sqlite.Customer{
		Name:       req.Name,
		Email:      req.Email,
		PaymentDay: req.PaymentDay,
	}
	id, err := h.Store.SaveCustomer(r.Context(), customer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create customer", err)
		return
	}

	customer.ID = id
	writeJSON(w, http.StatusCreated, toCustomerDTO(&customer))
}

// UpdateCustomer overwrites a customer's configuration.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeCustomer(w, r, h)
	if !ok {
		return
	}

	customer := sqlite.Customer{
		ID:         id,
		Name:       req.Name,
		Email:      req.Email,
		PaymentDay: req.PaymentDay,
	}
	if err := h.Store.UpdateCustomer(r.Context(), customer); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Customer not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update customer", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(&customer))
}

// DeleteCustomer removes a customer.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "Customer", h.Store.DeleteCustomer)
}

func decodeCustomer(w http.ResponseWriter, r *http.Request, h *Handler) (CreateCustomerRequest, bool) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return req, false
	}
	return req, true
}

// =============================================================================
// STUDENT HANDLERS
// =============================================================================

// ListStudents returns all students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}

	dtos := make([]StudentDTO, len(students))
	for i := range students {
		dtos[i] = toStudentDTO(&students[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStudent returns a single student.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	student, err := h.Store.GetStudent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(student))
}

// CreateStudent creates a new student, optionally linked to a customer.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	if req.CustomerID != nil {
		customer, err := h.Store.GetCustomer(r.Context(), *req.CustomerID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check customer", err)
			return
		}
		if customer == nil {
			writeError(w, http.StatusBadRequest, "Unknown customer_id", nil)
			return
		}
	}

	student := sqlite.Student{Name: req.Name, CustomerID: req.CustomerID}
	id, err := h.Store.SaveStudent(r.Context(), student)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create student", err)
		return
	}

	student.ID = id
	writeJSON(w, http.StatusCreated, toStudentDTO(&student))
}

// DeleteStudent removes a student and its group memberships.
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "Student", h.Store.DeleteStudent)
}

// =============================================================================
// GROUP HANDLERS
// =============================================================================

// ListGroups returns all groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Store.ListGroups(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list groups", err)
		return
	}

	dtos := make([]GroupDTO, len(groups))
	for i := range groups {
		dtos[i] = toGroupDTO(&groups[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetGroup returns a single group.
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	group, err := h.Store.GetGroup(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get group", err)
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "Group not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toGroupDTO(group))
}

// CreateGroup creates a new group. Omitting customer_id makes it a
// student-only group.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	if req.CustomerID != nil {
		customer, err := h.Store.GetCustomer(r.Context(), *req.CustomerID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check customer", err)
			return
		}
		if customer == nil {
			writeError(w, http.StatusBadRequest, "Unknown customer_id", nil)
			return
		}
	}

	group := sqlite.Group{Name: req.Name, CustomerID: req.CustomerID}
	id, err := h.Store.SaveGroup(r.Context(), group)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create group", err)
		return
	}

	group.ID = id
	writeJSON(w, http.StatusCreated, toGroupDTO(&group))
}

// DeleteGroup removes a group and its memberships.
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "Group", h.Store.DeleteGroup)
}

// ListGroupMembers returns the students in a group.
func (h *Handler) ListGroupMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	members, err := h.Store.ListGroupMembers(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list group members", err)
		return
	}

	dtos := make([]StudentDTO, len(members))
	for i := range members {
		dtos[i] = toStudentDTO(&members[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddGroupMember links a student to a group. Idempotent.
func (h *Handler) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req AddGroupMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	group, err := h.Store.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check group", err)
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "Group not found", nil)
		return
	}
	student, err := h.Store.GetStudent(r.Context(), req.StudentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check student", err)
		return
	}
	if student == nil {
		writeError(w, http.StatusBadRequest, "Unknown student_id", nil)
		return
	}

	if err := h.Store.AddGroupMember(r.Context(), groupID, req.StudentID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add group member", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group_id": groupID, "student_id": req.StudentID})
}

// RemoveGroupMember unlinks a student from a group.
func (h *Handler) RemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r)
	if !ok {
		return
	}
	studentID, err := strconv.ParseInt(chi.URLParam(r, "studentID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid student id", err)
		return
	}

	if err := h.Store.RemoveGroupMember(r.Context(), groupID, studentID); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Membership not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to remove group member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LESSON HANDLERS
// =============================================================================

// ListLessons returns lessons, optionally restricted to ?from=&to=
// (half-open date window, YYYY-MM-DD).
func (h *Handler) ListLessons(w http.ResponseWriter, r *http.Request) {
	from, to, ok := queryWindow(w, r)
	if !ok {
		return
	}

	lessons, err := h.Store.ListLessons(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list lessons", err)
		return
	}

	dtos := make([]LessonDTO, len(lessons))
	for i := range lessons {
		dtos[i] = toLessonDTO(&lessons[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLesson returns a single lesson.
func (h *Handler) GetLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	lesson, err := h.Store.GetLesson(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get lesson", err)
		return
	}
	if lesson == nil {
		writeError(w, http.StatusNotFound, "Lesson not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toLessonDTO(lesson))
}

// CreateLesson logs a lesson. The wage snapshot is copied from the teacher's
// current configuration so later rate changes leave this lesson untouched.
func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	teacher, err := h.Store.GetTeacher(r.Context(), req.TeacherID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check teacher", err)
		return
	}
	if teacher == nil {
		writeError(w, http.StatusBadRequest, "Unknown teacher_id", nil)
		return
	}
	group, err := h.Store.GetGroup(r.Context(), req.GroupID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check group", err)
		return
	}
	if group == nil {
		writeError(w, http.StatusBadRequest, "Unknown group_id", nil)
		return
	}

	lesson := sqlite.Lesson{
		TeacherID:       req.TeacherID,
		GroupID:         req.GroupID,
		DurationMinutes: req.DurationMinutes,
		WageRate:        teacher.WageRate,
		UsesHourlyWage:  teacher.UsesHourlyWage,
		Date:            date,
	}
	id, err := h.Store.SaveLesson(r.Context(), lesson)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create lesson", err)
		return
	}

	lesson.ID = id
	writeJSON(w, http.StatusCreated, toLessonDTO(&lesson))
}

// DeleteLesson removes a lesson.
func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "Lesson", h.Store.DeleteLesson)
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns all contracts.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Store.ListContracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	dtos := make([]ContractDTO, len(contracts))
	for i := range contracts {
		dtos[i] = toContractDTO(&contracts[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetContract returns a single contract.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	contract, err := h.Store.GetContract(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(contract))
}

// CreateContract creates a contract with a generated reference number.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	startsOn, err := time.Parse("2006-01-02", req.StartsOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid starts_on format (use YYYY-MM-DD)", err)
		return
	}
	var endsOn *time.Time
	if req.EndsOn != nil {
		end, err := time.Parse("2006-01-02", *req.EndsOn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid ends_on format (use YYYY-MM-DD)", err)
			return
		}
		if end.Before(startsOn) {
			writeError(w, http.StatusBadRequest, "ends_on before starts_on", nil)
			return
		}
		endsOn = &end
	}

	customer, err := h.Store.GetCustomer(r.Context(), req.CustomerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check customer", err)
		return
	}
	if customer == nil {
		writeError(w, http.StatusBadRequest, "Unknown customer_id", nil)
		return
	}

	contract := sqlite.Contract{
		Reference:  uuid.New().String(),
		CustomerID: req.CustomerID,
		StartsOn:   startsOn,
		EndsOn:     endsOn,
		Notes:      req.Notes,
	}
	id, err := h.Store.SaveContract(r.Context(), contract)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create contract", err)
		return
	}

	contract.ID = id
	writeJSON(w, http.StatusCreated, toContractDTO(&contract))
}

// DeleteContract removes a contract.
func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "Contract", h.Store.DeleteContract)
}

// =============================================================================
// MISC HANDLERS
// =============================================================================

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request, label string,
	del func(ctx context.Context, id int64) error) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := del(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, label+" not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete "+label, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

// queryWindow parses the optional ?from=&to= half-open date window.
func queryWindow(w http.ResponseWriter, r *http.Request) (*time.Time, *time.Time, bool) {
	var from, to *time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return nil, nil, false
		}
		from = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return nil, nil, false
		}
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		writeError(w, http.StatusBadRequest, "to before from", nil)
		return nil, nil, false
	}
	return from, to, true
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
