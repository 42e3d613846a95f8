/*
Package sqlite provides the SQLite-backed persistence layer of the back office.

PURPOSE:
  Stores the tutoring roster (teachers, customers, students, groups), the
  lesson log, and customer contracts, and materializes the snapshots the
  billing engine consumes (lesson rows plus payment-day lookups).

KEY TABLES:
  teachers:       Wage configuration and payment day per teacher
  customers:      Payment day per paying customer
  students:       Students, optionally linked to a paying customer
  lesson_groups:  Teaching groups; customer_id NULL marks student-only groups
  group_members:  Student membership per group
  lessons:        The lesson log; wage columns are a snapshot taken at booking
  contracts:      Customer contracts with a generated reference number

WAGE SNAPSHOTS:
  A lesson row copies the teacher's wage_rate and uses_hourly_wage at booking
  time. Changing a teacher's rate later must not rewrite past billing.

DECIMALS:
  Monetary columns are TEXT holding exact decimal strings. They are parsed
  into decimal.Decimal at the boundary and never pass through float64.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers do not block each other.

MIGRATION:
  Schema is auto-created on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

USAGE:
  store, err := sqlite.New("./data/backoffice.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - billing/engine.go: Consumes LessonRows and PaymentDays
  - api/handlers.go: HTTP layer over this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/lernwerk/backoffice/billing"
)

const dateFormat = "2006-01-02"

// Store implements persistence for the whole back office.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teachers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		wage_rate TEXT NOT NULL,
		uses_hourly_wage BOOLEAN NOT NULL DEFAULT TRUE,
		payment_day INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		payment_day INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		customer_id INTEGER REFERENCES customers(id),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_students_customer
		ON students(customer_id);

	-- customer_id NULL marks a student-only group: its lessons have no
	-- paying customer and land in the report's student column.
	CREATE TABLE IF NOT EXISTS lesson_groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		customer_id INTEGER REFERENCES customers(id),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lesson_groups_customer
		ON lesson_groups(customer_id);

	CREATE TABLE IF NOT EXISTS group_members (
		group_id INTEGER NOT NULL REFERENCES lesson_groups(id),
		student_id INTEGER NOT NULL REFERENCES students(id),
		PRIMARY KEY (group_id, student_id)
	);

	-- Wage columns are a snapshot of the teacher's configuration at booking
	-- time; they never change when the teacher's rate does. teacher_id is
	-- deliberately not a foreign key: the lesson log outlives teacher
	-- deletion, and the report surfaces the dangling reference as a
	-- missing-billing-config conflict instead.
	CREATE TABLE IF NOT EXISTS lessons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		teacher_id INTEGER NOT NULL,
		group_id INTEGER NOT NULL REFERENCES lesson_groups(id),
		duration_minutes INTEGER NOT NULL,
		wage_rate TEXT NOT NULL,
		uses_hourly_wage BOOLEAN NOT NULL,
		lesson_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lessons_teacher
		ON lessons(teacher_id);
	CREATE INDEX IF NOT EXISTS idx_lessons_group
		ON lessons(group_id);

	-- Composite index for window queries (report hot path)
	CREATE INDEX IF NOT EXISTS idx_lessons_date
		ON lessons(lesson_date, id);

	CREATE TABLE IF NOT EXISTS contracts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reference TEXT NOT NULL UNIQUE,
		customer_id INTEGER NOT NULL REFERENCES customers(id),
		starts_on TEXT NOT NULL,
		ends_on TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_customer
		ON contracts(customer_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD TYPES
// =============================================================================

// Teacher is a stored teacher with wage configuration.
type Teacher struct {
	ID             int64
	Name           string
	Email          string
	WageRate       decimal.Decimal
	UsesHourlyWage bool
	PaymentDay     int
	CreatedAt      time.Time
}

// Customer is a paying customer.
type Customer struct {
	ID         int64
	Name       string
	Email      string
	PaymentDay int
	CreatedAt  time.Time
}

// Student is a student, optionally linked to the customer paying for them.
type Student struct {
	ID         int64
	Name       string
	CustomerID *int64
	CreatedAt  time.Time
}

// Group is a teaching group. CustomerID nil marks a student-only group.
type Group struct {
	ID         int64
	Name       string
	CustomerID *int64
	CreatedAt  time.Time
}

// Lesson is one logged lesson with its wage snapshot.
type Lesson struct {
	ID              int64
	TeacherID       int64
	GroupID         int64
	DurationMinutes int
	WageRate        decimal.Decimal
	UsesHourlyWage  bool
	Date            time.Time
	CreatedAt       time.Time
}

// Contract is a stored customer contract.
type Contract struct {
	ID         int64
	Reference  string
	CustomerID int64
	StartsOn   time.Time
	EndsOn     *time.Time
	Notes      string
	CreatedAt  time.Time
}

type scanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// TEACHER STORE
// =============================================================================

// SaveTeacher inserts a teacher and returns its generated id.
func (s *Store) SaveTeacher(ctx context.Context, t Teacher) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO teachers (name, email, wage_rate, uses_hourly_wage, payment_day, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.Name, t.Email, t.WageRate.String(), t.UsesHourlyWage, t.PaymentDay,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save teacher: %w", err)
	}
	return res.LastInsertId()
}

// UpdateTeacher overwrites a teacher's mutable fields. Past lessons keep
// their wage snapshot.
func (s *Store) UpdateTeacher(ctx context.Context, t Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE teachers SET name = ?, email = ?, wage_rate = ?, uses_hourly_wage = ?, payment_day = ?
		WHERE id = ?`,
		t.Name, t.Email, t.WageRate.String(), t.UsesHourlyWage, t.PaymentDay, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update teacher: %w", err)
	}
	return requireRow(res)
}

// GetTeacher retrieves a teacher by ID. Returns nil when not found.
func (s *Store) GetTeacher(ctx context.Context, id int64) (*Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, wage_rate, uses_hourly_wage, payment_day, created_at
		FROM teachers WHERE id = ?`, id)
	t, err := scanTeacher(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTeachers returns all teachers ordered by id.
func (s *Store) ListTeachers(ctx context.Context) ([]Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, wage_rate, uses_hourly_wage, payment_day, created_at
		FROM teachers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teachers []Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, *t)
	}
	return teachers, rows.Err()
}

// DeleteTeacher removes a teacher. Logged lessons keep their snapshot rows.
func (s *Store) DeleteTeacher(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete teacher: %w", err)
	}
	return requireRow(res)
}

func scanTeacher(row scanner) (*Teacher, error) {
	var t Teacher
	var email sql.NullString
	var rate, createdAt string
	if err := row.Scan(&t.ID, &t.Name, &email, &rate, &t.UsesHourlyWage, &t.PaymentDay, &createdAt); err != nil {
		return nil, err
	}
	t.Email = email.String
	var err error
	if t.WageRate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("teacher %d: bad wage rate %q: %w", t.ID, rate, err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &t, nil
}

// =============================================================================
// CUSTOMER STORE
// =============================================================================

// SaveCustomer inserts a customer and returns its generated id.
func (s *Store) SaveCustomer(ctx context.Context, c Customer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (name, email, payment_day, created_at)
		VALUES (?, ?, ?, ?)`,
		c.Name, c.Email, c.PaymentDay, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save customer: %w", err)
	}
	return res.LastInsertId()
}

// UpdateCustomer overwrites a customer's mutable fields.
func (s *Store) UpdateCustomer(ctx context.Context, c Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE customers SET name = ?, email = ?, payment_day = ? WHERE id = ?`,
		c.Name, c.Email, c.PaymentDay, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return requireRow(res)
}

// GetCustomer retrieves a customer by ID. Returns nil when not found.
func (s *Store) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, payment_day, created_at FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCustomers returns all customers ordered by id.
func (s *Store) ListCustomers(ctx context.Context) ([]Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, payment_day, created_at FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// DeleteCustomer removes a customer.
func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return requireRow(res)
}

func scanCustomer(row scanner) (*Customer, error) {
	var c Customer
	var email sql.NullString
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &email, &c.PaymentDay, &createdAt); err != nil {
		return nil, err
	}
	c.Email = email.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// =============================================================================
// STUDENT STORE
// =============================================================================

// SaveStudent inserts a student and returns its generated id.
func (s *Store) SaveStudent(ctx context.Context, st Student) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO students (name, customer_id, created_at) VALUES (?, ?, ?)`,
		st.Name, st.CustomerID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save student: %w", err)
	}
	return res.LastInsertId()
}

// GetStudent retrieves a student by ID. Returns nil when not found.
func (s *Store) GetStudent(ctx context.Context, id int64) (*Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, customer_id, created_at FROM students WHERE id = ?`, id)
	st, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ListStudents returns all students ordered by id.
func (s *Store) ListStudents(ctx context.Context) ([]Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, customer_id, created_at FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *st)
	}
	return students, rows.Err()
}

// DeleteStudent removes a student and its group memberships.
func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM group_members WHERE student_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete student memberships: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return requireRow(res)
}

func scanStudent(row scanner) (*Student, error) {
	var st Student
	var customerID sql.NullInt64
	var createdAt string
	if err := row.Scan(&st.ID, &st.Name, &customerID, &createdAt); err != nil {
		return nil, err
	}
	if customerID.Valid {
		st.CustomerID = &customerID.Int64
	}
	st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &st, nil
}

// =============================================================================
// GROUP STORE
// =============================================================================

// SaveGroup inserts a group and returns its generated id.
func (s *Store) SaveGroup(ctx context.Context, g Group) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO lesson_groups (name, customer_id, created_at) VALUES (?, ?, ?)`,
		g.Name, g.CustomerID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save group: %w", err)
	}
	return res.LastInsertId()
}

// GetGroup retrieves a group by ID. Returns nil when not found.
func (s *Store) GetGroup(ctx context.Context, id int64) (*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, customer_id, created_at FROM lesson_groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListGroups returns all groups ordered by id.
func (s *Store) ListGroups(ctx context.Context) ([]Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, customer_id, created_at FROM lesson_groups ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// DeleteGroup removes a group and its memberships.
func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete group memberships: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM lesson_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return requireRow(res)
}

// AddGroupMember links a student to a group. Adding twice is a no-op.
func (s *Store) AddGroupMember(ctx context.Context, groupID, studentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO group_members (group_id, student_id) VALUES (?, ?)`,
		groupID, studentID,
	)
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// RemoveGroupMember unlinks a student from a group.
func (s *Store) RemoveGroupMember(ctx context.Context, groupID, studentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = ? AND student_id = ?`,
		groupID, studentID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	return requireRow(res)
}

// ListGroupMembers returns the students in a group ordered by id.
func (s *Store) ListGroupMembers(ctx context.Context, groupID int64) ([]Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT st.id, st.name, st.customer_id, st.created_at
		FROM students st
		JOIN group_members gm ON gm.student_id = st.id
		WHERE gm.group_id = ?
		ORDER BY st.id`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *st)
	}
	return students, rows.Err()
}

func scanGroup(row scanner) (*Group, error) {
	var g Group
	var customerID sql.NullInt64
	var createdAt string
	if err := row.Scan(&g.ID, &g.Name, &customerID, &createdAt); err != nil {
		return nil, err
	}
	if customerID.Valid {
		g.CustomerID = &customerID.Int64
	}
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &g, nil
}

// =============================================================================
// LESSON STORE
// =============================================================================

// SaveLesson inserts a lesson and returns its generated id. The caller fills
// the wage snapshot from the teacher's current configuration.
func (s *Store) SaveLesson(ctx context.Context, l Lesson) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO lessons (teacher_id, group_id, duration_minutes, wage_rate, uses_hourly_wage, lesson_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.TeacherID, l.GroupID, l.DurationMinutes, l.WageRate.String(),
		l.UsesHourlyWage, l.Date.Format(dateFormat),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save lesson: %w", err)
	}
	return res.LastInsertId()
}

// GetLesson retrieves a lesson by ID. Returns nil when not found.
func (s *Store) GetLesson(ctx context.Context, id int64) (*Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, teacher_id, group_id, duration_minutes, wage_rate, uses_hourly_wage, lesson_date, created_at
		FROM lessons WHERE id = ?`, id)
	l, err := scanLesson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLessons returns lessons ordered by id, optionally restricted to
// [from, to) on the lesson date. A nil bound leaves that side open.
func (s *Store) ListLessons(ctx context.Context, from, to *time.Time) ([]Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, teacher_id, group_id, duration_minutes, wage_rate, uses_hourly_wage, lesson_date, created_at
		FROM lessons`
	where, args := lessonWindow("lesson_date", from, to)
	rows, err := s.db.QueryContext(ctx, query+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, *l)
	}
	return lessons, rows.Err()
}

// DeleteLesson removes a lesson.
func (s *Store) DeleteLesson(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return requireRow(res)
}

func scanLesson(row scanner) (*Lesson, error) {
	var l Lesson
	var rate, lessonDate, createdAt string
	if err := row.Scan(&l.ID, &l.TeacherID, &l.GroupID, &l.DurationMinutes,
		&rate, &l.UsesHourlyWage, &lessonDate, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if l.WageRate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("lesson %d: bad wage rate %q: %w", l.ID, rate, err)
	}
	if l.Date, err = time.Parse(dateFormat, lessonDate); err != nil {
		return nil, fmt.Errorf("lesson %d: bad date %q: %w", l.ID, lessonDate, err)
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &l, nil
}

// lessonWindow builds the optional [from, to) WHERE clause on a date column.
func lessonWindow(column string, from, to *time.Time) (string, []any) {
	var where string
	var args []any
	if from != nil {
		where = " WHERE " + column + " >= ?"
		args = append(args, from.Format(dateFormat))
	}
	if to != nil {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += column + " < ?"
		args = append(args, to.Format(dateFormat))
	}
	return where, args
}

// =============================================================================
// CONTRACT STORE
// =============================================================================

// SaveContract inserts a contract and returns its generated id.
func (s *Store) SaveContract(ctx context.Context, c Contract) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var endsOn *string
	if c.EndsOn != nil {
		formatted := c.EndsOn.Format(dateFormat)
		endsOn = &formatted
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (reference, customer_id, starts_on, ends_on, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Reference, c.CustomerID, c.StartsOn.Format(dateFormat), endsOn, c.Notes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save contract: %w", err)
	}
	return res.LastInsertId()
}

// GetContract retrieves a contract by ID. Returns nil when not found.
func (s *Store) GetContract(ctx context.Context, id int64) (*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, reference, customer_id, starts_on, ends_on, notes, created_at
		FROM contracts WHERE id = ?`, id)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListContracts returns all contracts ordered by id.
func (s *Store) ListContracts(ctx context.Context) ([]Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reference, customer_id, starts_on, ends_on, notes, created_at
		FROM contracts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, rows.Err()
}

// DeleteContract removes a contract.
func (s *Store) DeleteContract(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	return requireRow(res)
}

func scanContract(row scanner) (*Contract, error) {
	var c Contract
	var endsOn, notes sql.NullString
	var startsOn, createdAt string
	if err := row.Scan(&c.ID, &c.Reference, &c.CustomerID, &startsOn, &endsOn, &notes, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if c.StartsOn, err = time.Parse(dateFormat, startsOn); err != nil {
		return nil, fmt.Errorf("contract %d: bad start date %q: %w", c.ID, startsOn, err)
	}
	if endsOn.Valid {
		end, err := time.Parse(dateFormat, endsOn.String)
		if err != nil {
			return nil, fmt.Errorf("contract %d: bad end date %q: %w", c.ID, endsOn.String, err)
		}
		c.EndsOn = &end
	}
	c.Notes = notes.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// =============================================================================
// BILLING SNAPSHOTS
// =============================================================================

// LessonRows materializes the aggregation input: every lesson joined with
// its group to resolve the paying customer. Groups without a customer map
// to billing.NoCustomer. Ordered by lesson id.
func (s *Store) LessonRows(ctx context.Context, from, to *time.Time) ([]billing.LessonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT l.id, l.teacher_id, g.customer_id, l.duration_minutes,
		       l.wage_rate, l.uses_hourly_wage, l.lesson_date
		FROM lessons l
		JOIN lesson_groups g ON g.id = l.group_id`
	where, args := lessonWindow("l.lesson_date", from, to)
	rows, err := s.db.QueryContext(ctx, query+where+` ORDER BY l.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []billing.LessonRecord
	for rows.Next() {
		var rec billing.LessonRecord
		var customerID sql.NullInt64
		var rate, lessonDate string
		if err := rows.Scan(&rec.LessonID, &rec.TeacherID, &customerID,
			&rec.DurationMinutes, &rate, &rec.UsesHourlyWage, &lessonDate); err != nil {
			return nil, err
		}
		if customerID.Valid {
			rec.CustomerID = billing.CustomerID(customerID.Int64)
		} else {
			rec.CustomerID = billing.NoCustomer
		}
		if rec.WageRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("lesson %d: bad wage rate %q: %w", rec.LessonID, rate, err)
		}
		if rec.Date, err = time.Parse(dateFormat, lessonDate); err != nil {
			return nil, fmt.Errorf("lesson %d: bad date %q: %w", rec.LessonID, lessonDate, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PaymentDays returns the payment-day lookups the aggregation needs.
func (s *Store) PaymentDays(ctx context.Context) (map[billing.TeacherID]int, map[billing.CustomerID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teachers := make(map[billing.TeacherID]int)
	trows, err := s.db.QueryContext(ctx, `SELECT id, payment_day FROM teachers`)
	if err != nil {
		return nil, nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var id int64
		var day int
		if err := trows.Scan(&id, &day); err != nil {
			return nil, nil, err
		}
		teachers[billing.TeacherID(id)] = day
	}
	if err := trows.Err(); err != nil {
		return nil, nil, err
	}

	customers := make(map[billing.CustomerID]int)
	crows, err := s.db.QueryContext(ctx, `SELECT id, payment_day FROM customers`)
	if err != nil {
		return nil, nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var id int64
		var day int
		if err := crows.Scan(&id, &day); err != nil {
			return nil, nil, err
		}
		customers[billing.CustomerID(id)] = day
	}
	return teachers, customers, crows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"group_members", "lessons", "contracts", "students", "lesson_groups", "customers", "teachers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// requireRow converts a zero-row write into sql.ErrNoRows so callers can
// answer "not found" without a prior read.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
