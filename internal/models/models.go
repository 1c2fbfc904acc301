package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus enumerates the lifecycle states of an active task.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "Not Started"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// ParseTaskStatus maps a wire value onto a known status.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	switch TaskStatus(raw) {
	case StatusNotStarted, StatusInProgress, StatusDone:
		return TaskStatus(raw), nil
	}
	return "", fmt.Errorf("unknown task status %q", raw)
}

// TaskPriority enumerates task priorities; Extreme tasks form the vital view.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityModerate TaskPriority = "Moderate"
	PriorityExtreme  TaskPriority = "Extreme"
)

// ParseTaskPriority maps a wire value onto a known priority.
func ParseTaskPriority(raw string) (TaskPriority, error) {
	switch TaskPriority(raw) {
	case PriorityLow, PriorityModerate, PriorityExtreme:
		return TaskPriority(raw), nil
	}
	return "", fmt.Errorf("unknown task priority %q", raw)
}

const (
	dateWireLayout  = "02/01/2006"
	dateStoreLayout = "2006-01-02"
)

// Date is a calendar date exchanged as DD/MM/YYYY on the wire and stored as
// an ISO date in the database. Any other wire format is rejected.
type Date struct {
	time.Time
}

// ParseDate parses a DD/MM/YYYY string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateWireLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected DD/MM/YYYY", raw)
	}
	return Date{Time: t}, nil
}

// String renders the wire representation.
func (d Date) String() string {
	return d.Format(dateWireLayout)
}

// MarshalJSON renders the date as a DD/MM/YYYY string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts only DD/MM/YYYY strings.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer for database writes.
func (d Date) Value() (driver.Value, error) {
	return d.Format(dateStoreLayout), nil
}

// Scan implements sql.Scanner for database reads.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanString(raw string) error {
	t, err := time.Parse(dateStoreLayout, raw)
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	d.Time = t
	return nil
}

// User is a registered account; ID is a uuid assigned at registration.
type User struct {
	ID         string    `json:"id"`
	Firstname  string    `json:"firstname"`
	Lastname   string    `json:"lastname"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	GoogleSub  string    `json:"-"`
	ProfilePic string    `json:"profile_pic,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Task is an active task owned by a single user.
type Task struct {
	ID          int64        `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Deadline    Date         `json:"deadline"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CompletedTask is an archived task. It keeps the id of the task it was
// promoted from and is immutable apart from retention eviction.
type CompletedTask struct {
	ID          int64        `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Deadline    Date         `json:"deadline"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskView is the serialized task shape returned to clients and mirrored in
// the cache.
type TaskView struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Deadline    string `json:"deadline"`
	TaskImg     string `json:"task_img"`
}

// TaskPatch carries a partial task update. A nil field means "no change";
// there is no way to confuse an absent field with a legitimate zero value.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	Deadline    *Date
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Deadline == nil
}

// UserPatch carries a partial profile update with the same nil-means-unset
// convention as TaskPatch.
type UserPatch struct {
	Firstname *string
	Lastname  *string
	Username  *string
	Email     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Firstname == nil && p.Lastname == nil && p.Username == nil && p.Email == nil
}
