package entities

import "time"

type Todo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"` // Owner, fixed at creation
	Title     string    `gorm:"size:512;not null" json:"title"`
	Completed bool      `gorm:"index;default:false" json:"completed"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TodoPatch carries the mutable fields of a Todo. Nil fields are left untouched.
type TodoPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

// Columns returns the patch as a column map, so false/empty values are still written.
func (p TodoPatch) Columns() map[string]any {
	cols := make(map[string]any, 2)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Completed != nil {
		cols["completed"] = *p.Completed
	}
	return cols
}

type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// TodoFilter narrows a per-owner todo query.
type TodoFilter struct {
	Completed *bool     // nil means both
	Order     SortOrder // by creation time; empty means SortDesc
}
