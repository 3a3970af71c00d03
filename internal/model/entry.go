package model

import "time"

// Entry is one timestamped log record.
// CreatedAt is fixed at insert; UpdatedAt follows content edits.
type Entry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Less reports whether a is shown before b: newest first, id breaks ties.
func Less(a, b Entry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Compare is Less in the shape slices.SortFunc wants.
func Compare(a, b Entry) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}

// Title is the first line of the content, used by one-row renderers.
func (e Entry) Title() string {
	for i, r := range e.Content {
		if r == '\n' {
			return e.Content[:i]
		}
	}
	return e.Content
}
