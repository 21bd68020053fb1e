package notifications

import "time"

// Category groups notifications in the recipient's inbox.
type Category string

const (
	CategoryWorkflow Category = "workflow"
	CategoryApproval Category = "approval"
	CategoryTask     Category = "task"
	CategorySystem   Category = "system"
)

// Priority is the notification priority level.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// Notification is one message addressed to one recipient.
type Notification struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Category   Category       `json:"category"`
	Priority   Priority       `json:"priority"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	SourceType string         `json:"source_type,omitempty"`
	SourceID   string         `json:"source_id,omitempty"`
	LinkURL    string         `json:"link_url,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Read       bool           `json:"read"`
	ReadAt     *time.Time     `json:"read_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// MarkAsRead flags the notification as read at t.
func (n *Notification) MarkAsRead(t time.Time) {
	n.Read = true
	n.ReadAt = &t
}
