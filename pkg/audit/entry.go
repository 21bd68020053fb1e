package audit

import (
	"errors"
	"strings"
	"time"
)

// Entry is one row of the transition audit log.
type Entry struct {
	ID           string
	EntityType   string
	EntityID     string
	FromState    string
	ToState      string
	OperatorID   string
	OperatorName string
	ActionType   string
	Comment      string
	ExtraData    map[string]any
	CreatedAt    time.Time
}

// Validate checks the fields every audit row must carry.
func (e Entry) Validate() error {
	var errs []error
	if strings.TrimSpace(e.EntityType) == "" {
		errs = append(errs, errors.New("entity type is required"))
	}
	if strings.TrimSpace(e.EntityID) == "" {
		errs = append(errs, errors.New("entity id is required"))
	}
	if strings.TrimSpace(e.ToState) == "" {
		errs = append(errs, errors.New("target state is required"))
	}
	if strings.TrimSpace(e.ActionType) == "" {
		errs = append(errs, errors.New("action type is required"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidEntry}, errs...)...)
	}
	return nil
}
