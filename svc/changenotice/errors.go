package changenotice

import (
	"fmt"
	"strings"
)

// MissingFieldsError lists the fields a notice needs before it can be
// submitted for review.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
