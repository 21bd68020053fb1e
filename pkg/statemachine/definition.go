package statemachine

import "slices"

// Definition is one registered from -> to rule with its handler and metadata.
// All metadata is optional; an empty field means "no requirement".
type Definition struct {
	Name                 string
	From                 State
	To                   State
	Handler              Handler
	Validator            Validator
	Permission           string
	Role                 string
	ActionType           string
	NotifyUsers          []string
	NotificationTemplate string
}

// NewDefinition builds a definition and applies its options.
func NewDefinition(from, to State, handler Handler, opts ...TransitionOption) Definition {
	d := Definition{From: from, To: to, Handler: handler}
	for _, opt := range opts {
		if opt != nil {
			opt(&d)
		}
	}
	if d.Name == "" {
		d.Name = string(from) + "->" + string(to)
	}
	return d
}

// Guarded reports whether the definition carries a validator or an
// authorization requirement.
func (d Definition) Guarded() bool {
	return d.Validator != nil || d.Permission != "" || d.Role != ""
}

func (d Definition) clone() Definition {
	d.NotifyUsers = slices.Clone(d.NotifyUsers)
	return d
}

type transitionKey struct {
	from State
	to   State
}
