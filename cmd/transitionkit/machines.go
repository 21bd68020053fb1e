package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/transitionkit/pkg/statemachine"
	"github.com/dmitrymomot/transitionkit/svc/acceptance"
	"github.com/dmitrymomot/transitionkit/svc/changenotice"
	"github.com/dmitrymomot/transitionkit/svc/dispatch"
	"github.com/dmitrymomot/transitionkit/svc/milestone"
	"github.com/dmitrymomot/transitionkit/svc/opportunity"
)

// catalog builds each machine around a zero entity; only the transition
// table is inspected.
var catalog = map[string]func() (*statemachine.Machine, error){
	changenotice.EntityType: func() (*statemachine.Machine, error) {
		m, err := changenotice.New(&changenotice.ChangeNotice{}, changenotice.Deps{})
		if err != nil {
			return nil, err
		}
		return m.Machine, nil
	},
	acceptance.EntityType: func() (*statemachine.Machine, error) {
		m, err := acceptance.New(&acceptance.Order{}, acceptance.Deps{})
		if err != nil {
			return nil, err
		}
		return m.Machine, nil
	},
	dispatch.EntityType: func() (*statemachine.Machine, error) {
		m, err := dispatch.New(&dispatch.Ticket{}, dispatch.Deps{})
		if err != nil {
			return nil, err
		}
		return m.Machine, nil
	},
	milestone.EntityType: func() (*statemachine.Machine, error) {
		m, err := milestone.New(&milestone.Milestone{}, milestone.Deps{})
		if err != nil {
			return nil, err
		}
		return m.Machine, nil
	},
	opportunity.EntityType: func() (*statemachine.Machine, error) {
		m, err := opportunity.New(&opportunity.Opportunity{}, opportunity.Deps{})
		if err != nil {
			return nil, err
		}
		return m.Machine, nil
	},
}

func machineNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupMachine(name string) (*statemachine.Machine, error) {
	build, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown machine %q, expected one of: %s", name, strings.Join(machineNames(), ", "))
	}
	return build()
}
