// Package statemachine is a request-scoped transition runtime for business
// entities that carry a single state field.
//
// A Machine owns a (from, to) -> Definition table for one entity instance.
// Each Definition carries a Handler with the transition's business logic and
// optional metadata: a Validator, a required permission or role, an audit
// action tag, the recipient roles to notify and a notification template.
// Machines are assembled explicitly through options or the Builder; there is
// no reflection-based discovery.
//
// # Transition protocol
//
// TransitionTo runs, in order:
//
//  1. structural check (target differs from current state and a rule exists),
//     then the validator;
//  2. authorization of the caller passed with WithActor;
//  3. before hooks;
//  4. the validator again, right before mutation;
//  5. the handler;
//  6. the state field write;
//  7. the in-memory history append;
//  8. audit recording and notification dispatch;
//  9. after hooks.
//
// Failures in steps 1, 2, 4 and 5 are returned and leave the entity untouched.
// Hook, audit and notification failures (errors and panics) are logged and
// swallowed: they are side channels and never change the outcome of a
// transition that otherwise succeeded.
//
// # Usage
//
//	m, err := statemachine.NewBuilder(statemachine.StateField{
//	    Name: "status",
//	    Get:  func() any { return notice.Status },
//	    Set:  func(s statemachine.State) { notice.Status = string(s) },
//	}).
//	    Entity(statemachine.EntityRef{Type: "change_notice", ID: notice.ID}).
//	    Transition("DRAFT", "PENDING_REVIEW", submit,
//	        statemachine.Named("submit_for_review"),
//	        statemachine.WithActionType("submit"),
//	        statemachine.NotifyUsers("approvers"),
//	    ).
//	    Build()
//
//	err = m.TransitionTo(ctx, "PENDING_REVIEW", statemachine.WithActor(user))
//
// # Error Handling
//
//	statemachine.IsInvalidTransition(err) // no rule, or target equals current
//	statemachine.IsValidationError(err)   // validator rejected the transition
//	statemachine.IsPermissionDenied(err)  // caller lacks permission or role
//
// HTTPStatus maps these to 400, 400 and 403. Handler errors are returned
// unchanged.
//
// # Concurrency
//
// A Machine is not safe for concurrent use. Construct one per request and
// rely on the surrounding database transaction to serialize concurrent
// transitions of the same entity.
package statemachine
