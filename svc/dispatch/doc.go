// Package dispatch implements the installation dispatch lifecycle:
//
//	PENDING -> ASSIGNED -> IN_PROGRESS -> COMPLETED
//	ASSIGNED -> PENDING
//	ASSIGNED, IN_PROGRESS -> CANCELLED
//
// Starting stamps ExecutionStart and completing stamps ExecutionEnd. Crew
// reservations go through the injected Crew collaborator.
package dispatch
