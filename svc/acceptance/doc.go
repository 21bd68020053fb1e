// Package acceptance implements the acceptance order lifecycle:
//
//	DRAFT -> SUBMITTED -> ACCEPTED
//	              \-> REJECTED -> DRAFT
//
// An order is accepted only when its required checklist items are done.
// Accepting opens an invoice request through the injected Invoicer.
package acceptance
