// Package changenotice implements the change notice review lifecycle:
//
//	DRAFT -> PENDING_REVIEW -> APPROVED -> IMPLEMENTED -> CLOSED
//	                       \-> REJECTED -> DRAFT
//	DRAFT, PENDING_REVIEW -> CANCELLED
//
// A notice needs a title, description, reason and impact before review.
// Approval requires an approval note and rejection a rejection reason; both
// are read from the notice itself, so callers set them before calling
// Approve or Reject.
package changenotice
