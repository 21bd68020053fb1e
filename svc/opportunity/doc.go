// Package opportunity moves sales opportunities through the pipeline
//
//	LEAD -> QUALIFIED -> PROPOSAL -> NEGOTIATION -> WON
//
// with LOST reachable from every open stage. The state field is the Stage
// enum, stored as an int and exposed to the engine through String. Every
// move rescores the opportunity and recomputes its RiskLevel.
package opportunity
