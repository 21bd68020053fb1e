package opportunity

import (
	"fmt"
	"strings"
)

// Stage is a position in the sales pipeline.
type Stage int

const (
	StageLead Stage = iota
	StageQualified
	StageProposal
	StageNegotiation
	StageWon
	StageLost
)

var stageNames = [...]string{
	StageLead:        "LEAD",
	StageQualified:   "QUALIFIED",
	StageProposal:    "PROPOSAL",
	StageNegotiation: "NEGOTIATION",
	StageWon:         "WON",
	StageLost:        "LOST",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Open reports whether the opportunity can still be won or lost.
func (s Stage) Open() bool {
	return s >= StageLead && s < StageWon
}

// ParseStage returns the stage named s, case-insensitively.
func ParseStage(s string) (Stage, error) {
	for i, name := range stageNames {
		if strings.EqualFold(name, s) {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// RiskLevel grades how likely an opportunity is to slip.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskFromScore maps a 0-100 health score to a risk level.
func RiskFromScore(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskLow
	case score >= 40:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// defaultScore is used when no Scorer is configured.
func defaultScore(s Stage) int {
	switch s {
	case StageLead:
		return 20
	case StageQualified:
		return 40
	case StageProposal:
		return 55
	case StageNegotiation:
		return 75
	case StageWon:
		return 100
	default:
		return 0
	}
}
