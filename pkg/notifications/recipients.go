package notifications

// Recipient roles understood by Participants.
const (
	RoleCreator        = "creator"
	RoleAssignee       = "assignee"
	RoleReporter       = "reporter"
	RoleApprovers      = "approvers"
	RoleProjectManager = "project_manager"
	RoleTeamMembers    = "team_members"
)

// RecipientResolver maps a symbolic recipient role to concrete user IDs.
// Unknown or unresolvable roles yield nil.
type RecipientResolver interface {
	Recipients(role string) []string
}

// Ref is a related user.
type Ref struct {
	ID string
}

// ProjectRef is the project an entity belongs to.
type ProjectRef struct {
	ID        string
	ManagerID string
}

// Participants is the set of people an entity points at. Each role is
// resolved from the first populated source in a fixed order:
//
//	creator:         CreatedByID, CreatorID, CreatedBy.ID
//	assignee:        AssigneeID, AssignedToID, Assignee.ID
//	reporter:        ReporterID, Reporter.ID
//	approvers:       Approvers[].ID, ApproverIDs
//	project_manager: Project.ManagerID
//	team_members:    TeamMembers[].ID
type Participants struct {
	CreatedByID  string
	CreatorID    string
	CreatedBy    *Ref
	AssigneeID   string
	AssignedToID string
	Assignee     *Ref
	ReporterID   string
	Reporter     *Ref
	Approvers    []Ref
	ApproverIDs  []string
	Project      *ProjectRef
	TeamMembers  []Ref
}

// Recipients implements RecipientResolver.
func (p Participants) Recipients(role string) []string {
	switch role {
	case RoleCreator:
		return one(first(p.CreatedByID, p.CreatorID, refID(p.CreatedBy)))
	case RoleAssignee:
		return one(first(p.AssigneeID, p.AssignedToID, refID(p.Assignee)))
	case RoleReporter:
		return one(first(p.ReporterID, refID(p.Reporter)))
	case RoleApprovers:
		if ids := refIDs(p.Approvers); len(ids) > 0 {
			return ids
		}
		return nonEmpty(p.ApproverIDs)
	case RoleProjectManager:
		if p.Project == nil {
			return nil
		}
		return one(p.Project.ManagerID)
	case RoleTeamMembers:
		return refIDs(p.TeamMembers)
	default:
		return nil
	}
}

// ParticipantsFunc builds Participants on demand, so recipients reflect
// the entity as it is after the transition handler ran.
type ParticipantsFunc func() Participants

func (f ParticipantsFunc) Recipients(role string) []string {
	return f().Recipients(role)
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func one(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}

func refID(r *Ref) string {
	if r == nil {
		return ""
	}
	return r.ID
}

func refIDs(refs []Ref) []string {
	var out []string
	for _, r := range refs {
		if r.ID != "" {
			out = append(out, r.ID)
		}
	}
	return out
}

func nonEmpty(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
