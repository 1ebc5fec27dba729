package models

import "strings"

// Role is the identity role claim attached to every request.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
	RolePRL      Role = "prl"
	RolePL       Role = "pl"
)

// ParseRole normalises a raw claim into a known role. Unknown values yield "" and false.
func ParseRole(raw string) (Role, bool) {
	switch role := Role(strings.ToLower(strings.TrimSpace(raw))); role {
	case RoleStudent, RoleLecturer, RolePRL, RolePL:
		return role, true
	default:
		return "", false
	}
}

// IsReviewer reports whether the role owns a report feedback slot.
func (r Role) IsReviewer() bool {
	_, ok := ReviewerRoles[r]
	return ok
}

// ReviewerRoles lists the roles that may attach feedback to a report, keyed by role.
// Each reviewer role owns exactly one feedback slot per report.
var ReviewerRoles = map[Role]ReportStatus{
	RolePRL: ReportStatusPRLReviewed,
	RolePL:  ReportStatusPLReviewed,
}
