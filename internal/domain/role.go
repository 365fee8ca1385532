package domain

import "strings"

// Canonical role names. Roles are stored and compared lowercase; legacy
// records mix casings ("HOD", "hod", "Faculty"), so every boundary must go
// through NormalizeRole.
const (
	RoleHOD     = "hod"
	RoleFaculty = "faculty"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// ReviewerRoles are the roles allowed to transition certificate status and
// the recipients of certificate-upload notifications.
var ReviewerRoles = []string{RoleFaculty, RoleHOD, RoleAdmin}

// NormalizeRole lowercases a role name and reports whether it is one of the
// known roles.
func NormalizeRole(role string) (string, bool) {
	r := strings.ToLower(strings.TrimSpace(role))
	switch r {
	case RoleHOD, RoleFaculty, RoleStudent, RoleAdmin:
		return r, true
	}
	return r, false
}

// IsReviewer reports whether the (case-insensitive) role may review
// certificates.
func IsReviewer(role string) bool {
	r, ok := NormalizeRole(role)
	if !ok {
		return false
	}
	for _, allowed := range ReviewerRoles {
		if r == allowed {
			return true
		}
	}
	return false
}
