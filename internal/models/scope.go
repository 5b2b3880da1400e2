package models

// Scope is the caller's view of a school: which tenant, in which role, and which
// students a non-staff caller is linked to.
type Scope struct {
	SchoolID   string
	UserID     string
	Name       string
	Role       UserRole
	StudentIDs []string
}

// CanSeeStudent reports whether the scope includes studentID.
func (s Scope) CanSeeStudent(studentID string) bool {
	if s.Role.Staff() {
		return true
	}
	for _, id := range s.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// Viewer snapshots the scope for a background job.
func (s Scope) Viewer() ReportViewer {
	return ReportViewer{UserID: s.UserID, Name: s.Name, Role: s.Role, StudentIDs: append([]string(nil), s.StudentIDs...)}
}

// ScopeFromViewer rebuilds the scope a report job was requested under.
func ScopeFromViewer(schoolID string, v ReportViewer) Scope {
	return Scope{SchoolID: schoolID, UserID: v.UserID, Name: v.Name, Role: v.Role, StudentIDs: v.StudentIDs}
}
