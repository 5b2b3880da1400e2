package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the bearer token payload issued by the identity provider.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	Role       UserRole `json:"role"`
	SchoolID   string   `json:"school_id"`
	FullName   string   `json:"full_name"`
	StudentIDs []string `json:"student_ids,omitempty"`
	jwt.RegisteredClaims
}

// Scope returns the caller's tenant view.
func (c *JWTClaims) Scope() Scope {
	if c == nil {
		return Scope{}
	}
	return Scope{SchoolID: c.SchoolID, UserID: c.UserID, Name: c.FullName, Role: c.Role, StudentIDs: c.StudentIDs}
}

// CanSeeStudent reports whether the caller may read data belonging to studentID.
// Staff see every student of their school; students and parents only their own.
func (c *JWTClaims) CanSeeStudent(studentID string) bool {
	if c == nil {
		return false
	}
	return c.Scope().CanSeeStudent(studentID)
}
