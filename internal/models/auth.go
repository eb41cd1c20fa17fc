package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims identifies the caller of a consultation query. ConsultantID is set when the staff
// directory id differs from the account id.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	ConsultantID string   `json:"consultant_id,omitempty"`
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	jwt.RegisteredClaims
}

// ConsultantScope returns the consultant id the caller is restricted to, or "" when the role
// sees every record.
func (c *JWTClaims) ConsultantScope() string {
	if c == nil || c.Role.SeesAllRecords() {
		return ""
	}
	if c.ConsultantID != "" {
		return c.ConsultantID
	}
	return c.UserID
}
