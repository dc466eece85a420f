package auth

import (
	"time"

	"github.com/shoefit/shoefit-server/internal/domain"
)

// AccessClaims are the claims carried inside an encrypted v4.local access token.
type AccessClaims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// IsAdmin reports whether the token was issued to an admin.
func (c *AccessClaims) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

// DeviceInfo is what the mobile client reports about itself at login.
type DeviceInfo struct {
	DeviceType    string `json:"device_type,omitempty" doc:"phone, tablet or web" maxLength:"32"`
	Platform      string `json:"platform,omitempty" doc:"iOS, Android or Web" maxLength:"32"`
	ClientVersion string `json:"client_version,omitempty" maxLength:"32"`
	DeviceName    string `json:"device_name,omitempty" doc:"User-visible device name" maxLength:"100"`
}

// Apply copies the device fields onto a session.
func (d DeviceInfo) Apply(s *domain.Session) {
	s.DeviceType = d.DeviceType
	s.Platform = d.Platform
	s.ClientVersion = d.ClientVersion
	s.DeviceName = d.DeviceName
}
