package domain

import "time"

// Session represents a signed-in device holding a refresh token.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`

	DeviceType    string `json:"device_type,omitempty"` // phone, tablet, web
	Platform      string `json:"platform,omitempty"`    // iOS, Android, Web
	ClientVersion string `json:"client_version,omitempty"`
	DeviceName    string `json:"device_name,omitempty"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// DisplayName returns a human-readable description of the device.
func (s *Session) DisplayName() string {
	switch {
	case s.DeviceName != "":
		return s.DeviceName
	case s.Platform != "" && s.ClientVersion != "":
		return s.Platform + " " + s.ClientVersion
	case s.Platform != "":
		return s.Platform
	default:
		return "Unknown Device"
	}
}
