package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMySessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/sessions",
		Summary:     "List my sessions",
		Description: "Returns the authenticated user's signed-in devices",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleListMySessions)
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// SessionInfo describes one signed-in device.
type SessionInfo struct {
	ID         string    `json:"id" doc:"Session ID"`
	DeviceName string    `json:"device_name" doc:"Best available device label"`
	Platform   string    `json:"platform,omitempty" doc:"Client platform"`
	IPAddress  string    `json:"ip_address,omitempty" doc:"Last seen IP address"`
	CreatedAt  time.Time `json:"created_at" doc:"Sign-in time"`
	LastSeenAt time.Time `json:"last_seen_at" doc:"Last token refresh"`
	ExpiresAt  time.Time `json:"expires_at" doc:"Refresh token expiry"`
}

// SessionListOutput wraps the session list for Huma.
type SessionListOutput struct {
	Body struct {
		Sessions []SessionInfo `json:"sessions"`
	}
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	user, err := GetUser(ctx)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleListMySessions(ctx context.Context, _ *struct{}) (*SessionListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := s.services.Session.ListUserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &SessionListOutput{}
	out.Body.Sessions = make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out.Body.Sessions = append(out.Body.Sessions, SessionInfo{
			ID:         sess.ID,
			DeviceName: sess.DisplayName(),
			Platform:   sess.Platform,
			IPAddress:  sess.IPAddress,
			CreatedAt:  sess.CreatedAt,
			LastSeenAt: sess.LastSeenAt,
			ExpiresAt:  sess.ExpiresAt,
		})
	}
	return out, nil
}
