package domain

import "context"

// UserProfile is the external user entity. It is read-only from this core's
// perspective and is joined into rosters by user ID.
// swagger:model UserProfile
type UserProfile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Role           Role   `json:"role"`
	CaregiverName  string `json:"caregiver_name,omitempty"`
	WheelchairUser bool   `json:"wheelchair_user"`
	MeetingPoint   string `json:"meeting_point,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// UserRepository defines read access to user profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*UserProfile, error)
}
