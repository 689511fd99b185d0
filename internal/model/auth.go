package model

import "strings"

// UserProfile describes the authenticated user. Fields a backend omits are
// filled with safe defaults; DisplayName always carries something printable.
type UserProfile struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Username    string `json:"username"`
}

// FillDisplayName applies the fallback chain: explicit display name, then
// first+last, then the raw id.
func (p *UserProfile) FillDisplayName() {
	if p.DisplayName != "" {
		return
	}
	full := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if full != "" {
		p.DisplayName = full
		return
	}
	p.DisplayName = p.ID
}

// DegradedProfile is what Login returns when credential acceptance succeeded
// but profile enrichment did not.
func DegradedProfile(id string) UserProfile {
	return UserProfile{ID: id, Username: id, DisplayName: id}
}

// AuthResponse is the result of a successful Login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}
