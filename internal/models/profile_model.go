package models

import "time"

// DefaultDisplayName is used when the identity carries no display name.
const DefaultDisplayName = "Designer"

// Profile is the per-identity account record in the profiles table.
type Profile struct {
	ID              string    `json:"id" db:"id"`
	FullName        string    `json:"full_name" db:"full_name"`
	Email           string    `json:"email,omitempty" db:"email"`
	Credits         int       `json:"credits" db:"credits"`
	Plan            Plan      `json:"plan" db:"plan"`
	IsSuspended     bool      `json:"is_suspended" db:"is_suspended"`
	LastCreditReset Date      `json:"last_credit_reset" db:"last_credit_reset"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// NewDefaultProfile builds the profile inserted on an identity's first sync.
func NewDefaultProfile(identity Identity, today Date) *Profile {
	name := identity.DisplayName
	if name == "" {
		name = DefaultDisplayName
	}
	return &Profile{
		ID:              identity.UID,
		FullName:        name,
		Email:           identity.Email,
		Credits:         FreeDailyCredits,
		Plan:            PlanFree,
		IsSuspended:     false,
		LastCreditReset: today,
	}
}

// HasUnlimitedCredits reports whether generation is never gated on credits for this profile.
func (p *Profile) HasUnlimitedCredits() bool {
	return p.Plan != PlanFree
}
