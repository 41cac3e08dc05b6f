package models

import "time"

// Identity is the backend-issued reference for an authenticated user.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated backend session. User is the identity the
// session was issued for.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         Identity  `json:"user"`
}

// Profile is the per-user farm record kept in the backend row store,
// one-to-one with an identity.
type Profile struct {
	UserID       string    `json:"user_id" db:"user_id"`
	FullName     string    `json:"full_name" db:"full_name"`
	Phone        string    `json:"phone" db:"phone"`
	FarmName     string    `json:"farm_name" db:"farm_name"`
	FarmSize     string    `json:"farm_size" db:"farm_size"`
	FarmSizeUnit string    `json:"farm_size_unit" db:"farm_size_unit"`
	Location     string    `json:"location" db:"location"`
	Address      string    `json:"address" db:"address"`
	MainCrops    string    `json:"main_crops" db:"main_crops"`
	Bio          string    `json:"bio" db:"bio"`
	AvatarURL    string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsComplete reports whether the profile carries the minimum fields the
// dashboard needs to personalize itself. A nil profile is never complete.
func (p *Profile) IsComplete() bool {
	if p == nil {
		return false
	}
	return p.FullName != "" && p.FarmName != "" && p.Location != ""
}

// ProfilePatch is a partial profile update. Nil fields are left untouched
// by the merge; non-nil fields overwrite the stored value. UpdatedAt is
// stamped by the auth container on every write.
type ProfilePatch struct {
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	FullName     *string    `json:"full_name,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	FarmName     *string    `json:"farm_name,omitempty"`
	FarmSize     *string    `json:"farm_size,omitempty"`
	FarmSizeUnit *string    `json:"farm_size_unit,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Address      *string    `json:"address,omitempty"`
	MainCrops    *string    `json:"main_crops,omitempty"`
	Bio          *string    `json:"bio,omitempty"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
}

// Apply merges the patch into dst field by field.
func (p ProfilePatch) Apply(dst *Profile) {
	if p.UpdatedAt != nil {
		dst.UpdatedAt = *p.UpdatedAt
	}
	if p.FullName != nil {
		dst.FullName = *p.FullName
	}
	if p.Phone != nil {
		dst.Phone = *p.Phone
	}
	if p.FarmName != nil {
		dst.FarmName = *p.FarmName
	}
	if p.FarmSize != nil {
		dst.FarmSize = *p.FarmSize
	}
	if p.FarmSizeUnit != nil {
		dst.FarmSizeUnit = *p.FarmSizeUnit
	}
	if p.Location != nil {
		dst.Location = *p.Location
	}
	if p.Address != nil {
		dst.Address = *p.Address
	}
	if p.MainCrops != nil {
		dst.MainCrops = *p.MainCrops
	}
	if p.Bio != nil {
		dst.Bio = *p.Bio
	}
	if p.AvatarURL != nil {
		dst.AvatarURL = *p.AvatarURL
	}
}
