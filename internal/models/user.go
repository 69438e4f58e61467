package models

import "time"

// 회원 사용자 모델
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the editable part of an account shown on the profile and dashboard pages.
type Profile struct {
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Username  *string   `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Bio       string    `json:"bio"`
	Settings  Settings  `json:"settings"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Settings struct {
	Theme         string `json:"theme"`
	Newsletter    bool   `json:"newsletter"`
	PreferredSize string `json:"preferred_size"`
	Units         string `json:"units"`
}

// DefaultSettings are stored for every new profile.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeCosmic, Units: UnitsMetric}
}

const (
	ThemeCosmic = "cosmic"
	ThemeDark   = "dark"
	ThemeLight  = "light"

	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// ProfileUpdate carries a partial profile edit; nil fields keep their stored value.
// An empty Username clears it.
type ProfileUpdate struct {
	FullName  *string         `json:"full_name" binding:"omitempty,max=100"`
	Username  *string         `json:"username" binding:"omitempty,len=0|min=3,max=30,len=0|alphanum"`
	AvatarURL *string         `json:"avatar_url" binding:"omitempty,url"`
	Bio       *string         `json:"bio" binding:"omitempty,max=500"`
	Settings  *SettingsUpdate `json:"settings"`
}

type SettingsUpdate struct {
	Theme         *string `json:"theme" binding:"omitempty,oneof=cosmic dark light"`
	Newsletter    *bool   `json:"newsletter"`
	PreferredSize *string `json:"preferred_size" binding:"omitempty,max=8"`
	Units         *string `json:"units" binding:"omitempty,oneof=metric imperial"`
}

// Apply merges the update into p and reports whether anything changed.
func (u ProfileUpdate) Apply(p *Profile) bool {
	changed := false
	if u.FullName != nil && *u.FullName != p.FullName {
		p.FullName = *u.FullName
		changed = true
	}
	if u.Username != nil {
		switch name := *u.Username; {
		case name == "":
			if p.Username != nil {
				p.Username = nil
				changed = true
			}
		case p.Username == nil || *p.Username != name:
			p.Username = &name
			changed = true
		}
	}
	if u.AvatarURL != nil && *u.AvatarURL != p.AvatarURL {
		p.AvatarURL = *u.AvatarURL
		changed = true
	}
	if u.Bio != nil && *u.Bio != p.Bio {
		p.Bio = *u.Bio
		changed = true
	}
	if s := u.Settings; s != nil {
		if s.Theme != nil && *s.Theme != p.Settings.Theme {
			p.Settings.Theme = *s.Theme
			changed = true
		}
		if s.Newsletter != nil && *s.Newsletter != p.Settings.Newsletter {
			p.Settings.Newsletter = *s.Newsletter
			changed = true
		}
		if s.PreferredSize != nil && *s.PreferredSize != p.Settings.PreferredSize {
			p.Settings.PreferredSize = *s.PreferredSize
			changed = true
		}
		if s.Units != nil && *s.Units != p.Settings.Units {
			p.Settings.Units = *s.Units
			changed = true
		}
	}
	return changed
}
