package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email" gorm:"uniqueIndex"`
	Password            string         `json:"password"`
	SocialLogin         bool           `json:"socialLogin"`
	SocialProvider      string         `json:"socialProvider"`
	AvatarURL           string         `json:"avatarURL"`
	SavedItineraries    datatypes.JSON `json:"savedItineraries"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
	Role                string         `json:"role" gorm:"type:varchar(20);default:user;index"` // user, admin, super_admin
}

// Custom JSON marshaling to hide the password hash and decode JSON columns
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Password         string   `json:"password,omitempty"`
		SavedItineraries []int    `json:"savedItineraries"`
		PushTokens       []string `json:"pushTokens"`
		*Alias
	}{
		SavedItineraries: []int{},
		PushTokens:       []string{},
		Alias:            (*Alias)(u),
	}

	if u.SavedItineraries != nil {
		var saved []int
		if err := json.Unmarshal(u.SavedItineraries, &saved); err == nil {
			aux.SavedItineraries = saved
		}
	}

	if u.PushTokens != nil {
		var tokens []string
		if err := json.Unmarshal(u.PushTokens, &tokens); err == nil {
			aux.PushTokens = tokens
		}
	}

	return json.Marshal(aux)
}
