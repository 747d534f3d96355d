package domain

import (
	"time"
)

// Area is a durable binding of one action to one reaction for a user. The
// config map is opaque to the engine and interpreted only by the bound
// executors.
type Area struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	ActionName   string            `json:"action_name"`
	ReactionName string            `json:"reaction_name"`
	Config       map[string]string `json:"config"`
	Active       bool              `json:"active"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ConfigValue returns the config entry for key, or "" when absent.
func (a *Area) ConfigValue(key string) string {
	if a.Config == nil {
		return ""
	}
	return a.Config[key]
}
