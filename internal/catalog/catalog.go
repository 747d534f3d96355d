package catalog

import "sort"

// ActionDefinition describes one available action: a named condition,
// evaluated by polling, that can become true for a user.
type ActionDefinition struct {
	Name        string            `json:"name"`
	Provider    string            `json:"provider"`
	Description string            `json:"description"`
	ConfigKeys  map[string]string `json:"config_keys,omitempty"`
}

// ReactionDefinition describes one available reaction: a named side effect
// executed when its bound action fires.
type ReactionDefinition struct {
	Name        string            `json:"name"`
	Provider    string            `json:"provider"`
	Description string            `json:"description"`
	ConfigKeys  map[string]string `json:"config_keys,omitempty"`
}

// Catalog is the static list of available actions and reactions. It is built
// once at startup and read-only thereafter.
type Catalog struct {
	actions   map[string]ActionDefinition
	reactions map[string]ReactionDefinition
}

// New builds a catalog from the given definitions.
func New(actions []ActionDefinition, reactions []ReactionDefinition) *Catalog {
	c := &Catalog{
		actions:   make(map[string]ActionDefinition, len(actions)),
		reactions: make(map[string]ReactionDefinition, len(reactions)),
	}
	for _, a := range actions {
		c.actions[a.Name] = a
	}
	for _, r := range reactions {
		c.reactions[r.Name] = r
	}
	return c
}

// Default returns the catalog of actions and reactions shipped with the
// engine.
func Default() *Catalog {
	return New(
		[]ActionDefinition{
			{
				Name:        "spotify_has_likes",
				Provider:    "spotify",
				Description: "Fires when the user likes a new track on Spotify",
			},
			{
				Name:        "github_new_star",
				Provider:    "github",
				Description: "Fires when the user stars a new repository on GitHub",
			},
		},
		[]ReactionDefinition{
			{
				Name:        "send_email",
				Provider:    "mailer",
				Description: "Sends an email to the configured recipient",
				ConfigKeys: map[string]string{
					"to":      "recipient email address",
					"subject": "email subject line",
					"body":    "email body prefix; the trigger payload is appended",
				},
			},
			{
				Name:        "post_webhook",
				Provider:    "webhook",
				Description: "Posts the trigger payload as JSON to the configured URL",
				ConfigKeys: map[string]string{
					"url": "webhook endpoint URL",
				},
			},
		},
	)
}

// Actions returns all action definitions sorted by name.
func (c *Catalog) Actions() []ActionDefinition {
	out := make([]ActionDefinition, 0, len(c.actions))
	for _, a := range c.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reactions returns all reaction definitions sorted by name.
func (c *Catalog) Reactions() []ReactionDefinition {
	out := make([]ReactionDefinition, 0, len(c.reactions))
	for _, r := range c.reactions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Action looks up an action definition by name.
func (c *Catalog) Action(name string) (ActionDefinition, bool) {
	a, ok := c.actions[name]
	return a, ok
}

// Reaction looks up a reaction definition by name.
func (c *Catalog) Reaction(name string) (ReactionDefinition, bool) {
	r, ok := c.reactions[name]
	return r, ok
}
