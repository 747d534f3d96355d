package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ContainsShippedDefinitions(t *testing.T) {
	c := Default()

	a, ok := c.Action("spotify_has_likes")
	require.True(t, ok)
	assert.Equal(t, "spotify", a.Provider)

	r, ok := c.Reaction("send_email")
	require.True(t, ok)
	assert.Equal(t, "mailer", r.Provider)

	_, ok = c.Action("not_an_action")
	assert.False(t, ok)
	_, ok = c.Reaction("not_a_reaction")
	assert.False(t, ok)
}

func TestCatalog_ListingsAreSorted(t *testing.T) {
	c := New(
		[]ActionDefinition{{Name: "zeta"}, {Name: "alpha"}},
		[]ReactionDefinition{{Name: "zeta"}, {Name: "alpha"}},
	)

	actions := c.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, "alpha", actions[0].Name)
	assert.Equal(t, "zeta", actions[1].Name)

	reactions := c.Reactions()
	require.Len(t, reactions, 2)
	assert.Equal(t, "alpha", reactions[0].Name)
	assert.Equal(t, "zeta", reactions[1].Name)
}
