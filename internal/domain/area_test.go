package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignal_Code(t *testing.T) {
	assert.Equal(t, -1, NoAccount().Code())
	assert.Equal(t, 0, Triggered("abc").Code())
	assert.Equal(t, 1, Unchanged().Code())
}

func TestSignal_TriggeredCarriesPayload(t *testing.T) {
	s := Triggered("track-42")
	assert.Equal(t, SignalTriggered, s.Kind)
	assert.Equal(t, "track-42", s.Payload)

	assert.Empty(t, Unchanged().Payload)
	assert.Empty(t, NoAccount().Payload)
}

func TestArea_ConfigValue(t *testing.T) {
	a := &Area{Config: map[string]string{"to": "user@example.com"}}
	assert.Equal(t, "user@example.com", a.ConfigValue("to"))
	assert.Empty(t, a.ConfigValue("missing"))

	var nilCfg Area
	assert.Empty(t, nilCfg.ConfigValue("to"))
}

func TestCredential_Expired(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var noExpiry Credential
	assert.False(t, noExpiry.Expired(now))

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&Credential{ExpiresAt: &past}).Expired(now))
	assert.False(t, (&Credential{ExpiresAt: &future}).Expired(now))
}
