package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("soon")))
	assert.Error(t, d.UnmarshalText([]byte("-5s")))
}

func TestDuration_Marshal(t *testing.T) {
	d := Duration(2 * time.Second)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2s", string(text))

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2s"`, string(data))
}

func TestSecret_Redacted(t *testing.T) {
	s := Secret("sk-live-123")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "sk-live-123", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(struct {
		Key Secret `json:"key"`
	}{Key: s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"[REDACTED]"}`, string(data))
	assert.NotContains(t, string(data), "sk-live")
}

func TestSecret_Empty(t *testing.T) {
	var s Secret
	assert.Equal(t, "", s.String())
	assert.False(t, s.IsSet())

	require.NoError(t, s.UnmarshalText([]byte("abc")))
	assert.Equal(t, "abc", s.Value())
}
