package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishAndRead(t *testing.T) {
	var s State

	_, ok := s.Pattern()
	assert.False(t, ok)
	assert.False(t, s.ConsumeDirty())

	s.Publish("needle")
	p, ok := s.Pattern()
	assert.True(t, ok)
	assert.Equal(t, "needle", p)

	assert.True(t, s.ConsumeDirty())
	assert.False(t, s.ConsumeDirty(), "dirty is consumed once per publish")
}

func TestPublishEmptyIgnored(t *testing.T) {
	var s State
	s.Publish("")
	_, ok := s.Pattern()
	assert.False(t, ok)
	assert.False(t, s.ConsumeDirty())
}

func TestRepublishOverwrites(t *testing.T) {
	var s State
	s.Publish("first")
	s.ConsumeDirty()
	s.Publish("second")

	p, _ := s.Pattern()
	assert.Equal(t, "second", p)
	assert.True(t, s.ConsumeDirty())
}
