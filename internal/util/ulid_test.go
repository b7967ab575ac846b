package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewULID(t *testing.T) {
	a := NewULID()
	b := NewULID()

	assert.Len(t, a, 26)
	assert.True(t, IsULID(a))
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}

func TestIsULID(t *testing.T) {
	assert.True(t, IsULID("01HGZ8VNRYXS8QKNJV5GRWPWDQ"))
	assert.False(t, IsULID(""))
	assert.False(t, IsULID("not-a-ulid"))
	assert.False(t, IsULID("01HGZ8VNRYXS8QKNJV5GRWPWD"))
}
