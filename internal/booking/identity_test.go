package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestIdentityKnown(t *testing.T) {
	assert.True(t, Caller("U1").Known())
	assert.False(t, Caller("").Known())
	assert.False(t, Machine().Known())
}

func TestIdentityMayMutate(t *testing.T) {
	// Ownerless rows are open to everyone.
	assert.True(t, Caller("U1").MayMutate(nil))
	assert.True(t, Machine().MayMutate(nil))

	assert.True(t, Caller("U1").MayMutate(strptr("U1")))
	assert.False(t, Caller("U2").MayMutate(strptr("U1")))
	assert.False(t, Machine().MayMutate(strptr("U1")))
}

func TestIdentityOwns(t *testing.T) {
	// The strict check never matches a nil owner.
	assert.False(t, Caller("U1").Owns(nil))
	assert.False(t, Machine().Owns(nil))

	assert.True(t, Caller("U1").Owns(strptr("U1")))
	assert.False(t, Caller("U2").Owns(strptr("U1")))
	assert.False(t, Machine().Owns(strptr("U1")))
}
