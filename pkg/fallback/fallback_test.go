package fallback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCall(t *testing.T) {
	r := Call(func() (int, error) { return 7, nil }, 0)
	assert.False(t, r.Failed())
	assert.Equal(t, 7, r.Value)

	boom := errors.New("boom")
	r = Call(func() (int, error) { return 7, boom }, 1)
	assert.True(t, r.Failed())
	assert.Equal(t, 1, r.Value)
	assert.Equal(t, boom, r.Err)
}

func TestCallRecoversPanic(t *testing.T) {
	r := Call(func() (string, error) { panic("unreachable collaborator") }, "default")
	assert.True(t, r.Failed())
	assert.Equal(t, "default", r.Value)
	assert.Contains(t, r.Err.Error(), "unreachable collaborator")
}

func TestDo(t *testing.T) {
	assert.Nil(t, Do(func() error { return nil }))
	assert.NotNil(t, Do(func() error { panic("x") }))
}
