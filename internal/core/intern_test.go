package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterner_Idempotent(t *testing.T) {
	in := NewInterner()

	h1 := in.Intern("example.com")
	h2 := in.Intern("example.com")
	assert.Equal(t, h1, h2, "equal strings must yield the same handle")

	h3 := in.Intern("other.com")
	assert.NotEqual(t, h1, h3, "distinct strings must yield distinct handles")

	require.Equal(t, "example.com", in.Get(h1))
	require.Equal(t, "other.com", in.Get(h3))
	assert.Equal(t, 2, in.Len())
}

func TestInterner_GetOutOfRange(t *testing.T) {
	in := NewInterner()
	assert.Equal(t, "", in.Get(NoHandle))
	assert.Equal(t, "", in.Get(Handle(99)))
}

func TestInterner_Flush(t *testing.T) {
	in := NewInterner()
	h := in.Intern("example.com")
	in.Flush()

	assert.Equal(t, 0, in.Len())
	assert.Equal(t, "", in.Get(h), "handles from before a flush must not resolve")

	// after a flush the interner behaves like new
	h2 := in.Intern("example.com")
	assert.Equal(t, Handle(0), h2)
}
