package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionToken(t *testing.T) {
	t.Run("a token is current until a later Begin supersedes it", func(t *testing.T) {
		v := &VersionToken{}
		first := v.Begin()
		assert.True(t, first.IsCurrent())

		second := v.Begin()
		assert.False(t, first.IsCurrent())
		assert.True(t, second.IsCurrent())
	})

	t.Run("IfCurrent only runs for the live generation", func(t *testing.T) {
		v := &VersionToken{}
		first := v.Begin()
		v.Begin() // supersede first

		ran := false
		first.IfCurrent(func() { ran = true })
		assert.False(t, ran, "a stale token's callback must not run")
	})

	t.Run("discards a stale completion arriving after a newer one", func(t *testing.T) {
		v := &VersionToken{}
		var published int

		first := v.Begin()
		second := v.Begin()

		second.IfCurrent(func() { published = 2 })
		first.IfCurrent(func() { published = 1 }) // arrives late, must no-op

		assert.Equal(t, 2, published)
	})
}
