package reactive_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/pulsehq/pulse-core/reactive"
)

func TestSignal(t *testing.T) {
	t.Run("read and write", func(t *testing.T) {
		count := NewSignal(0)
		assert.Equal(t, 0, count.Read())

		count.Write(10)
		assert.Equal(t, 10, count.Read())
	})

	t.Run("concurrent read/write", func(t *testing.T) {
		var wg sync.WaitGroup
		count := NewSignal(0)

		wg.Go(func() {
			count.Write(count.Read() + 1)
		})

		wg.Wait()
		assert.Equal(t, 1, count.Read())
	})

	t.Run("zero values", func(t *testing.T) {
		errSig := NewSignal[error](nil)
		assert.Nil(t, errSig.Read())

		errSig.Write(errors.New("oops"))
		assert.EqualError(t, errSig.Read(), "oops")

		errSig.Write(nil)
		assert.Nil(t, errSig.Read())
	})

	t.Run("peek does not track", func(t *testing.T) {
		log := []string{}
		count := NewSignal(0)

		NewEffect(func() {
			log = append(log, "effect")
			_ = count.Peek()
		})

		count.Write(10)

		assert.Equal(t, []string{"effect"}, log)
	})

	t.Run("custom equality skips unchanged writes", func(t *testing.T) {
		log := []string{}

		type point struct{ x, y int }
		p := NewSignal(point{1, 1}, WithEqual(func(a, b point) bool { return a == b }))

		NewEffect(func() {
			log = append(log, "effect")
			_ = p.Read()
		})

		p.Write(point{1, 1})
		p.Write(point{2, 2})

		assert.Equal(t, []string{"effect", "effect"}, log)
	})
}
