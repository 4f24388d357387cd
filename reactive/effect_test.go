package reactive_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/pulsehq/pulse-core/reactive"
)

func TestEffect(t *testing.T) {
	t.Run("runs on signal change with cleanup", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)
		log = append(log, fmt.Sprintf("%d", count.Read()))

		NewEffectCleanup(func() func() {
			log = append(log, fmt.Sprintf("changed %d", count.Read()))
			return func() { log = append(log, "cleanup") }
		})

		count.Write(10)
		log = append(log, fmt.Sprintf("%d", count.Read()))
		count.Write(20)

		assert.Equal(t, []string{
			"0",
			"changed 0",
			"cleanup",
			"changed 10",
			"10",
			"cleanup",
			"changed 20",
		}, log)
	})

	t.Run("writes to another signal", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)
		double := NewSignal(0)

		NewEffect(func() {
			double.Write(count.Read() * 2)
		})

		NewEffectCleanup(func() func() {
			log = append(log, fmt.Sprintf("changed %d", double.Read()))
			return func() { log = append(log, "cleanup") }
		})

		count.Write(10)

		assert.Equal(t, []string{
			"changed 0",
			"cleanup",
			"changed 20",
		}, log)
	})

	t.Run("nested effects", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)

		NewEffectCleanup(func() func() {
			count.Read()
			log = append(log, "running")

			NewEffectCleanup(func() func() {
				log = append(log, "running nested")
				return func() { log = append(log, "cleanup nested") }
			})

			return func() { log = append(log, "cleanup") }
		})

		count.Write(10)

		assert.Equal(t, []string{
			"running",
			"running nested",
			"cleanup nested",
			"cleanup",
			"running",
			"running nested",
		}, log)
	})

	t.Run("diamond dependency", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)
		double := NewComputed(func() int { return count.Read() * 2 })
		quad := NewComputed(func() int { return count.Read() * 4 })

		NewEffectCleanup(func() func() {
			log = append(log, fmt.Sprintf("running %d %d", double.Read(), quad.Read()))
			return func() {
				log = append(log, fmt.Sprintf("cleanup %d %d", double.Read(), quad.Read()))
			}
		})

		count.Write(10)

		assert.Equal(t, []string{
			"running 0 0",
			"cleanup 20 40",
			"running 20 40",
		}, log)
	})

	t.Run("deps change between runs", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)

		initialized := false
		NewEffect(func() {
			log = append(log, "running")
			if !initialized {
				count.Read()
			}
			initialized = true
		})

		count.Write(1)
		count.Write(2)

		assert.Equal(t, []string{
			"running",
			"running",
		}, log)
	})

	t.Run("render effects settle before user effects", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)

		NewEffect(func() {
			log = append(log, fmt.Sprintf("user %d", count.Read()))
		})

		NewRenderEffect(func() {
			log = append(log, fmt.Sprintf("render %d", count.Read()))
		})

		count.Write(10)

		assert.Equal(t, []string{
			"user 0",
			"render 0",
			"render 10",
			"user 10",
		}, log)
	})

	t.Run("dispose stops re-runs", func(t *testing.T) {
		log := []int{}

		count := NewSignal(0)
		effect := NewEffect(func() {
			log = append(log, count.Read())
		})

		count.Write(1)
		effect.Dispose()
		count.Write(2)

		assert.Equal(t, []int{0, 1}, log)
	})
}
