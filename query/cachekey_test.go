package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	t.Run("uses operation name when present", func(t *testing.T) {
		key := GenerateCacheKey("GetUser", "query GetUser { user { id } }", nil)
		assert.Equal(t, "gql:GetUser", key)
	})

	t.Run("falls back to a query hash when operation name is empty", func(t *testing.T) {
		key := GenerateCacheKey("", "query { user { id } }", nil)
		assert.Contains(t, key, "gql:")
		assert.NotContains(t, key, "GetUser")
	})

	t.Run("cosmetic whitespace differences don't change the hashed key", func(t *testing.T) {
		a := GenerateCacheKey("", "query {\n  user { id }\n}", nil)
		b := GenerateCacheKey("", "query { user { id } }", nil)
		assert.Equal(t, a, b)
	})

	t.Run("variables change the key", func(t *testing.T) {
		withVars := GenerateCacheKey("GetUser", "", map[string]any{"id": 1})
		withoutVars := GenerateCacheKey("GetUser", "", nil)
		assert.NotEqual(t, withVars, withoutVars)
	})

	t.Run("key order of variables doesn't change the key", func(t *testing.T) {
		a := GenerateCacheKey("GetUser", "", map[string]any{"id": 1, "name": "alice"})
		b := GenerateCacheKey("GetUser", "", map[string]any{"name": "alice", "id": 1})
		assert.Equal(t, a, b)
	})
}

func TestStableStringify(t *testing.T) {
	a := stableStringify(map[string]any{"a": 1, "b": 2})
	b := stableStringify(map[string]any{"b": 2, "a": 1})
	assert.Equal(t, a, b)
}

func TestHashStringDeterministic(t *testing.T) {
	assert.Equal(t, hashString("same input"), hashString("same input"))
	assert.NotEqual(t, hashString("a"), hashString("b"))
}
