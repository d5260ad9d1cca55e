package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ToggleExpr_ShouldRenderConditionalAssignment(t *testing.T) {
	assert := assert.New(t)

	expr := ToggleExpr("saved_users", 2)
	assert.Equal(
		"saved_users = CASE WHEN $2 = ANY(saved_users) THEN array_remove(saved_users, $2) ELSE array_append(saved_users, $2) END",
		expr,
	)
}

func Test_ToggleExpr_ShouldUseGivenColumnAndPlaceholder(t *testing.T) {
	assert := assert.New(t)

	expr := ToggleExpr("followers", 3)
	assert.Contains(expr, "followers = CASE WHEN $3 = ANY(followers)")
	assert.Contains(expr, "array_remove(followers, $3)")
	assert.Contains(expr, "array_append(followers, $3)")
}

func Test_Toggle_WhenAbsent_ShouldAdd(t *testing.T) {
	assert := assert.New(t)

	ids, member := Toggle([]string{"u1", "u2"}, "u3")
	assert.True(member)
	assert.Equal([]string{"u1", "u2", "u3"}, ids)
}

func Test_Toggle_WhenPresent_ShouldRemove(t *testing.T) {
	assert := assert.New(t)

	ids, member := Toggle([]string{"u1", "u2", "u3"}, "u2")
	assert.False(member)
	assert.Equal([]string{"u1", "u3"}, ids)
}

func Test_Toggle_ShouldRemoveByValueNotIndex(t *testing.T) {
	assert := assert.New(t)

	// the array shifted since the caller last saw it
	ids, member := Toggle([]string{"u9", "u2", "u1"}, "u2")
	assert.False(member)
	assert.Equal([]string{"u9", "u1"}, ids)
}

func Test_Toggle_TwiceIsIdentity(t *testing.T) {
	assert := assert.New(t)

	original := []string{"u1", "u2"}
	once, member := Toggle(original, "u5")
	assert.True(member)
	twice, member := Toggle(once, "u5")
	assert.False(member)
	assert.Equal(original, twice)
}

func Test_Toggle_ShouldNotMutateInput(t *testing.T) {
	assert := assert.New(t)

	original := []string{"u1", "u2"}
	Toggle(original, "u3")
	assert.Equal([]string{"u1", "u2"}, original)
}

func Test_Toggle_NeverProducesDuplicates(t *testing.T) {
	assert := assert.New(t)

	ids := []string{"u1"}
	for i := 0; i < 101; i++ {
		ids, _ = Toggle(ids, "u2")
	}
	seen := map[string]int{}
	for _, id := range ids {
		seen[id]++
	}
	for id, count := range seen {
		assert.Equal(1, count, "id %s appears %d times", id, count)
	}
	assert.True(Contains(ids, "u2"))
}

func Test_Contains(t *testing.T) {
	assert := assert.New(t)

	assert.True(Contains([]string{"a", "b"}, "a"))
	assert.False(Contains([]string{"a", "b"}, "c"))
	assert.False(Contains(nil, "a"))
	assert.False(Contains([]string{"a"}, ""))
}
