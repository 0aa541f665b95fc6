package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/store"
)

func TestNonEmpty(t *testing.T) {
	rule := NonEmpty()
	assert.NoError(t, rule.Check(store.StringValue("alice")))
	assert.Error(t, rule.Check(store.StringValue("")))
	assert.Error(t, rule.Check(store.StringValue("   ")))
	assert.Error(t, rule.Check(store.IntValue(1)))
}

func TestEmail(t *testing.T) {
	rule := Email()
	assert.NoError(t, rule.Check(store.StringValue("alice@example.com")))
	assert.Error(t, rule.Check(store.StringValue("alice")))
	assert.Error(t, rule.Check(store.StringValue("")))
	assert.Error(t, rule.Check(store.BoolValue(true)))
}

func TestRange(t *testing.T) {
	rule := Range(0, 100)
	assert.NoError(t, rule.Check(store.IntValue(0)))
	assert.NoError(t, rule.Check(store.IntValue(100)))
	assert.Error(t, rule.Check(store.IntValue(-1)))
	assert.Error(t, rule.Check(store.IntValue(101)))
	assert.Error(t, rule.Check(store.StringValue("50")))
}

func TestMaxLen(t *testing.T) {
	rule := MaxLen(3)
	assert.NoError(t, rule.Check(store.StringValue("abc")))
	assert.Error(t, rule.Check(store.StringValue("abcd")))
}

func TestSet_AllFailuresReported(t *testing.T) {
	set := NewSet(
		Field{Name: "username", Rules: []Rule{NonEmpty(), MaxLen(8)}},
		Field{Name: "email", Rules: []Rule{Email()}},
	)

	err := set.Validate(map[string]store.Value{
		"username": store.StringValue("much-too-long-name"),
		"email":    store.StringValue("nope"),
	})
	require.Error(t, err)

	var batch *errors.ValidationErrors
	require.ErrorAs(t, err, &batch)
	assert.Equal(t, []string{"email", "username"}, batch.Fields())
	assert.Equal(t, "maxlen", batch.Failures[1].Rule)
}

func TestSet_UnknownFieldIsAFailure(t *testing.T) {
	set := NewSet(Field{Name: "username", Rules: []Rule{NonEmpty()}})

	err := set.Validate(map[string]store.Value{
		"username": store.StringValue("alice"),
		"nickname": store.StringValue("al"),
	})
	require.Error(t, err)

	var batch *errors.ValidationErrors
	require.ErrorAs(t, err, &batch)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, "nickname", batch.Failures[0].Field)
	assert.Equal(t, "recognized", batch.Failures[0].Rule)
}

func TestSet_ValidPasses(t *testing.T) {
	set := NewSet(
		Field{Name: "username", Rules: []Rule{NonEmpty()}},
		Field{Name: "email", Rules: []Rule{Email()}},
	)

	assert.NoError(t, set.Validate(map[string]store.Value{
		"username": store.StringValue("alice"),
		"email":    store.StringValue("alice@example.com"),
	}))
	assert.NoError(t, set.Validate(nil))
}

func TestSet_Recognized(t *testing.T) {
	set := NewSet(
		Field{Name: "email"},
		Field{Name: "username"},
	)
	assert.Equal(t, []string{"email", "username"}, set.Recognized())
}
