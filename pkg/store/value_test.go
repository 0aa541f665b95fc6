package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/statekit/pkg/store"
)

func TestValue_KindsAndAccessors(t *testing.T) {
	assert.Equal(t, store.KindString, store.StringValue("x").Kind())
	assert.Equal(t, "x", store.StringValue("x").Text())
	assert.Equal(t, int64(7), store.IntValue(7).Int())
	assert.Equal(t, 1.5, store.FloatValue(1.5).Float())
	assert.True(t, store.BoolValue(true).Bool())

	var zero store.Value
	assert.False(t, zero.IsValid())
	assert.Equal(t, store.KindInvalid, zero.Kind())
	assert.Nil(t, zero.Interface())
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, store.IntValue(7).Equal(store.IntValue(7)))
	assert.False(t, store.IntValue(7).Equal(store.IntValue(8)))
	assert.False(t, store.IntValue(7).Equal(store.FloatValue(7)))
	assert.False(t, store.StringValue("").Equal(store.Value{}))
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "hi", store.StringValue("hi").String())
	assert.Equal(t, "42", store.IntValue(42).String())
	assert.Equal(t, "true", store.BoolValue(true).String())
	assert.Equal(t, "<invalid>", store.Value{}.String())
}

func TestFromInterface(t *testing.T) {
	v, err := store.FromInterface("x")
	require.NoError(t, err)
	assert.Equal(t, store.StringValue("x"), v)

	v, err = store.FromInterface(3)
	require.NoError(t, err)
	assert.Equal(t, store.IntValue(3), v)

	v, err = store.FromInterface(2.5)
	require.NoError(t, err)
	assert.Equal(t, store.FloatValue(2.5), v)

	_, err = store.FromInterface([]int{1})
	require.Error(t, err)
}
