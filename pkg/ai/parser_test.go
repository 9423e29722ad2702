package ai

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArrayBareArray(t *testing.T) {
	items, err := ParseArray(`[{"reason":"a"},{"reason":"b"}]`, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var first map[string]string
	require.NoError(t, json.Unmarshal(items[0], &first))
	assert.Equal(t, "a", first["reason"])
}

func TestParseArrayStripsFences(t *testing.T) {
	content := "```json\n[{\"reason\":\"a\"}]\n```"
	items, err := ParseArray(content, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestParseArrayObjectWrapper(t *testing.T) {
	content := `{"items":[{"reason":"a"},{"reason":"b"},{"reason":"c"}]}`
	items, err := ParseArray(content, 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestParseArrayIgnoresSurroundingProse(t *testing.T) {
	content := "Here is the plan you asked for: [{\"reason\":\"a\"}] Let me know if it helps."
	items, err := ParseArray(content, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestParseArrayRepairsTruncatedTail(t *testing.T) {
	content := `[{"reason":"first"},{"reason":"sec`
	items, err := ParseArray(content, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var first map[string]string
	require.NoError(t, json.Unmarshal(items[0], &first))
	assert.Equal(t, "first", first["reason"])
}

func TestParseArrayDropsExtraItems(t *testing.T) {
	items, err := ParseArray(`[{"a":1},{"b":2},{"c":3}]`, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestParseArrayShortArrayFails(t *testing.T) {
	_, err := ParseArray(`[{"a":1}]`, 3)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Reason, "expected 3 items")
}

func TestParseArrayNoArrayFails(t *testing.T) {
	_, err := ParseArray(`{"reason":"not an array"}`, 1)
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseArrayEmptyResponseFails(t *testing.T) {
	_, err := ParseArray("   ", 1)
	require.Error(t, err)
}
