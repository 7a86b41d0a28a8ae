// internal/casing/casing_test.go
package casing

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCamelKey(t *testing.T) {
	cases := map[string]string{
		"song_id":             "songId",
		"is_read_by_admin":    "isReadByAdmin",
		"account_number_iban": "accountNumberIban",
		"already":             "already",
		"alreadyCamel":        "alreadyCamel",
		"x-request":           "x-Request",
		"trailing_":           "trailing_",
		"ipi_1":               "ipi_1",
		"_leading":            "Leading",
		"a__b":                "a_B",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToCamelKey(in), in)
	}
}

func TestToCamelNested(t *testing.T) {
	var in any
	require.NoError(t, json.Unmarshal([]byte(`{
		"song_id": "s1",
		"writers_data": [
			{"writer_id": "w1", "collect_on_behalf": true, "role": ["Composer"]}
		],
		"grounding_chunks": null,
		"meta": {"inner_map": {"deep_key": 1}}
	}`), &in))

	out := ToCamel(in).(map[string]any)

	assert.Equal(t, "s1", out["songId"])
	writers := out["writersData"].([]any)
	w := writers[0].(map[string]any)
	assert.Equal(t, "w1", w["writerId"])
	assert.Equal(t, true, w["collectOnBehalf"])
	assert.Equal(t, []any{"Composer"}, w["role"])
	assert.Contains(t, out, "groundingChunks")
	assert.Nil(t, out["groundingChunks"])
	deep := out["meta"].(map[string]any)["innerMap"].(map[string]any)
	assert.Equal(t, float64(1), deep["deepKey"])

	// input untouched
	assert.Contains(t, in.(map[string]any), "song_id")
}

func TestToCamelPassThrough(t *testing.T) {
	assert.Nil(t, ToCamel(nil))
	assert.Equal(t, "text", ToCamel("text"))
	assert.Equal(t, 3.5, ToCamel(3.5))
	assert.Equal(t, true, ToCamel(true))
	assert.Equal(t, map[string]any{}, ToCamel(map[string]any{}))
	assert.Equal(t, []any{}, ToCamel([]any{}))
}

func TestToSnake(t *testing.T) {
	in := map[string]any{"songId": "s1", "writers": []any{map[string]any{"collectOnBehalf": false}}}
	out := ToSnake(in).(map[string]any)
	assert.Equal(t, "s1", out["song_id"])
	assert.Equal(t, false, out["writers"].([]any)[0].(map[string]any)["collect_on_behalf"])
}

func TestCasingProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	snakeKey := gen.RegexMatch(`^[a-z]{1,6}(_[a-z]{1,6}){0,3}$`)

	properties.Property("camel conversion is idempotent once converged", prop.ForAll(
		func(k string) bool {
			once := ToCamelKey(k)
			return ToCamelKey(once) == once
		},
		snakeKey,
	))

	properties.Property("snake keys survive a round trip", prop.ForAll(
		func(k string) bool {
			return ToSnakeKey(ToCamelKey(k)) == k
		},
		snakeKey,
	))

	properties.Property("converting an object twice equals converting once", prop.ForAll(
		func(keys []string) bool {
			obj := map[string]any{}
			for i, k := range keys {
				obj[k] = []any{map[string]any{k: i}}
			}
			once := ToCamel(obj)
			return assert.ObjectsAreEqual(once, ToCamel(once))
		},
		gen.SliceOf(snakeKey),
	))

	properties.TestingRun(t)
}
