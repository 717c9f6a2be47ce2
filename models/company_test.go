package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDetailWins(t *testing.T) {
	row := ListRow{KeyURL: "https://i3connect.com/company/actility", KeyCountry: "France"}
	detail := DetailRecord{KeyCountry: "FR", KeyName: "Actility", "x_id": json.Number("7")}

	c := Merge(row, detail)
	require.Len(t, c, 4)
	assert.Equal(t, "FR", c.Field(KeyCountry))
	assert.Equal(t, "Actility", c.Name())
	assert.Equal(t, "https://i3connect.com/company/actility", c.URL())
	assert.Equal(t, "7", c.Field("x_id"))

	// inputs are left untouched
	assert.Equal(t, "France", row[KeyCountry])
	assert.Len(t, detail, 3)
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"line\nbreak", "line\nbreak"},
		{json.Number("113.20"), "113.20"},
		{true, "true"},
		{false, "false"},
		{[]any{json.Number("1"), "a<b"}, `[1,"a<b"]`},
		{map[string]any{"b": nil, "a": "x"}, `{"a":"x","b":null}`},
		{3, "3"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatValue(tc.in))
	}
}

func TestFieldMissing(t *testing.T) {
	assert.Equal(t, "", Company{}.Field(KeyVideo))
	assert.Equal(t, "", Company{}.Name())
}
