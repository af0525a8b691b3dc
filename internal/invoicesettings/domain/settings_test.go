package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(8.25), 8.25, true},
		{10, 10, true},
		{json.Number("7.5"), 7.5, true},
		{" 12 ", 12, true},
		{"abc", 0, false},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := Number(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
	}
}

func TestMergeSkipsNil(t *testing.T) {
	merged := Merge(Settings{"notes": "keep", "terms": "old"}, Settings{"notes": nil, "terms": "new"})
	assert.Equal(t, Settings{"notes": "keep", "terms": "new"}, merged)
}

func TestSettingsString(t *testing.T) {
	s := Settings{"a": "x", "b": float64(5), "c": 2.5}
	assert.Equal(t, "x", s.String("a"))
	assert.Equal(t, "5", s.String("b"))
	assert.Equal(t, "2.5", s.String("c"))
	assert.Equal(t, "", s.String("missing"))
}
