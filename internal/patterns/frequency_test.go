package patterns

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFrequencyMap(t *testing.T) {
	m := BuildFrequencyMap([]Observation{
		{Key: "Atraxa"},
		{Key: "Korvold", Weight: 2},
		{Key: "Atraxa", Weight: 1},
		{Key: "Edgar", Weight: -4},
	})

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 2, m.Count("Atraxa"))
	assert.Equal(t, 2, m.Count("Korvold"))
	assert.Equal(t, 1, m.Count("Edgar"))
	assert.Equal(t, 0, m.Count("Missing"))
	assert.Equal(t, []string{"Atraxa", "Korvold", "Edgar"}, m.Keys())
	assert.Equal(t, 5, m.Total())
}

func TestTopN(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		n    int
		want []RankedEntry
	}{
		{
			name: "descending by count",
			keys: []string{"a", "b", "b", "c", "c", "c"},
			n:    3,
			want: []RankedEntry{{"c", 3}, {"b", 2}, {"a", 1}},
		},
		{
			name: "ties keep first occurrence order",
			keys: []string{"zeta", "alpha", "mid", "alpha", "zeta"},
			n:    3,
			want: []RankedEntry{{"zeta", 2}, {"alpha", 2}, {"mid", 1}},
		},
		{
			name: "truncates to n",
			keys: []string{"a", "b", "c", "d"},
			n:    2,
			want: []RankedEntry{{"a", 1}, {"b", 1}},
		},
		{
			name: "n larger than map",
			keys: []string{"a"},
			n:    5,
			want: []RankedEntry{{"a", 1}},
		},
		{
			name: "zero n",
			keys: []string{"a"},
			n:    0,
			want: []RankedEntry{},
		},
		{
			name: "empty map",
			keys: nil,
			n:    3,
			want: []RankedEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopN(FromKeys(tt.keys...), tt.n)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopN_Properties(t *testing.T) {
	keys := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		keys = append(keys, fmt.Sprintf("card-%d", (i*7)%23))
	}
	m := FromKeys(keys...)

	for n := 0; n <= 30; n++ {
		first := TopN(m, n)
		second := TopN(m, n)
		require.Equal(t, first, second, "ranking must be reproducible")
		assert.LessOrEqual(t, len(first), n)
		for i := 1; i < len(first); i++ {
			assert.GreaterOrEqual(t, first[i-1].Count, first[i].Count)
		}
	}
}

func TestMostCommon(t *testing.T) {
	assert.Nil(t, MostCommon(NewFrequencyMap()))
	assert.Nil(t, MostCommon(nil))

	top := MostCommon(FromKeys("WU", "BG", "BG"))
	require.NotNil(t, top)
	assert.Equal(t, RankedEntry{Name: "BG", Count: 2}, *top)
}

func TestFrequencyMap_MarshalJSON(t *testing.T) {
	m := FromKeys("commander", "brawl", "commander")
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"commander":2,"brawl":1}`, string(data))

	empty, err := json.Marshal(NewFrequencyMap())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}
