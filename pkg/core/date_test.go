package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2020-01-02", NewDate(2020, time.January, 2)},
		{"2020-1-2", NewDate(2020, time.January, 2)},
		{"2020/01/02", NewDate(2020, time.January, 2)},
		{" 2020-01-02 ", NewDate(2020, time.January, 2)},
		{"2020-01-02T23:30:00-05:00", NewDate(2020, time.January, 2)},
		{"2020-01-02T00:30:00+09:00", NewDate(2020, time.January, 2)},
		{"2020-01-02 10:00:00", NewDate(2020, time.January, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2020-13-01", "12.5"} {
		_, err := ParseDate(in)
		require.Error(t, err, in)
	}
}

func TestDate_MapKeyIdentity(t *testing.T) {
	keys := map[Date]int{}
	keys[MustParseDate("2020-01-02")]++
	keys[MustParseDate("2020-1-2")]++
	keys[MustParseDate("2020-01-02T23:59:59Z")]++
	keys[DateOf(time.Date(2020, 1, 2, 12, 0, 0, 0, time.FixedZone("X", -8*3600)))]++

	require.Len(t, keys, 1)
	require.Equal(t, 4, keys[NewDate(2020, 1, 2)])
}

func TestDate_Order(t *testing.T) {
	a := NewDate(2019, time.December, 31)
	b := NewDate(2020, time.January, 1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, NewDate(2020, time.March, 1), NewDate(2020, time.February, 30))
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2020, time.January, 2)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `"2020-01-02"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, d, back)
	require.Error(t, json.Unmarshal([]byte(`"nope"`), &back))
}
