package timecalc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0:00", 0},
		{"8:00", 480},
		{"08:00", 480},
		{"12:30", 750},
		{" 9:05 ", 545},
		{"25:00", 1500},
	}
	for _, tt := range tests {
		got, err := ToMinutes(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestToMinutes_Malformed(t *testing.T) {
	for _, in := range []string{"", "8", "8:0", "123:00", "8h00", "ab:cd", "1:30:00"} {
		_, err := ToMinutes(in)
		var mte *MalformedTimeError
		require.True(t, errors.As(err, &mte), "expected MalformedTimeError for %q", in)
		assert.Equal(t, in, mte.Value)
	}
}

func TestFromMinutes(t *testing.T) {
	assert.Equal(t, "0:00", FromMinutes(0))
	assert.Equal(t, "8:00", FromMinutes(480))
	assert.Equal(t, "8:05", FromMinutes(485))
	assert.Equal(t, "23:59", FromMinutes(1439))
	assert.Equal(t, "24:00", FromMinutes(1440))
	assert.Equal(t, "26:15", FromMinutes(1575))
	assert.Equal(t, "-0:30", FromMinutes(-30))
}

func TestRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m += 7 {
			s := FromMinutes(h*60 + m)
			got, err := ToMinutes(s)
			require.NoError(t, err)
			assert.Equal(t, s, FromMinutes(got))
		}
	}
}

func TestNormalizeDuration(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"01:30:00", "1:30"},
		{"10:05:59", "10:05"},
		{"1.5", "1:30"},
		{"1,5", "1:30"},
		{"0,25", "0:15"},
		{"0.1", "0:06"},
		{"2", "2:00"},
		{"1:30", "1:30"},
		{"08:00", "08:00"},
		{" 3:15 ", "3:15"},
		{"", ""},
		{"abc", "abc"},
		{"1h30", "1h30"},
		{"-1.5", "-1.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDuration(tt.in), "NormalizeDuration(%q)", tt.in)
	}
}

func TestNormalizeDuration_Idempotent(t *testing.T) {
	for _, in := range []string{"01:30:00", "1.5", "2", "1:30", "0,75", "weird"} {
		once := NormalizeDuration(in)
		assert.Equal(t, once, NormalizeDuration(once), in)
	}
}

func TestAdd(t *testing.T) {
	got, err := Add("8:00", "3:30")
	require.NoError(t, err)
	assert.Equal(t, "11:30", got)

	got, err = Add("22:00", "3:00")
	require.NoError(t, err)
	assert.Equal(t, "25:00", got)

	_, err = Add("8:00", "x")
	assert.Error(t, err)
}

func TestHour(t *testing.T) {
	h, err := Hour("13:45")
	require.NoError(t, err)
	assert.Equal(t, 13, h)
	assert.True(t, IsValid("7:00"))
	assert.False(t, IsValid("7"))
}
