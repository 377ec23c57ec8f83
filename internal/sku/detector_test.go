package sku

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgodinho/skunav/internal/domain"
)

func TestFirstMatchSingleSKU(t *testing.T) {
	d := MustDetector()

	tests := []struct {
		name  string
		text  string
		value string
		start int
	}{
		{
			name:  "sofa format",
			text:  "please check LEGACY_SOFA_20230101_1234 today",
			value: "LEGACY_SOFA_20230101_1234",
			start: 13,
		},
		{
			name:  "movie format",
			text:  "MOVIE_2023_TT1234567_M",
			value: "MOVIE_2023_TT1234567_M",
			start: 0,
		},
		{
			name:  "episode format",
			text:  "ref: SHOW_NAME_2024_TT12345678_S001_E010.",
			value: "SHOW_NAME_2024_TT12345678_S001_E010",
			start: 5,
		},
		{
			name:  "lowercase input is normalized",
			text:  "movie_2023_tt1234567_m shipped",
			value: "MOVIE_2023_TT1234567_M",
			start: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := d.FirstMatch(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.value, m.Value)
			assert.Equal(t, tt.start, m.Start)
			assert.Equal(t, tt.start+len(tt.value), m.End)
		})
	}
}

func TestFirstMatchNotFound(t *testing.T) {
	d := MustDetector()

	for _, text := range []string{"", "no identifiers here", "SOFA_123"} {
		_, err := d.FirstMatch(text)
		assert.True(t, errors.Is(err, domain.ErrNoSKU), "text %q", text)
	}
}

func TestScanReturnsMatchesInOrder(t *testing.T) {
	d := MustDetector()

	text := "first LEGACY_SOFA_20230101_1234 then MOVIE_2023_TT1234567_M done"
	matches := d.Scan(text)
	require.Len(t, matches, 2)
	assert.Equal(t, "LEGACY_SOFA_20230101_1234", matches[0].Value)
	assert.Equal(t, "MOVIE_2023_TT1234567_M", matches[1].Value)
	assert.Less(t, matches[0].Start, matches[1].Start)

	first, err := d.FirstMatch(text)
	require.NoError(t, err)
	assert.Equal(t, matches[0], first)
}

func TestScanNoOverlappingMatches(t *testing.T) {
	d := MustDetector()

	// The episode pattern subsumes the movie prefix; only one match may
	// survive for a single token.
	text := "SHOW_NAME_2024_TT12345678_S001_E010"
	matches := d.Scan(text)
	require.Len(t, matches, 1)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i].Start, matches[i-1].End)
	}
}

func TestContextWindow(t *testing.T) {
	d := MustDetector()

	text := "AAAAAAAAAAAAAAAAAAAA MOVIE_2023_TT1234567_M BBBBBBBBBBBBBBBBBBBB"
	m, err := d.FirstMatch(text)
	require.NoError(t, err)
	// 16 characters either side of the match.
	assert.Equal(t, text[m.Start-16:m.End+16], m.Context)
	assert.Equal(t, "AAAAAAAAAAAAAAA MOVIE_2023_TT1234567_M BBBBBBBBBBBBBBB", m.Context)

	// Window is clamped at text boundaries.
	m2, err := d.FirstMatch("MOVIE_2023_TT1234567_M")
	require.NoError(t, err)
	assert.Equal(t, "MOVIE_2023_TT1234567_M", m2.Context)
}

func TestCustomGrammar(t *testing.T) {
	d, err := NewDetector(`VEND-\d{5}`)
	require.NoError(t, err)

	m, err := d.FirstMatch("invoice for VEND-12345 shipped")
	require.NoError(t, err)
	assert.Equal(t, "VEND-12345", m.Value)
	assert.Equal(t, 12, m.Start)
	assert.Equal(t, 22, m.End)
}

func TestInvalidPattern(t *testing.T) {
	_, err := NewDetector(`VEND-[`)
	assert.Error(t, err)
}
