package fiscal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatriculeFiscal(t *testing.T) {
	valid := map[string]string{
		"1234567A/A/M/000":  "1234567A/A/M/000",
		"1234567a/a/m/000":  "1234567A/A/M/000",
		"1234567AAM000":     "1234567A/A/M/000",
		"1234567/B/B/P/001": "1234567B/B/P/001",
		" 0012345 Z N C 002": "0012345Z/N/C/002",
		"7654321-K-D-E-000":  "7654321K/D/E/000",
	}
	for in, want := range valid {
		t.Run(in, func(t *testing.T) {
			got, err := ParseMatriculeFiscal(in)
			require.NoError(t, err)
			assert.Equal(t, want, got.String())
		})
	}

	invalid := []string{
		"",
		"123456A/A/M/000",   // six digits
		"1234567I/A/M/000",  // I is never a check letter
		"1234567A/X/M/000",  // unknown TVA code
		"1234567A/A/Z/000",  // unknown category
		"1234567A/A/M/00",   // short establishment number
		"1234567A/A/M/0000", // long establishment number
	}
	for _, in := range invalid {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := ParseMatriculeFiscal(in)
			assert.Error(t, err)
		})
	}
}

func TestMatriculeFiscal_Accessors(t *testing.T) {
	m, err := ParseMatriculeFiscal("1234567A/B/M/000")
	require.NoError(t, err)
	assert.True(t, m.IsHeadOffice())
	assert.Equal(t, "B", m.TVACode())

	m, err = ParseMatriculeFiscal("1234567A/A/M/003")
	require.NoError(t, err)
	assert.False(t, m.IsHeadOffice())
}
