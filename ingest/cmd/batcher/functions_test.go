package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

func TestParseDelimiter(t *testing.T) {
	for _, in := range []string{"\t", ",", "|", "§"} {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, []rune(in)[0], got)
	}

	for _, in := range []string{"", ",,", "ab"} {
		_, err := ParseDelimiter(in)
		assert.Error(t, err, "%q", in)
	}
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection("")
	require.NoError(t, err)
	assert.Equal(t, bulkprocess.Selection{}, sel)

	sel, err = ParseSelection("1, 2,3.5,-4")
	require.NoError(t, err)
	assert.Equal(t, bulkprocess.Selection{X: 1, Y: 2, Width: 3.5, Height: -4}, sel)

	_, err = ParseSelection("1,2,3")
	assert.Error(t, err)
	_, err = ParseSelection("1,2,3,x")
	assert.Error(t, err)
}

func TestRandOrthoglyphs(t *testing.T) {
	assert.Len(t, RandOrthoglyphs(15), 15)
}
