package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

// RandOrthoglyphs produces a string of length n randomly.
func RandOrthoglyphs(n int) string {
	var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	lenLetters := len(letters)
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(lenLetters)]
	}
	return string(b)
}

// ParseSelection reads "x,y,width,height". An empty string selects the whole
// image.
func ParseSelection(s string) (bulkprocess.Selection, error) {
	if strings.TrimSpace(s) == "" {
		return bulkprocess.Selection{}, nil
	}

	splitVals := strings.Split(s, ",")
	if len(splitVals) != 4 {
		return bulkprocess.Selection{}, fmt.Errorf("if setting roi, need to pass 4 values: x,y,width,height")
	}

	vals := make([]float64, 4)
	for i, v := range splitVals {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return bulkprocess.Selection{}, err
		}
		vals[i] = f
	}

	return bulkprocess.Selection{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// ParseDelimiter reads the single character that separates batch file fields.
func ParseDelimiter(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
