// Package parser recovers structured option legs and underlying quotes from
// free-form broker paste text. Broker exports have no reliable delimiter and
// vary in column order between screens; the one stable landmark is the
// ITM/OTM marker token, so per-leg fields are extracted positionally after
// that anchor.
package parser

import (
	"bufio"
	"io"
	"strings"
)

// NormalizeLines reads all of r and returns the non-empty lines with tabs
// collapsed to spaces and surrounding whitespace trimmed. Empty input yields
// an empty slice; downstream components treat that as "no positions found",
// never as an error.
func NormalizeLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := normalize(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\t", " "))
}
