package csv

import (
	"bytes"
	"io"
)

// Candidates lists the delimiters Sniff chooses from, in tie-break order.
var Candidates = []rune{',', ';', '\t'}

const (
	sniffBytes   = 64 * 1024
	sniffRecords = 20
)

// Sniff picks the delimiter that splits the sample into the widest
// consistent table: every sampled record must have the same field count as
// the first one. When no candidate is consistent, the widest header wins.
// A sample with no candidate at all falls back to ','.
//
// truncated tells Sniff that the sample was cut from a larger input, so
// the last (possibly partial) record is ignored.
func Sniff(sample []byte, truncated bool) rune {
	best, bestWidth := ',', 1
	fallback, fallbackWidth := ',', 1

	for _, cand := range Candidates {
		widths := sampleWidths(sample, cand, truncated)
		if len(widths) == 0 {
			continue
		}
		head := widths[0]
		if head > fallbackWidth {
			fallback, fallbackWidth = cand, head
		}
		if head <= bestWidth {
			continue
		}
		consistent := true
		for _, w := range widths[1:] {
			if w != head {
				consistent = false
				break
			}
		}
		if consistent {
			best, bestWidth = cand, head
		}
	}
	if bestWidth > 1 {
		return best
	}
	return fallback
}

// sampleWidths returns the field count of the leading records of sample
// when split on comma.
func sampleWidths(sample []byte, comma rune, truncated bool) []int {
	rd := NewReader(bytes.NewReader(sample))
	rd.Comma = comma

	var widths []int
	for len(widths) < sniffRecords {
		rec, _, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// An open quote at the end of a cut sample is expected.
			break
		}
		widths = append(widths, len(rec))
	}
	if truncated && len(widths) > 1 {
		widths = widths[:len(widths)-1]
	}
	return widths
}
