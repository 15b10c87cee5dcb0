package markdown

import (
	"fmt"
	"unicode"
)

// Estimator approximates the token count of a text.
type Estimator interface {
	Estimate(text string) int
}

// EstimatorFunc adapts a function to Estimator.
type EstimatorFunc func(text string) int

// Estimate implements Estimator.
func (f EstimatorFunc) Estimate(text string) int { return f(text) }

// HeuristicEstimator counts tokens without a vocabulary. Whitespace is free,
// every CJK, Kana or Hangul rune is one token, a run of punctuation costs
// one token per two runes and a run of letters or digits one per four.
type HeuristicEstimator struct{}

var _ Estimator = HeuristicEstimator{}

type runeClass int

const (
	classSpace runeClass = iota
	classIdeograph
	classWord
	classPunct
)

// Estimate implements Estimator.
func (HeuristicEstimator) Estimate(text string) int {
	tokens := 0
	run, runLen := classSpace, 0

	flush := func() {
		switch run {
		case classWord:
			tokens += ceilDiv(runLen, 4)
		case classPunct:
			tokens += ceilDiv(runLen, 2)
		}
		runLen = 0
	}

	for _, r := range text {
		c := classify(r)
		if c == classIdeograph {
			flush()
			run = classSpace
			tokens++
			continue
		}
		if c != run {
			flush()
			run = c
		}
		runLen++
	}
	flush()
	return tokens
}

func classify(r rune) runeClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul):
		return classIdeograph
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
		return classWord
	}
	return classPunct
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// FormatTokenCount renders a count as "~850" or "~1.2K".
func FormatTokenCount(tokens int) string {
	if tokens >= 1000 {
		return fmt.Sprintf("~%.1fK", float64(tokens)/1000)
	}
	return fmt.Sprintf("~%d", tokens)
}
