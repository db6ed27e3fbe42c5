package triage

import (
	"context"
	"strings"
	"unicode"
)

const (
	maxRepeatedRun     = 8
	minWordsForVariety = 6
	minWordVariety     = 0.3
)

var spamMarkers = []string{"http://", "https://", "www.", "t.me/", "bit.ly"}

// RulesClassifier is a local, deterministic classifier for development and
// for deployments without a reasoning service.
type RulesClassifier struct{}

var _ Classifier = RulesClassifier{}

// NewRulesClassifier creates the local rules classifier
func NewRulesClassifier() RulesClassifier {
	return RulesClassifier{}
}

// Classify implements Classifier. The first matching rule wins.
func (RulesClassifier) Classify(ctx context.Context, report Report) (*Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(report.ReportText)
	lower := strings.ToLower(text)

	switch {
	case report.ReporterPhoneKey != "" && report.ReporterPhoneKey == report.ReportedPhoneKey:
		return suspicious("reporter and reported numbers are the same"), nil
	case !hasLetter(text):
		return suspicious("narrative contains no words describing an incident"), nil
	case longestRun(text) >= maxRepeatedRun:
		return suspicious("narrative is padded with repeated characters"), nil
	case containsAny(lower, spamMarkers):
		return suspicious("narrative contains links, common in spam"), nil
	case lowWordVariety(lower):
		return suspicious("narrative repeats the same words instead of describing an incident"), nil
	}

	return &Verdict{IsSuspicious: false, Reason: "no abuse indicators found"}, nil
}

func suspicious(reason string) *Verdict {
	return &Verdict{IsSuspicious: true, Reason: reason}
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func longestRun(s string) int {
	longest, run := 0, 0
	var prev rune
	for i, r := range s {
		if i > 0 && r == prev && !unicode.IsSpace(r) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = r
	}
	return longest
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func lowWordVariety(s string) bool {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) < minWordsForVariety {
		return false
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return float64(len(unique))/float64(len(words)) < minWordVariety
}
