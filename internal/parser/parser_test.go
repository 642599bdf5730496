package parser

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedPairs int
		expectedQ     string
		expectedA     string
	}{
		{
			name:          "Simple Q&A",
			input:         "Q: What is the capital of France?\nA: Paris",
			expectedPairs: 1,
			expectedQ:     "What is the capital of France?",
			expectedA:     "Paris",
		},
		{
			name: "Multiline Answer",
			input: `
Q: What are the primary colors?
A: Red
Blue
Yellow
`,
			expectedPairs: 1,
			expectedQ:     "What are the primary colors?",
			expectedA:     "Red\nBlue\nYellow",
		},
		{
			name: "Two Pairs",
			input: `
Q: First question
A: First answer

Q: Second question
A: Second answer
`,
			expectedPairs: 2,
		},
		{
			name: "Separator between pairs",
			input: `
Q: One
A: 1
---
Q: Two
A: 2
`,
			expectedPairs: 2,
		},
		{
			name:          "No pairs, just text",
			input:         "This is a file with no questions.",
			expectedPairs: 0,
		},
		{
			name:          "Prefixes with no space",
			input:         "Q:Question\nA:Answer",
			expectedPairs: 1,
			expectedQ:     "Question",
			expectedA:     "Answer",
		},
		{
			name:          "Question without answer is kept",
			input:         "Q: Orphan question",
			expectedPairs: 1,
			expectedQ:     "Orphan question",
			expectedA:     "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := strings.NewReader(tc.input)
			pairs, err := Parse(r)
			if err != nil {
				t.Fatalf("Parse() returned an unexpected error: %v", err)
			}

			if len(pairs) != tc.expectedPairs {
				t.Fatalf("Expected %d pairs, but got %d", tc.expectedPairs, len(pairs))
			}

			if tc.expectedPairs == 1 {
				pair := pairs[0]
				if pair.Question != tc.expectedQ {
					t.Errorf("Expected Question to be '%s', but got '%s'", tc.expectedQ, pair.Question)
				}
				if pair.Answer != tc.expectedA {
					t.Errorf("Expected Answer to be '%s', but got '%s'", tc.expectedA, pair.Answer)
				}
			}
		})
	}
}
