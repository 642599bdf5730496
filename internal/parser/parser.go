// Package parser extracts question/answer pairs from markdown deck
// files. A pair is a "Q:" block followed by an "A:" block; either may
// span multiple lines, and "---" separates pairs explicitly.
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
)

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
)

// ParseFile reads a file from the given path and extracts all pairs.
func ParseFile(path string) ([]domain.Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all pairs.
func Parse(r io.Reader) ([]domain.Pair, error) {
	scanner := bufio.NewScanner(r)
	var pairs []domain.Pair
	var current domain.Pair
	var block []string
	currentState := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch currentState {
		case readingQuestion:
			current.Question = content
		case readingAnswer:
			current.Answer = content
		}
		block = nil
	}

	finishPair := func() {
		flushBlock()
		if current.Question != "" {
			pairs = append(pairs, current)
		}
		current = domain.Pair{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		if line == "---" {
			finishPair()
			continue
		}

		switch {
		case strings.HasPrefix(line, questionPrefix):
			// A new question always starts a new pair.
			if currentState != seeking {
				finishPair()
			}
			currentState = readingQuestion
			block = append(block, trimPrefix(line, questionPrefix))
		case strings.HasPrefix(line, answerPrefix):
			flushBlock()
			currentState = readingAnswer
			block = append(block, trimPrefix(line, answerPrefix))
		default:
			if currentState != seeking {
				block = append(block, line)
			}
		}
	}

	finishPair() // Finish the very last pair in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return pairs, nil
}

// trimPrefix drops the marker and at most one following space, so
// indentation inside a block is preserved.
func trimPrefix(line, prefix string) string {
	content := line[len(prefix):]
	if strings.HasPrefix(content, " ") {
		content = content[1:]
	}
	return content
}
