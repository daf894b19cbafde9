// Package parser segments filtered script lines into tests, actions, hooks
// and the free-standing preamble and epilogue.
package parser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"webbehave/internal/logger"
	"webbehave/pkg/behavetypes"
)

const (
	testPrefix   = "[test "
	actionPrefix = "[action "
	closerPrefix = "[end"
)

// hookMarkers maps hook opener lines to their block kind.
var hookMarkers = map[string]behavetypes.BlockKind{
	"[before all]":  behavetypes.BlockBeforeAll,
	"[before each]": behavetypes.BlockBeforeEach,
	"[after all]":   behavetypes.BlockAfterAll,
	"[after each]":  behavetypes.BlockAfterEach,
}

// canonicalClosers lists the expected closer for each block kind.
var canonicalClosers = map[behavetypes.BlockKind]string{
	behavetypes.BlockTest:       "[endtest]",
	behavetypes.BlockAction:     "[endaction]",
	behavetypes.BlockBeforeAll:  "[endbefore]",
	behavetypes.BlockBeforeEach: "[endbefore]",
	behavetypes.BlockAfterAll:   "[endafter]",
	behavetypes.BlockAfterEach:  "[endafter]",
}

type scanState int

const (
	stateNone scanState = iota
	stateCollecting
)

// segmenter carries the scan state for one Segment call.
type segmenter struct {
	log    *log.Logger
	script *behavetypes.Script

	state   scanState
	current *behavetypes.Block
	seen    bool     // whether any block has been opened
	pending []string // free lines after the latest block
}

// IsOpener reports whether line opens a block, returning its kind and name.
// Hook blocks have an empty name.
func IsOpener(line string) (behavetypes.BlockKind, string, bool) {
	if kind, ok := hookMarkers[line]; ok {
		return kind, "", true
	}
	if !strings.HasSuffix(line, "]") {
		return 0, "", false
	}
	switch {
	case strings.HasPrefix(line, testPrefix):
		return behavetypes.BlockTest, blockName(line, testPrefix), true
	case strings.HasPrefix(line, actionPrefix):
		return behavetypes.BlockAction, blockName(line, actionPrefix), true
	}
	return 0, "", false
}

// IsCloser reports whether line closes a block.
func IsCloser(line string) bool {
	return strings.HasPrefix(line, closerPrefix)
}

func blockName(line, prefix string) string {
	return BlockName(line[len(prefix) : len(line)-1])
}

// BlockName normalizes a raw test or action name: surrounding whitespace
// and one pair of single or double quotes are removed.
func BlockName(raw string) string {
	name := strings.TrimSpace(raw)
	if len(name) >= 2 && name[0] == name[len(name)-1] && (name[0] == '"' || name[0] == '\'') {
		name = strings.TrimSpace(name[1 : len(name)-1])
	}
	return name
}

// Segment scans lines once and groups them into blocks. Lines before the
// first block form the preamble, free lines between blocks are appended to
// it, and free lines after the last block form the epilogue.
func Segment(lines []string) (*behavetypes.Script, error) {
	s := &segmenter{
		log:    logger.NewStyledLogger("Segmenter"),
		script: behavetypes.NewScript(),
	}
	s.script.Lines = append([]string(nil), lines...)

	for i, line := range lines {
		if kind, name, ok := IsOpener(line); ok {
			if !kind.IsHook() && name == "" {
				return nil, fmt.Errorf("line %d: %s block without a name: %w", i+1, strings.ToLower(kind.String()), behavetypes.ErrConfiguration)
			}
			s.open(kind, name, line)
			continue
		}

		if s.state == stateCollecting {
			s.current.Lines = append(s.current.Lines, line)
			if IsCloser(line) {
				if want := canonicalClosers[s.current.Kind]; line != want {
					s.log.Debug("Mismatched block closer", "line", line, "expected", want)
				}
				s.finish()
			}
			continue
		}

		if IsCloser(line) {
			s.log.Debug("Closer outside of a block", "line", line)
		}
		s.free(line)
	}

	if s.state == stateCollecting {
		s.log.Warn("Unterminated block at end of script", "kind", s.current.Kind, "name", s.current.Name)
		s.finish()
	}
	if len(s.pending) > 0 {
		s.script.Epilogue = s.pending
	}
	return s.script, nil
}

func (s *segmenter) open(kind behavetypes.BlockKind, name, line string) {
	if s.state == stateCollecting {
		s.log.Debug("Block opened before previous block closed", "previous", s.current.Name, "line", line)
		s.finish()
	}
	if len(s.pending) > 0 {
		s.script.Preamble = append(s.script.Preamble, s.pending...)
		s.pending = nil
	}
	s.seen = true
	s.state = stateCollecting
	s.current = &behavetypes.Block{Kind: kind, Name: name, Lines: []string{line}}
}

func (s *segmenter) free(line string) {
	if !s.seen {
		s.script.Preamble = append(s.script.Preamble, line)
		return
	}
	s.pending = append(s.pending, line)
}

func (s *segmenter) finish() {
	b := s.current
	s.current = nil
	s.state = stateNone

	switch b.Kind {
	case behavetypes.BlockTest:
		for i, existing := range s.script.Tests {
			if existing.Name == b.Name {
				s.log.Debug("Test redefined", "test", b.Name)
				s.script.Tests[i] = b
				return
			}
		}
		s.script.Tests = append(s.script.Tests, b)
	case behavetypes.BlockAction:
		if _, exists := s.script.Actions[b.Name]; exists {
			s.log.Debug("Action redefined", "action", b.Name)
		}
		s.script.Actions[b.Name] = b
	case behavetypes.BlockBeforeAll:
		s.script.BeforeAll = append(s.script.BeforeAll, b)
	case behavetypes.BlockBeforeEach:
		s.script.BeforeEach = append(s.script.BeforeEach, b)
	case behavetypes.BlockAfterAll:
		s.script.AfterAll = append(s.script.AfterAll, b)
	case behavetypes.BlockAfterEach:
		s.script.AfterEach = append(s.script.AfterEach, b)
	}
}
