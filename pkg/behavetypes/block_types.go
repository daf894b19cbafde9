package behavetypes

import (
	"maps"
	"regexp"
	"slices"
)

// BlockKind identifies the semantic role of a group of script lines.
type BlockKind int

const (
	// BlockPreamble holds lines preceding the first block.
	BlockPreamble BlockKind = iota
	// BlockEpilogue holds lines following the last block.
	BlockEpilogue
	// BlockTest is a named test.
	BlockTest
	// BlockAction is a named reusable action.
	BlockAction
	// BlockBeforeAll runs once before all tests.
	BlockBeforeAll
	// BlockBeforeEach runs before every test.
	BlockBeforeEach
	// BlockAfterAll runs once after all tests.
	BlockAfterAll
	// BlockAfterEach runs after every test.
	BlockAfterEach
)

// String returns a human-readable representation of the block kind.
func (k BlockKind) String() string {
	switch k {
	case BlockPreamble:
		return "Preamble"
	case BlockEpilogue:
		return "Epilogue"
	case BlockTest:
		return "Test"
	case BlockAction:
		return "Action"
	case BlockBeforeAll:
		return "BeforeAll"
	case BlockBeforeEach:
		return "BeforeEach"
	case BlockAfterAll:
		return "AfterAll"
	case BlockAfterEach:
		return "AfterEach"
	default:
		return "Unknown"
	}
}

// IsHook reports whether the kind is one of the four hook kinds.
func (k BlockKind) IsHook() bool {
	return k >= BlockBeforeAll && k <= BlockAfterEach
}

// Block is a contiguous group of script lines with one role. Named blocks
// include their opening and closing marker lines.
type Block struct {
	Kind  BlockKind
	Name  string
	Lines []string
}

// Script is a segmented script ready for execution.
type Script struct {
	// Lines are the filtered source lines the script was segmented from.
	Lines    []string
	Preamble []string
	Epilogue []string

	// Tests are in declaration order.
	Tests   []*Block
	Actions map[string]*Block

	BeforeAll  []*Block
	BeforeEach []*Block
	AfterAll   []*Block
	AfterEach  []*Block
}

// NewScript returns an empty script.
func NewScript() *Script {
	return &Script{Actions: make(map[string]*Block)}
}

// Test looks up a test block by name.
func (s *Script) Test(name string) (*Block, bool) {
	for _, t := range s.Tests {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TestNames returns the declared test names in declaration order.
func (s *Script) TestNames() []string {
	names := make([]string, 0, len(s.Tests))
	for _, t := range s.Tests {
		names = append(names, t.Name)
	}
	return names
}

// ActionNames returns the declared action names sorted alphabetically.
func (s *Script) ActionNames() []string {
	return slices.Sorted(maps.Keys(s.Actions))
}

// ResolvedValue is the result of resolving a text token. Exactly one of
// Regex or Text is meaningful: Regex is non-nil only for /.../ tokens
// resolved with regex support enabled.
type ResolvedValue struct {
	Text  string
	Regex *regexp.Regexp
}

// IsRegex reports whether the token resolved to a regular expression.
func (v ResolvedValue) IsRegex() bool {
	return v.Regex != nil
}

// Matches compares s against the resolved value by regex or equality.
func (v ResolvedValue) Matches(s string) bool {
	if v.Regex != nil {
		return v.Regex.MatchString(s)
	}
	return v.Text == s
}

func (v ResolvedValue) String() string {
	if v.Regex != nil {
		return "/" + v.Regex.String() + "/"
	}
	return v.Text
}
