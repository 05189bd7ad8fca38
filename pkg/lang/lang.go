// Package lang implements the textual scene description language for
// ocmesh. Scene files are s-expressions evaluated in a sandboxed
// zygomys environment; the CSG builtins populate a csg.Scene as a
// side effect of evaluation, so the full Lisp (definitions,
// arithmetic, loops) is available around the geometry forms.
package lang

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/yiyijiang/ocmesh/pkg/csg"
)

// ParseError is a recoverable failure in a scene description: a
// syntax error or an invalid geometry form. It points at the input,
// not at the calling program.
type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Result is the outcome of parsing a scene description.
//
// On success the Scene holds every toplevel declared in the input, in
// declaration order. On failure Errors is non-empty and the Scene is
// in an unspecified but valid state: safe to discard or to overwrite
// by re-parsing into a fresh scene.
type Result struct {
	Scene  *csg.Scene
	Errors []ParseError
}

// Ok reports whether parsing succeeded.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

// Error returns the first error message, or "" on success.
func (r *Result) Error() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Error()
}

// Parser evaluates scene descriptions. It is safe for concurrent use;
// each Parse call runs in a fresh sandboxed environment for
// deterministic results.
type Parser struct {
	mu         sync.Mutex
	generation uint64
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a scene description from r and evaluates it into a new
// scene. The returned error covers fatal conditions only (I/O
// failure, timeout, panic); malformed input is reported through the
// Result.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lang: reading input: %w", err)
	}
	return p.ParseString(string(src))
}

// ParseString evaluates a scene description held in a string. See
// Parse for the error contract.
func (p *Parser) ParseString(source string) (*Result, error) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	ch := make(chan parseOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- parseOutcome{err: fmt.Errorf("panic during parse: %v", r)}
			}
		}()
		ch <- parseOutcome{result: p.eval(source)}
	}()

	return waitWithTimeout(ch, gen, &p.mu, &p.generation)
}

// eval runs the actual evaluation in a fresh sandbox. The scene is
// populated incrementally, so on failure it may hold a prefix of the
// input's shapes; the Result contract permits that.
func (p *Parser) eval(source string) *Result {
	scene := csg.NewScene()
	res := &Result{Scene: scene}

	// Empty input is a valid description of an empty scene.
	if strings.TrimSpace(source) == "" {
		return res
	}

	// Sandbox mode keeps user code away from the filesystem and
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, scene)

	if err := env.LoadString(preprocess(source)); err != nil {
		res.Errors = zygoErrors(err)
		return res
	}
	if _, err := env.Run(); err != nil {
		res.Errors = zygoErrors(err)
		return res
	}
	return res
}

// linePattern matches zygomys messages of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches the simpler "line N: ..." form.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// zygoErrors converts a zygomys error into ParseError values,
// extracting line information from the message where possible.
func zygoErrors(err error) []ParseError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []ParseError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []ParseError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []ParseError{{Message: strings.TrimSpace(msg)}}
}

// preprocess converts classic Lisp ; line comments into the // form
// zygomys expects, leaving string literals untouched.
func preprocess(source string) string {
	result := make([]byte, 0, len(source))
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}
