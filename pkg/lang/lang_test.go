package lang

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseEmptyString(t *testing.T) {
	p := NewParser()

	res, err := p.ParseString("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !res.Ok() {
		t.Fatalf("unexpected parse errors: %v", res.Errors)
	}
	if res.Scene == nil {
		t.Fatal("expected non-nil scene")
	}
	if res.Scene.Size() != 0 {
		t.Errorf("expected empty scene, got %d toplevels", res.Scene.Size())
	}
}

func TestParseWhitespaceOnly(t *testing.T) {
	p := NewParser()

	res, err := p.ParseString("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !res.Ok() || res.Scene.Size() != 0 {
		t.Errorf("expected empty ok scene, got ok=%v size=%d", res.Ok(), res.Scene.Size())
	}
}

func TestParseFromReader(t *testing.T) {
	p := NewParser()

	res, err := p.Parse(strings.NewReader(`(toplevel (sphere 1) "steel")`))
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !res.Ok() {
		t.Fatalf("unexpected parse errors: %v", res.Errors)
	}
	if res.Scene.Size() != 1 {
		t.Fatalf("expected 1 toplevel, got %d", res.Scene.Size())
	}
}

func TestParseSyntaxError(t *testing.T) {
	p := NewParser()

	res, err := p.ParseString(`(toplevel (sphere 1) "steel"`)
	if err != nil {
		t.Fatalf("expected recoverable error, got fatal: %v", err)
	}
	if res.Ok() {
		t.Fatal("expected parse errors for unclosed form")
	}
	if res.Error() == "" {
		t.Error("error message should not be empty")
	}
}

func TestParseUndefinedSymbol(t *testing.T) {
	p := NewParser()

	res, err := p.ParseString(`(toplevel (sphere missing) "steel")`)
	if err != nil {
		t.Fatalf("expected recoverable error, got fatal: %v", err)
	}
	if res.Ok() {
		t.Fatal("expected parse errors for undefined symbol")
	}
}

func TestParserReusableAfterError(t *testing.T) {
	// A failed parse must leave the parser usable; each call gets a
	// fresh scene and sandbox.
	p := NewParser()

	bad, err := p.ParseString("(unite (sphere 1")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if bad.Ok() {
		t.Fatal("expected errors from malformed input")
	}

	good, err := p.ParseString(`(toplevel (cube 2) "wood")`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !good.Ok() {
		t.Fatalf("unexpected parse errors: %v", good.Errors)
	}
	if good.Scene.Size() != 1 {
		t.Errorf("expected 1 toplevel, got %d", good.Scene.Size())
	}
}

func TestParseErrorFormatting(t *testing.T) {
	e := ParseError{Line: 5, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") || !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() = %q, want line info and message", s)
	}

	e2 := ParseError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() without line info should omit 'line', got %q", e2.Error())
	}
}

func TestZygoErrors(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"line format lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"no line info", "some generic error", 0, "some generic error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := zygoErrors(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestPreprocessComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"line comment", "(sphere 1) ; note", "(sphere 1) // note"},
		{"double semicolon", ";; heading\n(cube 2)", "// heading\n(cube 2)"},
		{"semicolon in string", `(toplevel (cube 2) "a;b")`, `(toplevel (cube 2) "a;b")`},
		{"untouched", "(unite (sphere 1) (cube 2))", "(unite (sphere 1) (cube 2))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocess(tt.in); got != tt.want {
				t.Errorf("preprocess(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWaitWithTimeout(t *testing.T) {
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan parseOutcome) // never sends

	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, resultErr = waitWithTimeout(ch, 1, &mu, &gen)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", resultErr)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for parse timeout")
	}
}

func TestStaleGenerationDiscarded(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // current generation is 2

	ch := make(chan parseOutcome, 1)
	ch <- parseOutcome{}

	// A result from generation 1 is stale and must be rejected.
	_, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
