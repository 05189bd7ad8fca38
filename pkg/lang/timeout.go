package lang

import (
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the hard limit for a single parse. Scene files are
// full Lisp programs, so a runaway loop in one must not hang the
// host.
const EvalTimeout = 5 * time.Second

// parseOutcome carries an evaluation result through the channel.
type parseOutcome struct {
	result *Result
	err    error
}

// waitWithTimeout waits for a result from ch, failing if the
// evaluation exceeds EvalTimeout. A generation counter discards
// stale results: on timeout the goroutine may still be running, and
// whatever it eventually produces must not be mistaken for the
// answer to a newer request.
func waitWithTimeout(
	ch <-chan parseOutcome,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (*Result, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, fmt.Errorf("parse superseded by newer request")
		}
		return out.result, out.err

	case <-timer.C:
		return nil, fmt.Errorf("parse timed out after %s", EvalTimeout)
	}
}
