package classify

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrNoMatch is returned when a file name does not match the classification
// pattern. Callers treat it as a per-file failure, never a fatal one.
var ErrNoMatch = errors.New("file name does not match classification pattern")

// defaultExpr matches names of the form <service>_<YYYY-MM-DD>.log.
// The service group is greedy: a name containing several date-like substrings
// binds the service to everything before the last date anchor.
const defaultExpr = `^(.*)_([0-9]{4}-[0-9]{2}-[0-9]{2})\.log$`

// Pattern extracts a service name from a log file name. The expression and
// capture-group index are injectable so alternate naming schemes can be
// supported without touching routing logic.
type Pattern struct {
	re    *regexp.Regexp
	group int
}

// Default returns the standard <service>_<date>.log pattern with the service
// in capture group 1.
func Default() *Pattern {
	p, _ := New(defaultExpr, 1)
	return p
}

// New compiles a classification pattern. group selects which capture group
// holds the service name.
func New(expr string, group int) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid classification pattern: %w", err)
	}
	if group < 1 || group > re.NumSubexp() {
		return nil, fmt.Errorf("capture group %d out of range for pattern %q", group, expr)
	}
	return &Pattern{re: re, group: group}, nil
}

// Service extracts the service name from a base file name. Pure function, no
// I/O. Returns ErrNoMatch when the whole pattern does not match or the
// capture is empty.
func (p *Pattern) Service(name string) (string, error) {
	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return "", fmt.Errorf("%q: %w", name, ErrNoMatch)
	}
	svc := m[p.group]
	if svc == "" {
		return "", fmt.Errorf("%q: %w", name, ErrNoMatch)
	}
	return svc, nil
}
