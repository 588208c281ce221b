package core

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/lumipallolabs/dirwatch/internal/logging"
)

// matchTimeout bounds a single pattern evaluation
const matchTimeout = 100 * time.Millisecond

// Filter decides which paths are reported. Patterns are searched for anywhere
// in the path, not matched against the whole of it.
type Filter struct {
	match   *regexp2.Regexp
	exclude *regexp2.Regexp
}

// NewFilter compiles the include and exclude patterns. Empty patterns are
// not applied.
func NewFilter(match, exclude string) (Filter, error) {
	var f Filter
	var err error
	if f.match, err = compilePattern(match); err != nil {
		return Filter{}, fmt.Errorf("match pattern: %w", err)
	}
	if f.exclude, err = compilePattern(exclude); err != nil {
		return Filter{}, fmt.Errorf("exclude pattern: %w", err)
	}
	return f, nil
}

func compilePattern(pattern string) (*regexp2.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = matchTimeout
	return re, nil
}

// Accept reports whether path passes both patterns. The exclude pattern wins
// over the include pattern.
func (f Filter) Accept(path string) bool {
	if f.match != nil && !search(f.match, path) {
		return false
	}
	if f.exclude != nil && search(f.exclude, path) {
		return false
	}
	return true
}

// search reports whether re matches somewhere in s. A pattern that times out
// counts as not matching.
func search(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	if err != nil {
		logging.Debug.Printf("pattern %q on %q: %v", re.String(), s, err)
		return false
	}
	return ok
}
