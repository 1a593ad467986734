package nixconfig

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRead indicates a config file or a mandatory include could not be read.
	ErrRead = errors.New("failed to read config")
	// ErrCyclicInclude indicates an include chain that revisits a file.
	ErrCyclicInclude = errors.New("cyclic include")
	// ErrIncludeDepth indicates includes nested deeper than the reader allows.
	ErrIncludeDepth = errors.New("include depth exceeded")
	// ErrMalformedLine indicates a line that is neither a directive nor an assignment.
	ErrMalformedLine = errors.New("malformed line")
)

// ReadError is returned when a config file can not be read. It wraps both
// ErrRead and the underlying I/O error, so errors.Is(err, fs.ErrNotExist)
// works as expected.
type ReadError struct {
	// Path is the resolved path that failed.
	Path string
	// IncludedFrom is the file containing the include directive, if any.
	// It is empty for the top-level file and for includes from string input.
	IncludedFrom string
	Err          error
}

func (e *ReadError) Error() string {
	if e.IncludedFrom != "" {
		return fmt.Sprintf("%s: %q included from %q: %s", ErrRead, e.Path, e.IncludedFrom, e.Err)
	}

	return fmt.Sprintf("%s: %q: %s", ErrRead, e.Path, e.Err)
}

func (e *ReadError) Unwrap() []error {
	return []error{ErrRead, e.Err}
}

// CycleError is returned when an include directive points to a file that is
// already being parsed further up the include chain.
type CycleError struct {
	// Chain lists the files from the outermost one to the repeated one.
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCyclicInclude, strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCyclicInclude
}
