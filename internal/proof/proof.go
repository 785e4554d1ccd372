// Package proof implements the optional append-only proof log: one
// learned linear inequality per line, written as each is produced by a
// conflict resolver (§6).
package proof

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rhartert/yalis/internal/domain"
)

// Log writes learned inequalities to an underlying writer, one per line.
// A Log with a nil writer is a no-op, so callers can leave proof logging
// disabled without special-casing every call site.
type Log struct {
	w *bufio.Writer
}

// New returns a Log that appends to w. Passing a nil w yields a no-op log.
func New(w io.Writer) *Log {
	if w == nil {
		return &Log{}
	}
	return &Log{w: bufio.NewWriter(w)}
}

// LogConstraint appends a learned inequality to the log.
func (l *Log) LogConstraint(c domain.LinearInequality) error {
	if l.w == nil {
		return nil
	}
	if _, err := fmt.Fprintln(l.w, c.String()); err != nil {
		return err
	}
	return l.w.Flush()
}

// LogNogood appends a learned nogood, rendered as the disjunction of its
// negated predicates.
func (l *Log) LogNogood(preds []domain.Predicate) error {
	if l.w == nil {
		return nil
	}
	if len(preds) == 0 {
		_, err := fmt.Fprintln(l.w, "false")
		if err != nil {
			return err
		}
		return l.w.Flush()
	}
	if _, err := fmt.Fprint(l.w, preds[0]); err != nil {
		return err
	}
	for _, p := range preds[1:] {
		if _, err := fmt.Fprintf(l.w, " \\/ %s", p); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(l.w); err != nil {
		return err
	}
	return l.w.Flush()
}
