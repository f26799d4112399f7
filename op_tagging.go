package iofio

import (
	"errors"
	"fmt"
)

// OpMetaError exposes correlation metadata for an error that propagated
// from one op's future into a downstream op's future: a downstream op that
// rethrows its precondition's failure still lets a caller find out which op
// originally failed.
type OpMetaError interface {
	error
	Unwrap() error
	OriginOpID() OpID
	OriginVerb() Verb
}

type opTaggedError struct {
	err  error
	id   OpID
	verb Verb
}

// taggedWithOp wraps err with the id/verb of the op whose future held it,
// unless err is already tagged (propagation through several hops keeps the
// original origin, not the most recent rethrow site).
func taggedWithOp(err error, id OpID, verb Verb) error {
	if err == nil {
		return nil
	}
	var existing OpMetaError
	if errors.As(err, &existing) {
		return err
	}
	return &opTaggedError{err: err, id: id, verb: verb}
}

func (e *opTaggedError) Error() string { return e.err.Error() }
func (e *opTaggedError) Unwrap() error { return e.err }

func (e *opTaggedError) OriginOpID() OpID  { return e.id }
func (e *opTaggedError) OriginVerb() Verb  { return e.verb }

func (e *opTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "op(id=%d,verb=%s): %+v", e.id, e.verb, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractOriginOp returns the op id and verb that originally produced err,
// if it was tagged by the completion engine.
func ExtractOriginOp(err error) (OpID, Verb, bool) {
	var tme OpMetaError
	if errors.As(err, &tme) {
		return tme.OriginOpID(), tme.OriginVerb(), true
	}
	return 0, "", false
}
