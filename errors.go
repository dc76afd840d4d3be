package mapkit

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when a lookup or removal names a key the
	// container does not hold.
	ErrNotFound = errors.New("mapkit: key not found")

	// ErrInvalidPosition is returned when an iterator is dereferenced or
	// advanced at the end sentinel, moved back from the first entry, or used
	// after the entry it pointed at was removed.
	ErrInvalidPosition = errors.New("mapkit: invalid iterator position")

	// ErrReadOnlyIterator is returned by ValuePtr on an iterator that was
	// narrowed with ReadOnly.
	ErrReadOnlyIterator = errors.New("mapkit: iterator is read-only")
)

func notFound(op string, key any) error {
	return errors.Wrapf(ErrNotFound, "%s %v", op, key)
}

func invalidPosition(op string) error {
	return errors.Wrap(ErrInvalidPosition, op)
}
