package scene

import "errors"

// Errors returned by scene operations.
var (
	// ErrShapeNotFound indicates a shape id that does not exist on the page.
	ErrShapeNotFound = errors.New("shape not found")

	// ErrPageNotFound indicates a page id that does not exist in the document.
	ErrPageNotFound = errors.New("page not found")

	// ErrDuplicateID indicates an id that is already in use.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidContainer indicates a container that does not exist or would
	// create a cycle.
	ErrInvalidContainer = errors.New("invalid container")

	// ErrNotALine indicates a binding operation on a shape that is not a line.
	ErrNotALine = errors.New("shape is not a line")

	// ErrNotAStroke indicates a freeline operation on a shape that is not a stroke.
	ErrNotAStroke = errors.New("shape is not a freeline stroke")

	// ErrLastPage indicates an attempt to delete the only page.
	ErrLastPage = errors.New("cannot delete the last page")

	// ErrInvalidEnd indicates a line end other than "start" or "end".
	ErrInvalidEnd = errors.New("invalid line end")

	// ErrInvalidKind indicates an unknown shape kind.
	ErrInvalidKind = errors.New("invalid shape kind")

	// ErrSegmentNotFound indicates a stroke segment id that does not exist.
	ErrSegmentNotFound = errors.New("segment not found")

	// ErrNothingToDelete indicates a delete where every shape refused deletion.
	ErrNothingToDelete = errors.New("nothing to delete")

	// ErrClosed indicates an operation on a closed document.
	ErrClosed = errors.New("document closed")
)
