// Package event provides the synchronous event bus that connects documents,
// their histories and the application.
//
// Events are typed (Event[T]) and published on hierarchical topics:
//
//	history.changed   - undo/redo availability of a history changed
//	page.changed      - a document started switching its active page
//	page.activated    - the new active page is live
//	document.opened   - a document was opened
//	document.closed   - a document was closed
//
// Subscriptions accept wildcard patterns ("page.*", "**") and run in
// priority order on the publishing goroutine.
package event
