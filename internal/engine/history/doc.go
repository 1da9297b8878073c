// Package history provides undo/redo for a multi-page diagram document.
//
// The history system records committed edits as Commands and replays them
// against live hosts, always resolving targets by id. Key concepts:
//
// # Commands
//
// A Command is a tagged union: its Kind selects the payload. Built-in kinds:
//   - Position, Resize, Data, Layout: field-level deltas of objects
//   - Add, Delete: object subtrees, stacking order and line bindings
//   - Index: stacking order of a single object
//   - FreelineAdd, FreelineUpdate, FreelineErase: stroke segments
//   - PageAdd, PageRemove, PageIndex: pages of a document
//   - Transaction: ordered children with a strict or relaxed undo order
//   - Editor: one step of an external rich-text editor's own undo stack
//
// Commands are created after the live edit already happened:
//
//	snap := history.Capture(history.PositionPaths, shape)
//	// ... drag the shape ...
//	cmd := history.NewPositionCommand(page, snap, shape)
//	page.History().AddCommand(page, cmd)
//
// # Histories
//
// DocumentHistory keeps one timeline per document and activates the owning
// page before replaying an entry recorded on another page. PageHistory keeps
// one timeline per page. Both truncate the redo future on append.
//
// # Gestures
//
// Commands added between BeginGesture and EndGesture share a batch token and
// undo as one step:
//
//	defer history.GestureScopeOf(h).End()
//	// ... several commands ...
//
// # Errors
//
// Undo returns the first replay error and leaves the failing entry at the
// cursor. Redo logs failures and advances past the whole batch.
package history
