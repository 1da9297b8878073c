// Package scene is the in-memory diagram model that history commands replay
// against.
//
// A Document holds ordered Pages; a Page holds Shapes arranged in a tree of
// groups. Shape properties are a JSON document addressed by dotted paths.
// Lines store their bindings in their own properties ("start.target",
// "end.connector") and follow bound shapes on Refresh.
//
// The edit methods on Document (AddShape, Move, SetData, DeleteShapes,
// Draw, CreatePage, ...) perform the live change and then record the
// matching history command, each as its own gesture unless the caller has
// opened an enclosing one with BeginGesture.
package scene
