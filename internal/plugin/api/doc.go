// Package api provides the Lua modules exposed to drawstorm edit scripts.
//
// Scripts reach the editing model through the "ds" namespace:
//
//   - ds.history: undo, redo, availability queries and gesture grouping
//   - ds.scene: pages and shape edits, each recorded in the history
//
// Each module implements Module and declares the Capability it needs. A
// Registry injects only the modules whose capability was granted:
//
//	L := api.NewState()
//	defer L.Close()
//	r, _ := api.DefaultRegistry(&api.Context{History: doc, Scene: doc})
//	_ = r.InjectAll(L, api.CapabilityHistory, api.CapabilityScene)
//	_ = L.DoString(script)
//
// From Lua:
//
//	local ds = require("ds")
//	local id = ds.scene.add(nil, {kind = "rect", props = {x = 0, y = 0}})
//	ds.scene.move(nil, 10, 0, id)
//	ds.history.undo()
package api
