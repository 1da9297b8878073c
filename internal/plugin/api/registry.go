package api

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Capability is a permission a script needs to load a module.
type Capability string

// Capabilities understood by the standard modules.
const (
	CapabilityHistory Capability = "history"
	CapabilityScene   Capability = "scene"
)

// Module is a Lua API module.
type Module interface {
	// Name returns the module name (e.g. "history").
	Name() string

	// RequiredCapability returns the capability needed to use the module,
	// or "" if none is needed.
	RequiredCapability() Capability

	// Register installs the module table as the _ds_<name> global.
	Register(L *lua.LState) error
}

// Registry manages API modules and their injection into Lua states.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}
	r.modules[mod.Name()] = mod
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns the registered module names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InjectAll registers every module whose capability is granted and installs
// the "ds" aggregate module. Modules without a granted capability are
// silently skipped.
func (r *Registry) InjectAll(L *lua.LState, granted ...Capability) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, mod := range r.modules {
		if c := mod.RequiredCapability(); c != "" && !slices.Contains(granted, c) {
			continue
		}
		if err := mod.Register(L); err != nil {
			return fmt.Errorf("failed to register module %q: %w", name, err)
		}
		names = append(names, name)
	}
	installDSLoader(L, names)
	return nil
}

// Inject registers the named modules. Unlike InjectAll it fails when a
// module is unknown or its capability was not granted.
func (r *Registry) Inject(L *lua.LState, granted []Capability, names ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range names {
		mod, ok := r.modules[name]
		if !ok {
			return fmt.Errorf("module %q not found", name)
		}
		if c := mod.RequiredCapability(); c != "" && !slices.Contains(granted, c) {
			return fmt.Errorf("script lacks capability %q for module %q", c, name)
		}
		if err := mod.Register(L); err != nil {
			return fmt.Errorf("failed to register module %q: %w", name, err)
		}
	}
	installDSLoader(L, names)
	return nil
}

// installDSLoader moves the _ds_* globals into a table returned by
// require("ds").
func installDSLoader(L *lua.LState, names []string) {
	ds := L.NewTable()
	for _, name := range names {
		global := "_ds_" + name
		if val := L.GetGlobal(global); val != lua.LNil {
			L.SetField(ds, name, val)
			L.SetGlobal(global, lua.LNil)
		}
	}
	L.SetField(ds, "api_version", lua.LNumber(1))

	L.PreloadModule("ds", func(L *lua.LState) int {
		L.Push(ds)
		return 1
	})
}

// DefaultRegistry creates a registry holding the history and scene modules.
func DefaultRegistry(ctx *Context) (*Registry, error) {
	r := NewRegistry()
	modules := []Module{
		NewHistoryModule(ctx),
		NewSceneModule(ctx),
	}
	for _, mod := range modules {
		if err := r.Register(mod); err != nil {
			return nil, fmt.Errorf("failed to register module %q: %w", mod.Name(), err)
		}
	}
	return r, nil
}

// Context gives modules access to the document being edited.
type Context struct {
	// Ctx bounds blocking calls such as page activation during undo.
	Ctx context.Context

	History HistoryProvider
	Scene   SceneProvider
}

func (c *Context) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
