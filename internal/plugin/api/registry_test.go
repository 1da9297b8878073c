package api

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

// mockModule is a simple test module.
type mockModule struct {
	name       string
	capability Capability
	registered bool
}

func (m *mockModule) Name() string                   { return m.name }
func (m *mockModule) RequiredCapability() Capability { return m.capability }
func (m *mockModule) Register(L *lua.LState) error {
	m.registered = true
	mod := L.NewTable()
	L.SetField(mod, "test", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString("mock"))
		return 1
	}))
	L.SetGlobal("_ds_"+m.name, mod)
	return nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if r.modules == nil {
		t.Error("modules map is nil")
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	mod := &mockModule{name: "test"}
	if err := r.Register(mod); err != nil {
		t.Errorf("Register error = %v", err)
	}

	// Duplicate registration should fail
	if err := r.Register(mod); err == nil {
		t.Error("duplicate Register should return error")
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	mod := &mockModule{name: "test"}
	_ = r.Register(mod)

	got, ok := r.Get("test")
	if !ok || got != mod {
		t.Errorf("Get = %v, %v", got, ok)
	}
	if _, ok := r.Get("nonexistent"); ok {
		t.Error("Get for nonexistent should return ok = false")
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockModule{name: "mod2"})
	_ = r.Register(&mockModule{name: "mod1"})

	names := r.List()
	if len(names) != 2 || names[0] != "mod1" || names[1] != "mod2" {
		t.Errorf("List = %v, want [mod1 mod2]", names)
	}
}

func TestRegistryInjectAll(t *testing.T) {
	r := NewRegistry()
	open := &mockModule{name: "open"}
	guarded := &mockModule{name: "guarded", capability: CapabilityScene}
	_ = r.Register(open)
	_ = r.Register(guarded)

	L := NewState()
	defer L.Close()

	if err := r.InjectAll(L); err != nil {
		t.Fatalf("InjectAll error = %v", err)
	}
	if !open.registered {
		t.Error("module without capability should be registered")
	}
	if guarded.registered {
		t.Error("module with ungranted capability should be skipped")
	}

	err := L.DoString(`
		local ds = require("ds")
		result = ds.open.test()
		missing = ds.guarded == nil
		version = ds.api_version
	`)
	if err != nil {
		t.Fatalf("DoString error = %v", err)
	}
	if got := L.GetGlobal("result"); got.String() != "mock" {
		t.Errorf("result = %v, want mock", got)
	}
	if L.GetGlobal("missing") != lua.LTrue {
		t.Error("ds.guarded should be nil")
	}
	if L.GetGlobal("version") != lua.LNumber(1) {
		t.Errorf("api_version = %v", L.GetGlobal("version"))
	}
	if L.GetGlobal("_ds_open") != lua.LNil {
		t.Error("_ds_open global should be removed")
	}
}

func TestRegistryInjectAllGranted(t *testing.T) {
	r := NewRegistry()
	guarded := &mockModule{name: "guarded", capability: CapabilityScene}
	_ = r.Register(guarded)

	L := NewState()
	defer L.Close()

	if err := r.InjectAll(L, CapabilityScene); err != nil {
		t.Fatalf("InjectAll error = %v", err)
	}
	if !guarded.registered {
		t.Error("granted module should be registered")
	}
}

func TestRegistryInject(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockModule{name: "open"})
	_ = r.Register(&mockModule{name: "guarded", capability: CapabilityHistory})

	tests := []struct {
		name    string
		granted []Capability
		modules []string
		wantErr bool
	}{
		{"open module", nil, []string{"open"}, false},
		{"unknown module", nil, []string{"nope"}, true},
		{"denied", nil, []string{"guarded"}, true},
		{"granted", []Capability{CapabilityHistory}, []string{"guarded"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := NewState()
			defer L.Close()

			err := r.Inject(L, tt.granted, tt.modules...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Inject error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	r, err := DefaultRegistry(&Context{})
	if err != nil {
		t.Fatalf("DefaultRegistry error = %v", err)
	}
	names := r.List()
	if len(names) != 2 || names[0] != "history" || names[1] != "scene" {
		t.Errorf("List = %v, want [history scene]", names)
	}
}

func TestNewStateRemovesLoaders(t *testing.T) {
	L := NewState()
	defer L.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io", "os"} {
		if L.GetGlobal(name) != lua.LNil {
			t.Errorf("%s should not be available", name)
		}
	}
	if err := L.DoString(`x = string.upper("a") .. table.concat({"b"}) .. math.floor(1.5)`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}
	if got := L.GetGlobal("x").String(); got != "Ab1" {
		t.Errorf("x = %q, want Ab1", got)
	}
}
