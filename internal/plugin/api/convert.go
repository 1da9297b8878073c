package api

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// toGo converts a Lua value into the JSON-compatible Go value it denotes.
// Tables with only consecutive integer keys from 1 become slices; any other
// table becomes a map keyed by the string form of its keys.
func toGo(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if n := v.MaxN(); n > 0 && n == tableLen(v) {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, toGo(v.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		v.ForEach(func(k, val lua.LValue) {
			out[k.String()] = toGo(val)
		})
		return out
	default:
		return nil
	}
}

func tableLen(t *lua.LTable) int {
	n := 0
	t.ForEach(func(lua.LValue, lua.LValue) { n++ })
	return n
}

// toLua converts a decoded JSON value into a Lua value.
func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []any:
		tbl := L.NewTable()
		for i, item := range x {
			tbl.RawSetInt(i+1, toLua(L, item))
		}
		return tbl
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tbl := L.NewTable()
		for _, k := range keys {
			tbl.RawSetString(k, toLua(L, x[k]))
		}
		return tbl
	default:
		return lua.LNil
	}
}

// stringList converts a Lua array of strings.
func stringList(L *lua.LState, tbl *lua.LTable) []string {
	out := make([]string, 0, tbl.MaxN())
	for i := 1; i <= tbl.MaxN(); i++ {
		s, ok := tbl.RawGetInt(i).(lua.LString)
		if !ok {
			L.RaiseError("element %d: expected string, got %s", i, tbl.RawGetInt(i).Type())
		}
		out = append(out, string(s))
	}
	return out
}

// numberList converts a Lua array of numbers.
func numberList(L *lua.LState, tbl *lua.LTable) []float64 {
	out := make([]float64, 0, tbl.MaxN())
	for i := 1; i <= tbl.MaxN(); i++ {
		n, ok := tbl.RawGetInt(i).(lua.LNumber)
		if !ok {
			L.RaiseError("element %d: expected number, got %s", i, tbl.RawGetInt(i).Type())
		}
		out = append(out, float64(n))
	}
	return out
}
