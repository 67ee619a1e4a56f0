package resolve

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ErrLuaClosed is returned when a closed Lua resolver is used.
var ErrLuaClosed = errors.New("lua resolver is closed")

// Lua resolves variables through a user-supplied Lua script. The
// script must return a function taking a variable name and returning
// a string, or nil to leave the name unresolved:
//
//	return function(name)
//	  if name == "AUTHOR" then return "gopher" end
//	end
//
// Only the base, string, table and math libraries are opened; there is
// no io, os or package access. The LState is not goroutine-safe, so
// all calls are serialized through a mutex.
type Lua struct {
	mu     sync.Mutex
	state  *lua.LState
	fn     *lua.LFunction
	closed bool
}

// NewLua compiles script and captures its returned lookup function.
func NewLua(script string) (*Lua, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading lua resolver: %w", err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	fn, ok := ret.(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("lua resolver script must return a function, got %s", ret.Type())
	}
	return &Lua{state: L, fn: fn}, nil
}

// Resolve implements snippet.Resolver. A Lua runtime error or a
// non-string return leaves the name unresolved.
func (l *Lua) Resolve(name string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return "", false
	}

	err := l.state.CallByParam(lua.P{Fn: l.fn, NRet: 1, Protect: true}, lua.LString(name))
	if err != nil {
		return "", false
	}
	ret := l.state.Get(-1)
	l.state.Pop(1)
	if s, ok := ret.(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

// Close releases the Lua state. Resolve on a closed resolver reports
// every name unresolved.
func (l *Lua) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLuaClosed
	}
	l.closed = true
	l.state.Close()
	return nil
}
