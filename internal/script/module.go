package script

import (
	"context"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

// moduleLoader exposes the eyeguard module to Lua scripts.
func (r *Runtime) moduleLoader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "on", L.NewFunction(r.luaOn))
	L.SetField(mod, "action", L.NewFunction(r.luaAction))
	L.SetField(mod, "apply_profile", L.NewFunction(r.luaApplyProfile))
	L.SetField(mod, "actions", L.NewFunction(r.luaActions))

	L.Push(mod)
	return 1
}

// eyeguard.on(event, fn) registers a hook for a daemon event.
func (r *Runtime) luaOn(L *lua.LState) int {
	event := L.CheckString(1)
	fn := L.CheckFunction(2)

	r.handlers[event] = append(r.handlers[event], fn)
	log.Debug().Str("event", event).Msg("Script hook registered")
	return 0
}

// eyeguard.action(name, args?) invokes a registered action.
// Returns true on success, or false plus an error message.
func (r *Runtime) luaAction(L *lua.LState) int {
	name := L.CheckString(1)

	args := map[string]any{}
	if tbl, ok := L.Get(2).(*lua.LTable); ok {
		args = luaTableToMap(tbl)
	}

	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := r.registry.Invoke(ctx, name, args); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	L.Push(lua.LTrue)
	return 1
}

// eyeguard.apply_profile(name) is shorthand for action("apply_profile", {name=name}).
func (r *Runtime) luaApplyProfile(L *lua.LState) int {
	name := L.CheckString(1)

	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := r.registry.Invoke(ctx, "apply_profile", map[string]any{"name": name}); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	L.Push(lua.LTrue)
	return 1
}

// eyeguard.actions() returns the registered action names.
func (r *Runtime) luaActions(L *lua.LState) int {
	tbl := L.NewTable()
	for i, name := range r.registry.Names() {
		tbl.RawSetInt(i+1, lua.LString(name))
	}
	L.Push(tbl)
	return 1
}
