package script

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

// logLoader exposes structured logging to Lua scripts.
func logLoader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "debug", L.NewFunction(logFunc(zerolog.DebugLevel)))
	L.SetField(mod, "info", L.NewFunction(logFunc(zerolog.InfoLevel)))
	L.SetField(mod, "warn", L.NewFunction(logFunc(zerolog.WarnLevel)))
	L.SetField(mod, "error", L.NewFunction(logFunc(zerolog.ErrorLevel)))

	L.Push(mod)
	return 1
}

func logFunc(level zerolog.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		msg := L.CheckString(1)

		event := log.WithLevel(level).Str("source", "lua")
		if tbl, ok := L.Get(2).(*lua.LTable); ok {
			for k, v := range luaTableToMap(tbl) {
				event = event.Interface(k, v)
			}
		}
		event.Msg(msg)

		return 0
	}
}
