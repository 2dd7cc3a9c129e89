// Package script runs the user's Lua pre-action scripts.
//
// A script sees a global "ctx" table with the selected action and host OS,
// and a "myreboot" module with helpers. It may set the global "result";
// setting it to false cancels the action.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"myreboot/internal/grubenv"
)

var (
	ErrScriptNotFound = errors.New("script not found")
	ErrScriptRejected = errors.New("script cancelled the action")
)

// Engine runs scripts from a directory. Every run gets a fresh Lua state.
type Engine struct {
	Dir         string
	GrubenvPath string
	SkipVerify  bool
	Log         logrus.FieldLogger
}

// NewEngine creates the scripts directory if needed.
func NewEngine(dir, grubenvPath string, log logrus.FieldLogger) (*Engine, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scripts directory: %w", err)
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Engine{Dir: dir, GrubenvPath: grubenvPath, Log: log}, nil
}

// Path resolves a script name. Relative names live in the engine directory
// and get a .lua extension when they have none.
func (e *Engine) Path(name string) string {
	if filepath.Ext(name) == "" {
		name += ".lua"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.Dir, name)
}

// RunScript executes a script with vars exposed as the ctx table and returns
// the string form of its result global, or "" when the script set none.
func (e *Engine) RunScript(ctx context.Context, name string, vars map[string]string) (string, error) {
	path := e.Path(name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrScriptNotFound, path)
	}

	session, err := NewHTTPSession(e.SkipVerify)
	if err != nil {
		return "", err
	}
	run := &scriptRun{engine: e, http: session, log: e.Log.WithField("script", filepath.Base(path))}

	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	run.register(L)

	tbl := L.NewTable()
	for k, v := range vars {
		L.SetField(tbl, k, lua.LString(v))
	}
	L.SetGlobal("ctx", tbl)
	L.SetGlobal("result", lua.LNil)

	start := time.Now()
	if err := L.DoFile(path); err != nil {
		return "", fmt.Errorf("script error: %w", err)
	}
	run.log.WithField("duration", time.Since(start).Round(time.Millisecond)).Debug("Script finished")

	switch result := L.GetGlobal("result"); result {
	case lua.LNil:
		return "", nil
	case lua.LFalse:
		return "", ErrScriptRejected
	default:
		return result.String(), nil
	}
}

// scriptRun holds per-run state the module functions close over.
type scriptRun struct {
	engine *Engine
	http   *HTTPSession
	log    logrus.FieldLogger
}

func (r *scriptRun) register(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "exec", L.NewFunction(r.luaExec))
	L.SetField(mod, "shell", L.NewFunction(r.luaShell))
	L.SetField(mod, "env", L.NewFunction(luaEnv))
	L.SetField(mod, "log", L.NewFunction(r.luaLog))
	L.SetField(mod, "sleep", L.NewFunction(luaSleep))
	L.SetField(mod, "http_get", L.NewFunction(r.luaHTTPGet))
	L.SetField(mod, "http_post", L.NewFunction(r.luaHTTPPost))
	L.SetField(mod, "grubenv_get", L.NewFunction(r.luaGrubenvGet))
	L.SetField(mod, "os", lua.LString(runtime.GOOS))
	L.SetGlobal("myreboot", mod)
}

// myreboot.exec(cmd, args...) -> output, error
func (r *scriptRun) luaExec(L *lua.LState) int {
	name := L.CheckString(1)
	var args []string
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, L.CheckString(i))
	}
	return r.pushCommand(L, exec.CommandContext(L.Context(), name, args...))
}

// myreboot.shell(command) -> output, error
func (r *scriptRun) luaShell(L *lua.LState) int {
	command := L.CheckString(1)
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(L.Context(), "cmd", "/c", command)
	} else {
		cmd = exec.CommandContext(L.Context(), "sh", "-c", command)
	}
	return r.pushCommand(L, cmd)
}

func (r *scriptRun) pushCommand(L *lua.LState, cmd *exec.Cmd) int {
	output, err := cmd.CombinedOutput()
	r.log.WithFields(logrus.Fields{"command": strings.Join(cmd.Args, " "), "success": err == nil}).Debug("Script command")
	L.Push(lua.LString(string(output)))
	if err != nil {
		L.Push(lua.LString(err.Error()))
		return 2
	}
	return 1
}

// myreboot.env(name) -> value
func luaEnv(L *lua.LState) int {
	L.Push(lua.LString(os.Getenv(L.CheckString(1))))
	return 1
}

// myreboot.log(message)
func (r *scriptRun) luaLog(L *lua.LState) int {
	r.log.Info(L.CheckString(1))
	return 0
}

// myreboot.sleep(milliseconds)
func luaSleep(L *lua.LState) int {
	d := time.Duration(L.CheckInt(1)) * time.Millisecond
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-L.Context().Done():
		L.RaiseError("sleep interrupted: %v", L.Context().Err())
	}
	return 0
}

// myreboot.http_get(url, headers, timeout_ms) -> body, status | nil, error
func (r *scriptRun) luaHTTPGet(L *lua.LState) int {
	url := L.CheckString(1)
	headers := headerMap(L.OptTable(2, nil))
	timeout := time.Duration(L.OptInt(3, 0)) * time.Millisecond

	body, status, err := r.http.Get(L.Context(), url, headers, timeout)
	return pushResponse(L, body, status, err)
}

// myreboot.http_post(url, body, headers, timeout_ms) -> body, status | nil, error
func (r *scriptRun) luaHTTPPost(L *lua.LState) int {
	url := L.CheckString(1)
	reqBody := L.CheckString(2)
	headers := headerMap(L.OptTable(3, nil))
	timeout := time.Duration(L.OptInt(4, 0)) * time.Millisecond

	body, status, err := r.http.Post(L.Context(), url, reqBody, headers, timeout)
	return pushResponse(L, body, status, err)
}

func headerMap(tbl *lua.LTable) map[string]string {
	headers := make(map[string]string)
	if tbl != nil {
		tbl.ForEach(func(k, v lua.LValue) {
			headers[k.String()] = v.String()
		})
	}
	return headers
}

func pushResponse(L *lua.LState, body string, status int, err error) int {
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(body))
	L.Push(lua.LNumber(status))
	return 2
}

// myreboot.grubenv_get(key) -> value | nil, error
func (r *scriptRun) luaGrubenvGet(L *lua.LState) int {
	key := L.CheckString(1)
	env, err := grubenv.Load(r.engine.GrubenvPath)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	if v, ok := env.Get(key); ok {
		L.Push(lua.LString(v))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}
