package script

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"myreboot/internal/action"
	"myreboot/internal/grubenv"
)

func newTestEngine(t *testing.T, scripts map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	e, err := NewEngine(filepath.Join(dir, "scripts"), filepath.Join(dir, "grubenv"), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for name, src := range scripts {
		if err := os.WriteFile(filepath.Join(e.Dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func TestRunScriptResult(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"echo.lua":   `result = ctx.action .. "@" .. ctx.host`,
		"none.lua":   `local x = 1`,
		"cancel.lua": `result = false`,
		"broken.lua": `error("display switch failed")`,
	})
	ctx := context.Background()

	got, err := e.RunScript(ctx, "echo", map[string]string{"action": "power-off", "host": "linux"})
	if err != nil || got != "power-off@linux" {
		t.Fatalf("echo = %q, %v", got, err)
	}
	if got, err := e.RunScript(ctx, "none.lua", nil); err != nil || got != "" {
		t.Fatalf("none = %q, %v", got, err)
	}
	if _, err := e.RunScript(ctx, "cancel", nil); !errors.Is(err, ErrScriptRejected) {
		t.Fatalf("cancel: expected ErrScriptRejected, got %v", err)
	}
	if _, err := e.RunScript(ctx, "broken", nil); err == nil || !strings.Contains(err.Error(), "display switch failed") {
		t.Fatalf("broken: got %v", err)
	}
	if _, err := e.RunScript(ctx, "missing", nil); !errors.Is(err, ErrScriptNotFound) {
		t.Fatalf("missing: expected ErrScriptNotFound, got %v", err)
	}
}

func TestModuleHelpers(t *testing.T) {
	t.Setenv("MYREBOOT_TEST_VALUE", "hello")
	e := newTestEngine(t, map[string]string{
		"env.lua":  `result = myreboot.env("MYREBOOT_TEST_VALUE")`,
		"grub.lua": `result = myreboot.grubenv_get("saved_entry") or "none"`,
	})
	if err := grubenv.Create(e.GrubenvPath); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if got, err := e.RunScript(ctx, "env", nil); err != nil || got != "hello" {
		t.Fatalf("env = %q, %v", got, err)
	}
	if got, err := e.RunScript(ctx, "grub", nil); err != nil || got != "none" {
		t.Fatalf("grub before = %q, %v", got, err)
	}
	if err := grubenv.SetValue(e.GrubenvPath, "saved_entry", "Windows Boot Manager"); err != nil {
		t.Fatal(err)
	}
	if got, err := e.RunScript(ctx, "grub", nil); err != nil || got != "Windows Boot Manager" {
		t.Fatalf("grub after = %q, %v", got, err)
	}
}

func TestHTTPSessionKeepsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			fmt.Fprint(w, "ok")
		case "/input":
			c, err := r.Cookie("session")
			if err != nil || c.Value != "abc" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			fmt.Fprintf(w, "%s %s", r.Method, r.Header.Get("X-Input"))
		}
	}))
	defer srv.Close()

	e := newTestEngine(t, map[string]string{
		"tv.lua": fmt.Sprintf(`
local body, status = myreboot.http_post(%q, "{}")
if status ~= 200 then error("login failed") end
local out, code = myreboot.http_get(%q, {["X-Input"] = "hdmi2"}, 2000)
result = out .. " " .. tostring(code)
`, srv.URL+"/login", srv.URL+"/input"),
	})
	got, err := e.RunScript(context.Background(), "tv", nil)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if got != "GET hdmi2 200" {
		t.Fatalf("got %q", got)
	}
}

func TestSleepHonoursContext(t *testing.T) {
	e := newTestEngine(t, map[string]string{"wait.lua": `myreboot.sleep(10000)`})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := e.RunScript(ctx, "wait", nil); err == nil {
		t.Fatalf("expected an error after cancellation")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("sleep ignored the context")
	}
}

func TestPreAction(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"pre.lua": `if ctx.target ~= "linux" then error("unexpected target " .. ctx.target) end`,
	})
	p := &PreAction{Engine: e, Script: "pre", Host: action.OSWindows}
	if err := p.RunPreAction(context.Background(), action.Selection{Action: action.RebootOther, RunPreAction: true}); err != nil {
		t.Fatalf("RunPreAction: %v", err)
	}
	if err := p.RunPreAction(context.Background(), action.Selection{Action: action.RebootSame, RunPreAction: true}); err == nil {
		t.Fatalf("expected the script to reject the windows target")
	}
	if err := (&PreAction{Engine: e}).RunPreAction(context.Background(), action.Selection{Action: action.PowerOff}); err == nil {
		t.Fatalf("expected an error without a script")
	}
}
