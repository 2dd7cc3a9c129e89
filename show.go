package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/itchyny/gojq"
	"golang.org/x/term"

	"myreboot/internal/action"
)

type stateStyler struct {
	enabled bool
	label   lipgloss.Style
	value   lipgloss.Style
	muted   lipgloss.Style
	os      map[string]lipgloss.Style
}

func newStateStyler(out io.Writer) stateStyler {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return stateStyler{}
	}
	return stateStyler{
		enabled: true,
		label:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6E6E6E", Dark: "#9CA3AF"}),
		value:   lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Faint(true),
		os: map[string]lipgloss.Style{
			action.OSWindows: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#0063B1", Dark: "#4CC2FF"}),
			action.OSLinux:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#9A6B00", Dark: "#F2C14E"}),
		},
	}
}

func (s stateStyler) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

func (s stateStyler) nextBoot(next string) string {
	style, ok := s.os[next]
	if !ok {
		style = s.muted
	}
	return s.render(style, osDisplayName(next))
}

// writeState prints the boot state for humans.
func writeState(out io.Writer, st action.BootState, styler stateStyler) {
	fmt.Fprintf(out, "%s %s\n", styler.render(styler.label, "Next boot:  "), styler.nextBoot(st.NextBoot))
	if st.SavedEntry != "" {
		fmt.Fprintf(out, "%s %s\n", styler.render(styler.label, "Saved entry:"), styler.render(styler.value, st.SavedEntry))
	}
	fmt.Fprintf(out, "%s %s\n", styler.render(styler.label, "Block:      "), st.GrubenvPath)

	keys := make([]string, 0, len(st.Variables))
	for k := range st.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s=%s\n", styler.render(styler.muted, k), st.Variables[k])
	}
}

// stateJSON converts the state to the generic form gojq works on.
func stateJSON(st action.BootState) (any, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// queryState runs a jq expression over the state. Strings are printed raw,
// everything else as compact JSON.
func queryState(ctx context.Context, out io.Writer, st action.BootState, expr string) error {
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	input, err := stateJSON(st)
	if err != nil {
		return err
	}

	iter := query.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := v.(error); ok {
			return fmt.Errorf("query: %w", err)
		}
		if s, ok := v.(string); ok {
			fmt.Fprintln(out, s)
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	}
}
