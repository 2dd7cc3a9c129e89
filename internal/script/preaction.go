package script

import (
	"context"
	"errors"

	"myreboot/internal/action"
)

// PreAction runs one configured script before an action is carried out.
type PreAction struct {
	Engine *Engine
	Script string
	Host   string
}

// RunPreAction runs the script with ctx.action, ctx.host and ctx.target set.
func (p *PreAction) RunPreAction(ctx context.Context, sel action.Selection) error {
	if p.Script == "" {
		return errors.New("no pre-action script configured")
	}
	target := ""
	switch sel.Action {
	case action.RebootOther:
		target = action.OtherOS(p.Host)
	case action.RebootSame:
		target = p.Host
	}
	result, err := p.Engine.RunScript(ctx, p.Script, map[string]string{
		"action": sel.Action.String(),
		"host":   p.Host,
		"target": target,
	})
	if err != nil {
		return err
	}
	if result != "" {
		p.Engine.Log.WithField("result", result).Info("Pre-action finished")
	}
	return nil
}
