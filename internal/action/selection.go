// Package action maps dialog results to reboot actions and carries them out.
package action

import "fmt"

// Action is what the user asked for.
type Action int

const (
	DoNothing Action = iota
	RebootOther
	RebootSame
	PowerOff
)

var actionNames = map[Action]string{
	DoNothing:   "nothing",
	RebootOther: "reboot-other",
	RebootSame:  "reboot-same",
	PowerOff:    "power-off",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction accepts the names printed by Action.String.
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return DoNothing, fmt.Errorf("unknown action %q (want reboot-other, reboot-same, power-off or nothing)", s)
}

// Control ids of the selection dialog.
const (
	IDOK     = 1
	IDCANCEL = 2

	IDRebootOther = 500
	IDRebootSame  = 501
	IDPowerOff    = 502
	IDPreAction   = 600

	// PreActionBit is or'ed into the dialog result when the pre-action
	// checkbox was ticked.
	PreActionBit = 0x10000
)

var actionIDs = map[uint32]Action{
	IDRebootOther: RebootOther,
	IDRebootSame:  RebootSame,
	IDPowerOff:    PowerOff,
}

// ID returns the option button id of a, or 0 for DoNothing.
func (a Action) ID() uint32 {
	for id, act := range actionIDs {
		if act == a {
			return id
		}
	}
	return 0
}

// Selection is the outcome of one dialog.
type Selection struct {
	Action       Action
	RunPreAction bool
}

func (s Selection) String() string {
	if s.RunPreAction {
		return s.Action.String() + "+pre-action"
	}
	return s.Action.String()
}

// FromCode maps a dialog result code to a Selection. Unknown codes,
// cancellation and failures all mean DoNothing.
func FromCode(code int) Selection {
	if code <= 0 {
		return Selection{}
	}
	act, ok := actionIDs[uint32(code)&0xFFFF]
	if !ok {
		return Selection{}
	}
	return Selection{Action: act, RunPreAction: code&PreActionBit != 0}
}

// Code is the inverse of FromCode.
func Code(s Selection) int {
	id := int(s.Action.ID())
	if id == 0 {
		return 0
	}
	if s.RunPreAction {
		id |= PreActionBit
	}
	return id
}
