//go:build windows

package main

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"myreboot/internal/action"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	dialogBoxIndirectParam = user32.NewProc("DialogBoxIndirectParamW")
	endDialog              = user32.NewProc("EndDialog")
	isDlgButtonChecked     = user32.NewProc("IsDlgButtonChecked")
	checkRadioButton       = user32.NewProc("CheckRadioButton")
)

const (
	wmInitDialog = 0x0110
	wmCommand    = 0x0111
	bstChecked   = 1
)

// activeDialog is the dialog currently shown; DialogBoxIndirectParamW is modal
// so there is at most one.
var (
	dialogMu     sync.Mutex
	activeDialog action.DialogOptions
	dialogProc   = windows.NewCallback(selectionDialogProc)
)

// showDialog builds the template in memory and runs it as a modal dialog.
func showDialog(opts action.DialogOptions) (int, error) {
	tmpl, err := action.BuildDialog(opts)
	if err != nil {
		return 0, err
	}

	dialogMu.Lock()
	defer dialogMu.Unlock()
	activeDialog = opts

	// The dialog's message loop runs on this thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var hInstance windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &hInstance); err != nil {
		return 0, fmt.Errorf("GetModuleHandleEx: %w", err)
	}

	ret, _, callErr := dialogBoxIndirectParam.Call(
		uintptr(hInstance),
		uintptr(unsafe.Pointer(&tmpl[0])),
		0,
		dialogProc,
		0,
	)
	runtime.KeepAlive(tmpl)
	if int32(ret) == -1 || ret == 0 {
		return 0, fmt.Errorf("DialogBoxIndirectParamW: %w", callErr)
	}
	return int(int32(ret)), nil
}

func selectionDialogProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	switch msg {
	case wmInitDialog:
		opts := activeDialog
		first := uintptr(opts.Options[0].Action.ID())
		last := uintptr(opts.Options[len(opts.Options)-1].Action.ID())
		checkRadioButton.Call(hwnd, first, last, uintptr(opts.DefaultOption()))
		return 1

	case wmCommand:
		switch wParam & 0xFFFF {
		case action.IDOK:
			endDialog.Call(hwnd, uintptr(selectedCode(hwnd)))
			return 1
		case action.IDCANCEL:
			endDialog.Call(hwnd, action.IDCANCEL)
			return 1
		}
	}
	return 0
}

// selectedCode reads the checked option and the pre-action checkbox.
func selectedCode(hwnd uintptr) int {
	code := 0
	for _, o := range activeDialog.Options {
		if state, _, _ := isDlgButtonChecked.Call(hwnd, uintptr(o.Action.ID())); state == bstChecked {
			code = int(o.Action.ID())
			break
		}
	}
	if code == 0 {
		return action.IDCANCEL
	}
	if activeDialog.PreActionLabel != "" {
		if state, _, _ := isDlgButtonChecked.Call(hwnd, action.IDPreAction); state == bstChecked {
			code |= action.PreActionBit
		}
	}
	return code
}
