package notify

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow   = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcID = user32.NewProc("GetWindowThreadProcessId")
)

// terminalIsFocused fails open: any error means "not focused".
func terminalIsFocused() bool {
	fg, err := foregroundPID()
	if err != nil {
		return false
	}
	parentOf, err := processParents()
	if err != nil {
		return false
	}
	return ownsForeground(uint32(os.Getpid()), fg, parentOf)
}

func foregroundPID() (uint32, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0, windows.ERROR_INVALID_HANDLE
	}
	var pid uint32
	_, _, err := procGetWindowThreadProcID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return 0, err
	}
	return pid, nil
}

// processParents snapshots the process table as child -> parent.
func processParents() (map[uint32]uint32, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Process32First(snap, &entry); err != nil {
		return nil, err
	}
	parentOf := make(map[uint32]uint32)
	for {
		parentOf[entry.ProcessID] = entry.ParentProcessID
		if windows.Process32Next(snap, &entry) != nil {
			break
		}
	}
	return parentOf, nil
}
