package notify

import (
	"os"
	"testing"
)

func TestProcessParents_ContainsSelf(t *testing.T) {
	parentOf, err := processParents()
	if err != nil {
		t.Fatalf("processParents failed: %v", err)
	}
	if _, ok := parentOf[uint32(os.Getpid())]; !ok {
		t.Fatalf("our PID %d not found in process map", os.Getpid())
	}
}

func TestForegroundPID(t *testing.T) {
	if pid, err := foregroundPID(); err != nil || pid == 0 {
		t.Skip("no foreground window (headless environment)")
	}
}

func TestTerminalIsFocused_DoesNotPanic(t *testing.T) {
	_ = terminalIsFocused()
}
