// Package platform wraps the OS integrations the browser needs: the
// mime-type opener and the startup OS check.
package platform

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// OpenPath hands a local file to the OS mime-type handler.
func OpenPath(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}

// WarnUnsupportedOS prints a warning and blocks on a keypress when not
// running on Linux. The program continues either way.
func WarnUnsupportedOS() {
	if runtime.GOOS == "linux" {
		return
	}
	fmt.Println("Warning: your operating system is not currently supported. " +
		"You may run into strange bugs and features not working correctly! Press enter to continue.")
	buf := make([]byte, 1)
	_, _ = os.Stdin.Read(buf)
}
