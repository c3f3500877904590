// Command mindcontext maintains a project's focus record and answers agent
// hook events.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Iron-Ham/mindcontext/internal/cmd"
	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/gate"
)

// Exit codes.
const (
	exitOK      = 0
	exitError   = 1
	exitBlocked = 2
)

func main() {
	os.Exit(exitCode(cmd.Execute(), os.Stderr))
}

// exitCode reports err on stderr and maps it to the process status. A
// blocked edit prints only the gate feedback. Classified errors already
// carry their own prefix; anything else is prefixed with "Error:".
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}
	var blocked *gate.BlockError
	if errors.As(err, &blocked) {
		fmt.Fprintln(stderr, blocked.Error())
		return exitBlocked
	}
	if errors.IsUserFacing(err) {
		fmt.Fprintln(stderr, err)
	} else {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitError
}
