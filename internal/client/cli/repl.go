package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

var errUnknownCommand = errors.New("unknown command")

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	help() string
	exec(ctx context.Context, cmd string, args []string) error
}

// runREPL starts a simple read-eval-print loop for the shoplist client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches it to a. Unknown commands are reported back to the user. The
// loop exits on EOF or when the user types "exit" or "quit".
//
// The prompt shows the current status (from statusFn). "help" lists the
// commands available in the current session state.
//
// Errors returned by command handlers are ignored here; handlers notify the
// user and log on their own. This keeps the REPL loop resilient and focused
// on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("shoplist %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn(a.help())

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if err := a.exec(ctx, cmd, parts[1:]); errors.Is(err, errUnknownCommand) {
				printlnFn("Unknown command:", cmd)
			}
		}
	}
}
