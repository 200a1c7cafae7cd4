package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Posts(ctx context.Context, category string) error
	Mine(ctx context.Context) error
	Upload(ctx context.Context, kind, path string) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// Prompts inside commands read from the same reader, so no input is lost
// to buffering. The loop ends on EOF or "exit"/"quit".
//
// Errors returned by commands are ignored here; commands report their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mb %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: posts [category], mine, upload <article|avatar> <file>, me, logout, exit")
			} else {
				printlnFn("Available commands: register, login, posts [category], me, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "me":
			_ = a.Me(ctx)

		case "posts", "l":
			_ = a.Posts(ctx, strings.Join(args, " "))

		case "mine":
			_ = a.Mine(ctx)

		case "upload":
			if len(args) != 2 {
				printlnFn("Usage: upload <article|avatar> <file>")
				continue
			}
			_ = a.Upload(ctx, args[0], args[1])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
