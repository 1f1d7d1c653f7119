package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

// printlnFn and printFn are test seams for user-facing output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// command is one REPL verb.
type command struct {
	usage   string
	help    string
	minArgs int
	run     func(ctx context.Context, args []string) error
}

// Root prints the banner and runs the REPL on the app's stdin.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to drawer (type 'help' for commands)")

	prompt := false
	if f, ok := a.stdin.(*os.File); ok {
		prompt = isTerminal(int(f.Fd()))
	}

	runREPL(ctx, a.commands(), a.statusLine, bufio.NewScanner(a.stdin), prompt)
}

// runREPL reads one command per line and dispatches it. Errors returned by
// commands are printed and the loop continues. The loop ends on EOF, on
// "exit" / "quit", or when ctx is done.
func runREPL(ctx context.Context, cmds map[string]command, statusFn func() string, scanner *bufio.Scanner, prompt bool) {
	for {
		if ctx.Err() != nil {
			return
		}
		if prompt {
			printFn(fmt.Sprintf("drawer %s> ", statusFn()))
		}
		if !scanner.Scan() {
			return
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printHelp(cmds)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := cmds[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if len(args) < cmd.minArgs {
			printlnFn("Usage:", cmd.usage)
			continue
		}
		if err := cmd.run(ctx, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func printHelp(cmds map[string]command) {
	names := make([]string, 0, len(cmds))
	for n := range cmds {
		names = append(names, n)
	}
	sort.Strings(names)

	printlnFn("Available commands:")
	for _, n := range names {
		printlnFn(fmt.Sprintf("  %-28s %s", cmds[n].usage, cmds[n].help))
	}
	printlnFn(fmt.Sprintf("  %-28s %s", "exit | quit", "leave the program"))
}
