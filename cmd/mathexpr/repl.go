package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/zephyrtronium/mathexpr"
)

const (
	historyFile = ".mathexpr_history"
	promptMain  = ">>> "
)

const helpText = `commands:
  :funcs   list functions
  :help    show this help
  :quit    exit
`

func runRepl(ctx *mathexpr.Context, out printer) int {
	fmt.Fprintln(out.w, "mathexpr REPL. Ctrl+C cancels input, Ctrl+D exits. Type :help for commands.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetWordCompleter(complete)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out.w)
			return 0
		}
		if err != nil {
			// Ctrl+C abandons the line.
			continue
		}
		code := strings.TrimSpace(line)
		switch code {
		case "":
			continue
		case ":quit":
			return 0
		case ":help":
			fmt.Fprint(out.w, helpText)
			continue
		case ":funcs":
			listFuncs(out.w)
			continue
		}
		if strings.HasPrefix(code, ":") {
			fmt.Fprintln(out.w, "unknown command. Type :help for commands.")
			continue
		}
		out.run(ctx, code)
		ln.AppendHistory(code)
	}
}

func listFuncs(w io.Writer) {
	for _, f := range mathexpr.Funcs() {
		fmt.Fprintf(w, "  %s(%s)\n", f.Name, f.Hint)
	}
}

// complete completes function names and slot names at the cursor.
func complete(line string, pos int) (head string, completions []string, tail string) {
	head, tail = line[:pos], line[pos:]
	i := strings.LastIndexFunc(head, func(r rune) bool {
		return !(r == '_' || r == '.' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	})
	word := head[i+1:]
	head = head[:i+1]
	if word == "" {
		return head, nil, tail
	}
	for _, f := range mathexpr.Funcs() {
		if strings.HasPrefix(f.Name, word) {
			completions = append(completions, f.Snippet)
		}
	}
	for _, s := range mathexpr.Slots {
		for _, d := range []string{".width", ".height"} {
			if strings.HasPrefix(s+d, word) && len(word) > 1 {
				completions = append(completions, s+d)
			}
		}
	}
	return head, completions, tail
}
