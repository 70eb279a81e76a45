package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/gaminde/kantor"
)

const (
	appName     = "kantor"
	historyFile = ".kantor_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var (
	banner   = fmt.Sprintf("Kantor %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", kantor.Version)
	helpText = `
REPL commands:
  :quit     Exit the REPL
  :help     Show this help
  :env      List defined sets
  :types    List defined record types
`
)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help", "help":
			usage()
			return
		case "version", "--version":
			fmt.Println(kantor.Version)
			return
		}
		os.Exit(runFiles(args))
	}

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		os.Exit(repl())
	}

	// Piped input: treat all of stdin as one script.
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read stdin: %v\n", appName, err)
		os.Exit(1)
	}
	os.Exit(runSource("<stdin>", string(src)))
}

func usage() {
	fmt.Printf(`Kantor %s

Usage:
  %s [file ...]    Evaluate script file(s), printing each result.
  %s               Start the REPL (or evaluate piped stdin).
  %s version       Print the version.

`, kantor.Version, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func runFiles(files []string) int {
	ret := 0
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
			return 1
		}
		if rc := runSource(file, string(src)); rc != 0 {
			ret = rc
		}
	}
	return ret
}

func runSource(name, src string) int {
	ip := kantor.New()
	results, err := ip.EvalSource(src)
	for _, r := range results {
		fmt.Println(kantor.FormatResult(r, ip.Types()))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, kantor.WrapErrorWithName(err, name, src).Error())
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func repl() (ret int) {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
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

	ip := kantor.New()

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			replCommand(ip, strings.TrimSpace(code))
			if strings.EqualFold(strings.TrimSpace(code), ":quit") {
				return 0
			}
			continue
		}

		if strings.TrimSpace(code) == "" {
			continue
		}

		results, err := ip.EvalSource(code)
		for _, r := range results {
			fmt.Println(blue(kantor.FormatResult(r, ip.Types())))
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(kantor.WrapErrorWithSource(err, code).Error()))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

func replCommand(ip *kantor.Interp, cmd string) {
	switch strings.ToLower(cmd) {
	case ":quit":
	case ":help":
		fmt.Print(helpText)
	case ":env":
		names := ip.Global.Names()
		sort.Strings(names)
		for _, n := range names {
			v, _ := ip.Global.Get(n)
			fmt.Printf("%s = %s\n", n, kantor.FormatValue(v, ip.Types(), ""))
		}
	case ":types":
		types := ip.Types()
		names := make([]string, 0, len(types))
		for n := range types {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Printf("%s = %s\n", n, kantor.FormatShape(types[n]))
		}
	default:
		fmt.Printf("unknown command. Type :help for a list.\n")
	}
}

// readByParseProbe accumulates lines until the buffer parses, or fails with
// an error that more input cannot fix.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := kantor.Parse(src)
		if perr == nil {
			return src, true
		}
		if kantor.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
