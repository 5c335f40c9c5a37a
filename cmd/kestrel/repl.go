package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"kestrel/interpreter-go/pkg/interpreter"
	"kestrel/interpreter-go/pkg/parser"
	"kestrel/interpreter-go/pkg/runtime"
)

const (
	historyFile = ".kestrel_history"
	promptMain  = "kestrel> "
	promptCont  = "....... "
)

var replCommand = &cli.Command{
	Name:   "repl",
	Usage:  "interactive session on one persistent thread",
	Action: runRepl,
}

// lineReader is the part of liner the session loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func runRepl(c *cli.Context) error {
	if c.NArg() > 0 {
		return usagef("repl does not take arguments (received %s)", strings.Join(c.Args().Slice(), " "))
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(c.App.Writer, "kestrel %s; :quit to exit\n", cliToolVersion)
	replLoop(c.Context, ln, s.interp, c.App.Writer, c.App.ErrWriter)
	return nil
}

// replLoop evaluates chunks until the reader reports EOF. Globals and named
// subroutines persist across chunks; a failed chunk leaves them as they were
// when it stopped.
func replLoop(ctx context.Context, in lineReader, interp *interpreter.Interpreter, out, errOut io.Writer) {
	thread := interp.NewThread(out)
	red := color.New(color.FgRed)
	for n := 1; ; n++ {
		code, ok := readChunk(in)
		if !ok {
			fmt.Fprintln(out)
			return
		}
		trimmed := strings.TrimSpace(code)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit" || trimmed == ":q":
			return
		case strings.HasPrefix(trimmed, ":"):
			fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			continue
		}
		in.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		program, err := interp.CompileSource(fmt.Sprintf("repl:%d", n), []byte(code))
		if err != nil {
			red.Fprintln(errOut, err)
			continue
		}
		val, err := thread.Run(ctx, program)
		if err != nil {
			red.Fprintln(errOut, interpreter.DescribeDiagnostic(interpreter.BuildDiagnostic(err)))
			continue
		}
		if _, undef := val.(runtime.UndefValue); !undef && val != nil {
			fmt.Fprintln(out, runtime.Stringify(val))
		}
	}
}

// readChunk keeps prompting while the input so far ends inside an open
// block or string.
func readChunk(in lineReader) (string, bool) {
	var b strings.Builder
	p, _ := parser.NewModuleParser()
	defer p.Close()
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C abandons the current chunk.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if _, perr := p.ParseModule([]byte(src)); perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
