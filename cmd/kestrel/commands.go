package main

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"kestrel/interpreter-go/pkg/compiler"
	"kestrel/interpreter-go/pkg/driver"
	"kestrel/interpreter-go/pkg/interpreter"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "compile and run scripts",
	ArgsUsage: "<file.kst|dir> [...]",
	Flags:     []cli.Flag{maxDepthFlag, parallelFlag, workersFlag},
	Action:    runScripts,
}

var checkCommand = &cli.Command{
	Name:      "check",
	Usage:     "compile scripts without running them",
	ArgsUsage: "<file.kst|dir> [...]",
	Flags:     []cli.Flag{labelsFlag},
	Action:    checkScripts,
}

var disasmCommand = &cli.Command{
	Name:      "disasm",
	Usage:     "print the instructions of every unit in a script",
	ArgsUsage: "<file.kst>",
	Action:    disasmScript,
}

var configCommand = &cli.Command{
	Name:   "config",
	Usage:  "print the effective configuration",
	Flags:  []cli.Flag{formatFlag},
	Action: dumpConfig,
}

// compileArgs loads and compiles every script named on the command line.
func compileArgs(c *cli.Context, s *session) ([]string, []*compiler.Program, error) {
	if c.NArg() == 0 {
		return nil, nil, usagef("%s: required arguments: %s", c.Command.Name, c.Command.ArgsUsage)
	}
	loader, err := driver.NewLoader()
	if err != nil {
		return nil, nil, err
	}
	defer loader.Close()

	var names []string
	var programs []*compiler.Program
	for _, arg := range c.Args().Slice() {
		loaded, err := loader.Load(arg)
		if err != nil {
			return nil, nil, cli.Exit(err.Error(), exitFailure)
		}
		entry := loaded.Entry
		program, err := s.interp.CompileModule(entry.AST, entry.Origin)
		if err != nil {
			return nil, nil, failure(err)
		}
		names = append(names, entry.Origin)
		programs = append(programs, program)
	}
	return names, programs, nil
}

// failure reports a compile or runtime error with its call-site notes.
func failure(err error) error {
	return cli.Exit(interpreter.DescribeDiagnostic(interpreter.BuildDiagnostic(err)), exitFailure)
}

func runScripts(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()
	names, programs, err := compileArgs(c, s)
	if err != nil {
		return err
	}

	if c.Bool(parallelFlag.Name) && len(programs) > 1 {
		return runParallel(c, s, names, programs)
	}
	for i, program := range programs {
		if _, err := s.interp.Run(c.Context, program, c.App.Writer); err != nil {
			s.logger.Info("script failed", "script", names[i], "err", err)
			return failure(err)
		}
	}
	return nil
}

func runParallel(c *cli.Context, s *session, names []string, programs []*compiler.Program) error {
	outs := make([]*bytes.Buffer, len(programs))
	jobs := make([]interpreter.Job, len(programs))
	for i, program := range programs {
		outs[i] = &bytes.Buffer{}
		jobs[i] = interpreter.Job{Name: names[i], Program: program, Out: outs[i]}
	}
	results, err := s.interp.RunParallel(c.Context, jobs, s.cfg.Parallel.Workers)
	if err != nil {
		return err
	}
	var failed error
	for i, res := range results {
		if _, err := c.App.Writer.Write(outs[i].Bytes()); err != nil {
			return err
		}
		if res.Err != nil && failed == nil {
			failed = cli.Exit(fmt.Sprintf("%s: %s", res.Name, interpreter.DescribeDiagnostic(interpreter.BuildDiagnostic(res.Err))), exitFailure)
		}
	}
	return failed
}

func checkScripts(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()
	names, programs, err := compileArgs(c, s)
	if err != nil {
		return err
	}
	for i, program := range programs {
		for _, warning := range program.Warnings {
			fmt.Fprintf(c.App.ErrWriter, "%s: warning: %s\n", names[i], warning)
		}
		if !c.Bool(labelsFlag.Name) {
			fmt.Fprintf(c.App.Writer, "%s: ok\n", names[i])
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s:\n", names[i])
		table := tablewriter.NewWriter(c.App.Writer)
		table.SetHeader([]string{"Label", "Definitions", "Local", "Non-local"})
		for _, stat := range program.LabelReport() {
			table.Append([]string{
				stat.Label,
				strconv.Itoa(stat.Definitions),
				strconv.Itoa(stat.Local),
				strconv.Itoa(stat.NonLocal),
			})
		}
		table.Render()
	}
	return nil
}

func disasmScript(c *cli.Context) error {
	if c.NArg() != 1 {
		return usagef("disasm: required arguments: %s", c.Command.ArgsUsage)
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()
	_, programs, err := compileArgs(c, s)
	if err != nil {
		return err
	}
	for _, unit := range programs[0].Units() {
		name := unit.Name
		if name == "" {
			name = "<anon>"
		}
		fmt.Fprintf(c.App.Writer, "%s:\n", name)
		table := tablewriter.NewWriter(c.App.Writer)
		table.SetHeader([]string{"#", "Op", "Operands"})
		table.SetAutoWrapText(false)
		for _, line := range compiler.Disassemble(unit) {
			table.Append([]string{strconv.Itoa(line.Index), line.Op, line.Operands})
		}
		table.Render()
	}
	return nil
}

func dumpConfig(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()
	format := c.String(formatFlag.Name)
	if format != "toml" && format != "yaml" {
		return usagef("config: unknown format %q", format)
	}
	return s.cfg.Dump(c.App.Writer, format)
}
