// Command zyc is the zy compiler front end's CLI: tokenize, parse and
// type-check one entry module (SPEC_FULL.md §4.11), rendering the first
// diagnostic in color if the pipeline halts before code generation — there
// is no code generation in this front end, matching spec.md's non-goal on
// linker invocation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zylang/zyc/internal/debugdump"
	"github.com/zylang/zyc/internal/diag"
	"github.com/zylang/zyc/internal/driver"
	"github.com/zylang/zyc/internal/projectcfg"
	"github.com/zylang/zyc/internal/span"
	"github.com/zylang/zyc/internal/store"
)

var (
	errorHeadline = color.New(color.FgRed, color.Bold).SprintFunc()
	okHeadline    = color.New(color.FgGreen, color.Bold).SprintFunc()
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		input, output, llc, cc string
		manifestPath           string
	)

	root := &cobra.Command{
		Use:           "zyc [file]",
		Short:         "Tokenize, parse and type-check a zy module",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				input = args[0]
			}
			return runCompile(input, output, llc, cc, manifestPath,
				cmd.Flags().Changed("input"), cmd.Flags().Changed("output"),
				cmd.Flags().Changed("llc"), cmd.Flags().Changed("cc"))
		},
	}
	root.Flags().StringVarP(&input, "input", "i", "", "entry module path")
	root.Flags().StringVarP(&output, "output", "o", "a.out", "output path")
	root.Flags().StringVar(&llc, "llc", "", "path to the llc binary (checked with exec.LookPath when given; not looked up when omitted)")
	root.Flags().StringVar(&cc, "cc", "", "path to the cc binary")
	root.PersistentFlags().StringVar(&manifestPath, "project", "zyproject.toml", "project manifest path")

	root.AddCommand(newDumpCmd())
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorHeadline("error:"), err)
		return 1
	}
	return exitCode
}

// exitCode is set by a diagnostic that halted the pipeline; runCompile
// reports it by printing and returning nil rather than propagating it as
// a cobra error, so it is never double-printed by main's own handler.
var exitCode int

func runCompile(input, output, llc, cc, manifestPath string, inputSet, outputSet, llcSet, ccSet bool) error {
	manifest, err := projectcfg.Load(manifestPath)
	if err != nil {
		return err
	}
	manifest.ApplyDefaults(&input, &output, &llc, &cc, inputSet, outputSet, llcSet, ccSet)

	if input == "" {
		return printDiagnostic(diag.NoInput(), "", nil)
	}
	for name, path := range map[string]string{"llc": llc, "cc": cc} {
		if path == "" {
			continue
		}
		if _, err := exec.LookPath(path); err != nil {
			return printDiagnostic(diag.ExecNotFound(name), "", nil)
		}
	}

	fsys := os.DirFS(".")
	d := driver.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	s, h, err := d.Compile(fsys, input)
	if err != nil {
		dd, ok := err.(*diag.Diagnostic)
		if !ok {
			return err
		}
		source := []byte(nil)
		path := input
		if m := s.Module(h); m != nil {
			source = m.Source
			path = m.Path
		}
		return printDiagnostic(dd, path, source)
	}

	fmt.Fprintf(os.Stdout, "%s %s type-checked; output %s not produced (code generation is out of scope)\n",
		okHeadline("ok:"), input, output)
	return nil
}

// printDiagnostic renders d to stderr and records the process exit code,
// returning nil so the caller's RunE chain stops here without cobra
// re-printing the same diagnostic as a generic command error.
func printDiagnostic(d *diag.Diagnostic, path string, source []byte) error {
	if d.Soft {
		return nil
	}
	rendered := diag.Render(d, path, source)
	for i, line := range splitLines(rendered) {
		if i == 0 {
			fmt.Fprintln(os.Stderr, errorHeadline(line))
		} else {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	exitCode = 1
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func newDumpCmd() *cobra.Command {
	var stage string
	cmd := &cobra.Command{
		Use:           "dump [file]",
		Short:         "Serialize a pipeline stage (tokens|ast|ir) to stdout as msgpack",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0], debugdump.Stage(stage))
		},
	}
	cmd.Flags().StringVar(&stage, "stage", "ast", "stage to dump: tokens|ast|ir")
	return cmd
}

func runDump(path string, stage debugdump.Stage) error {
	fsys := os.DirFS(".")
	s := store.New(fsys, uuid.New())
	h, err := s.Load(path, span.NoHandle)
	if err != nil {
		return err
	}
	if err := s.Tokenize(h); err != nil {
		return err
	}
	if stage == debugdump.StageTokens {
		m := s.Module(h)
		data, err := debugdump.Dump(stage, m.Tokens, nil, nil)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	}
	if err := s.Parse(h); err != nil {
		return err
	}
	m := s.Module(h)
	var data []byte
	if stage == debugdump.StageIR {
		data, err = debugdump.Dump(stage, nil, nil, m.Domain)
	} else {
		data, err = debugdump.Dump(stage, nil, m.AST, nil)
	}
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}
