// Command pegc compiles PEG grammars, prints their AST, and offers an
// interactive REPL to try a grammar against sample input — the batch
// and interactive surfaces of spec SPEC_FULL §4.J, reworked from
// clarete-langlang/go/cmd/langlang/main.go and
// clarete-langlang/cmd/main.go's flag.String-based surface onto
// github.com/spf13/pflag subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	peg "github.com/vela-lang/peg"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, rest := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "compile":
		err = runCompile(rest)
	case "ast":
		err = runAST(rest)
	case "repl":
		err = runREPL(rest)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "pegc: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "pegc:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: pegc <command> [flags]

commands:
  compile   compile a grammar file to target-language source
  ast       print a grammar file's parsed AST
  repl      parse input lines interactively against a grammar

run 'pegc <command> -h' for command-specific flags`)
}

func loadSource(grammarPath string) (string, error) {
	if grammarPath == "" {
		return "", fmt.Errorf("-grammar is required")
	}
	data, err := os.ReadFile(grammarPath)
	if err != nil {
		return "", fmt.Errorf("reading grammar file: %w", err)
	}
	return string(data), nil
}

func runCompile(args []string) error {
	fs := pflag.NewFlagSet("compile", pflag.ExitOnError)
	grammarPath := fs.String("grammar", "", "path to the grammar file")
	outputPath := fs.StringP("output", "o", "/dev/stdout", "path to the output file")
	target := fs.String("target", "", "output target: go or python (overrides config)")
	pkgName := fs.String("go-package", "", "package name for the go target (overrides config)")
	configPath := fs.String("config", "", "path to a pegc.toml config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := peg.LoadConfigIfExists(*configPath)
	if err != nil {
		return err
	}
	peg.SetLogLevel(cfg.Log.Level)

	source, err := loadSource(*grammarPath)
	if err != nil {
		return err
	}

	if *target != "" {
		cfg.Emit.Target = *target
	}
	if *pkgName != "" {
		cfg.Emit.PackageName = *pkgName
	}

	var emitter peg.Emitter
	switch cfg.Emit.Target {
	case "", "go":
		emitter = peg.NewGoEmitter(peg.GoEmitOptions{PackageName: cfg.Emit.PackageName})
	case "python":
		emitter = peg.NewPythonEmitter(peg.PythonEmitOptions{})
	default:
		return fmt.Errorf("unknown target %q (want go or python)", cfg.Emit.Target)
	}

	compiler := peg.NewCompilerWithConfig(cfg)
	output, err := compiler.Compile(source, emitter)
	if err != nil {
		return err
	}
	return os.WriteFile(*outputPath, []byte(output), 0o644)
}

func runAST(args []string) error {
	fs := pflag.NewFlagSet("ast", pflag.ExitOnError)
	grammarPath := fs.String("grammar", "", "path to the grammar file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	source, err := loadSource(*grammarPath)
	if err != nil {
		return err
	}

	compiler := peg.NewCompiler()
	file, err := compiler.Parse(source)
	if err != nil {
		return err
	}
	fmt.Print(peg.PrettyPrint(file))
	if errs := file.Errors(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d malformed declaration(s) recovered:\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  line %d, column %d: %s\n", e.Span().Start.Line, e.Span().Start.Column, e.Message)
		}
	}
	return nil
}
