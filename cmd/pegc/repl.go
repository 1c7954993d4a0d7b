package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	peg "github.com/vela-lang/peg"
)

// runREPL loads a grammar once, builds a live rule tree with
// Compiler.BuildRules (spec SPEC_FULL §6), and then parses each line
// the user types against the rule named by --rule, or by default the
// grammar's first declared rule — a
// dynamic-parser loop grounded on
// clarete-langlang/go/cmd/langlang/main.go's `-interactive` flag,
// reworked onto github.com/chzyer/readline instead of a bufio.Scanner
// loop.
func runREPL(args []string) error {
	fs := pflag.NewFlagSet("repl", pflag.ExitOnError)
	grammarPath := fs.String("grammar", "", "path to the grammar file")
	ruleName := fs.String("rule", "", "rule to parse input against (default: the first declared rule)")
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

	compiler := peg.NewCompilerWithConfig(cfg)
	file, err := compiler.Parse(source)
	if err != nil {
		return err
	}
	if errs := file.Errors(); len(errs) > 0 {
		return fmt.Errorf("grammar has %d malformed declaration(s), first: %s", len(errs), errs[0].Message)
	}

	env, err := compiler.BuildRules(file)
	if err != nil {
		return err
	}

	top := *ruleName
	if top == "" {
		top = firstRuleName(file)
	}
	if top == "" {
		return fmt.Errorf("grammar declares no rules")
	}
	rule, cfgErr := env.Lookup(top)
	if cfgErr != nil {
		return cfgErr
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt: top + "> ",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	parser := peg.NewParser(rule, env)
	parser.SetFurthestFailureReporting(cfg.Compiler.FurthestFailureReporting)
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		v, perr := parser.Parse(line)
		if perr != nil {
			if pe, ok := perr.(*peg.ParseError); ok {
				fmt.Fprint(os.Stdout, pe.Report())
			} else {
				fmt.Fprintln(os.Stdout, perr)
			}
			continue
		}
		fmt.Fprintln(os.Stdout, v.String())
	}
}

func firstRuleName(file *peg.File) string {
	for _, d := range file.Decls {
		if decl, ok := d.(*peg.RuleDecl); ok {
			return decl.Name
		}
	}
	return ""
}
