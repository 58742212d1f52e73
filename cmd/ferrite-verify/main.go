/*
 * Ferrite - verifier for the Ferrite typestate intermediate representation
 *
 * Copyright Ferrite contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// ferrite-verify reads Ferrite IR programs and verifies them.
//
// Programs are read from the given files, or from standard input if none
// are given. Files ending in .firb are decoded as binary FIRF; everything
// else is decoded as the YAML fixture form.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/logrusorgru/aurora/v4"
	"github.com/schollz/progressbar/v3"
	tidwallpretty "github.com/tidwall/pretty"

	"github.com/ferrite-lang/ferrite/encoding/firf"
	"github.com/ferrite-lang/ferrite/errors"
	"github.com/ferrite-lang/ferrite/ir"
	"github.com/ferrite-lang/ferrite/pretty"
	"github.com/ferrite-lang/ferrite/sema"
)

var jsonFlag = flag.Bool("json", false, "report diagnostics as JSON")
var printFlag = flag.Bool("print", false, "pretty-print the decoded programs instead of verifying them")
var dumpFlag = flag.Bool("dump", false, "dump the decoded program structures instead of verifying them")
var colorFlag = flag.Bool("color", true, "colorize output")
var concurrencyFlag = flag.Int("concurrency", 0, "functions verified in parallel per program (0 = number of CPUs)")

func main() {
	flag.Parse()

	programs, ok := decodePrograms(flag.Args())
	if !ok {
		os.Exit(1)
	}

	switch {
	case *printFlag:
		printPrograms(programs)
	case *dumpFlag:
		dumpPrograms(programs)
	default:
		if !verifyPrograms(programs) {
			os.Exit(1)
		}
	}
}

type namedProgram struct {
	name    string
	program *ir.Program
}

func decodePrograms(paths []string) ([]namedProgram, bool) {
	if len(paths) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stdin: %s\n", err)
			return nil, false
		}
		program, err := firf.DecodeYAML(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stdin: %s\n", err)
			return nil, false
		}
		return []namedProgram{{name: "<stdin>", program: program}}, true
	}

	programs := make([]namedProgram, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return nil, false
		}

		var program *ir.Program
		if strings.HasSuffix(path, ".firb") {
			program, err = firf.Decode(data)
		} else {
			program, err = firf.DecodeYAML(data)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, err)
			return nil, false
		}

		programs = append(programs, namedProgram{
			name:    path,
			program: program,
		})
	}
	return programs, true
}

func printPrograms(programs []namedProgram) {
	for _, named := range programs {
		for _, function := range named.program.Functions {
			fmt.Println(ir.Render(function.Doc()))
			fmt.Println()
		}
	}
}

func dumpPrograms(programs []namedProgram) {
	printer := pp.New()
	printer.SetColoringEnabled(*colorFlag)
	printer.SetOutput(os.Stdout)
	for _, named := range programs {
		_, _ = printer.Println(named.program)
	}
}

func verifyPrograms(programs []namedProgram) bool {
	config := &sema.Config{
		Concurrency: *concurrencyFlag,
	}

	var bar *progressbar.ProgressBar
	if len(programs) > 1 && !*jsonFlag {
		bar = progressbar.Default(int64(len(programs)), "verifying")
	}

	type failure struct {
		name string
		err  error
	}

	var failures []failure
	for _, named := range programs {
		err := sema.VerifyProgram(named.program, config)
		if err != nil {
			failures = append(failures, failure{
				name: named.name,
				err:  err,
			})
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if *jsonFlag {
		var diagnostics []diagnostic
		for _, f := range failures {
			diagnostics = append(diagnostics, collectDiagnostics(f.name, f.err)...)
		}
		writeDiagnosticsJSON(diagnostics)
	} else {
		printer := pretty.NewErrorPrettyPrinter(os.Stderr, *colorFlag)
		for _, f := range failures {
			printErr := printer.PrettyPrintError(f.err)
			if printErr != nil {
				panic(printErr)
			}
		}
		printSummary(len(programs), len(failures))
	}

	return len(failures) == 0
}

func printSummary(total, failed int) {
	au := aurora.New(aurora.WithColors(*colorFlag))
	if failed == 0 {
		fmt.Fprintf(
			os.Stderr,
			"%s %d program(s) verified\n",
			au.Green("ok").Bold(),
			total,
		)
	} else {
		fmt.Fprintf(
			os.Stderr,
			"%s %d of %d program(s) rejected\n",
			au.Red("FAIL").Bold(),
			failed,
			total,
		)
	}
}

type diagnostic struct {
	File      string `json:"file"`
	Function  string `json:"function,omitempty"`
	Label     string `json:"label,omitempty"`
	Rule      string `json:"rule,omitempty"`
	Message   string `json:"message"`
	Secondary string `json:"secondary,omitempty"`
}

func collectDiagnostics(file string, err error) []diagnostic {
	if parentErr, ok := err.(errors.ParentError); ok {
		var diagnostics []diagnostic
		for _, childErr := range parentErr.ChildErrors() {
			diagnostics = append(diagnostics, collectDiagnostics(file, childErr)...)
		}
		return diagnostics
	}

	d := diagnostic{
		File:    file,
		Message: err.Error(),
	}
	if positioned, ok := err.(sema.HasPosition); ok {
		pos := positioned.Position()
		d.Function = pos.Function
		d.Label = string(pos.Label)
	}
	if semanticErr, ok := err.(sema.SemanticError); ok {
		d.Rule = semanticErr.RuleName()
	}
	if secondaryErr, ok := err.(errors.SecondaryError); ok {
		d.Secondary = secondaryErr.SecondaryError()
	}
	return []diagnostic{d}
}

func writeDiagnosticsJSON(diagnostics []diagnostic) {
	if diagnostics == nil {
		diagnostics = []diagnostic{}
	}
	encoded, err := json.Marshal(diagnostics)
	if err != nil {
		panic(err)
	}
	_, _ = os.Stdout.Write(tidwallpretty.Pretty(encoded))
}
