/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command kernopt loads a kernel module description and runs the careful
// hoisting and launch geometry analyses over it.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudwego/kernopt"
	"github.com/cloudwego/kernopt/debug"
	"github.com/cloudwego/kernopt/internal/irfile"
	"github.com/cloudwego/kernopt/internal/opts"
	"github.com/cloudwego/kernopt/ir"
)

var version = "0.1.0"

// Flags
var (
	dialectName      string
	doHoist          bool
	doDims           bool
	doEntries        bool
	doDump           bool
	dotFile          string
	showStats        bool
	stripMarkers     bool
	insertPreheaders bool
	trace            bool
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	return exitCode(cmd.Execute(), os.Stderr)
}

// exitCode reports err on errOut and maps it to the process exit status.
func exitCode(err error, errOut io.Writer) int {
	var de *kernopt.DimensionError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &de):
		fmt.Fprintln(errOut, de.Error())
		return kernopt.ExitUnsupportedDimension
	default:
		fmt.Fprintf(errOut, "kernopt: %v\n", err)
		return 1
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kernopt [flags] module.yaml",
		Short: "Careful loop hoisting and launch geometry recovery for GPU kernels",
		Long: `kernopt loads a kernel module description and analyzes it.

It hoists loop invariant computations that cannot touch memory into loop
preheaders, lists the kernel entry points, and recovers the launch geometry
from the __axiom marker functions of OpenCL and CUDA modules.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetOutput(errOut)
			log.SetFlags(0)
			err := process(args[0], out, errOut)
			if showStats {
				printStats(errOut)
			}
			return err
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	defaults := opts.GetDefaultOptions()

	// Analyses
	rootCmd.Flags().StringVar(&dialectName, "dialect", defaults.Dialect, "Source language of the module (c, cuda, opencl)")
	rootCmd.Flags().BoolVar(&doHoist, "hoist", false, "Hoist loop invariant computations into preheaders")
	rootCmd.Flags().BoolVar(&doDims, "dims", false, "Recover the kernel launch geometry")
	rootCmd.Flags().BoolVar(&doEntries, "entries", false, "List the kernel entry points")

	// Behaviour
	rootCmd.Flags().BoolVar(&stripMarkers, "strip-markers", defaults.StripMarkers, "Remove the geometry marker functions after --dims")
	rootCmd.Flags().BoolVar(&insertPreheaders, "insert-preheaders", defaults.InsertPreheaders, "Give loops without a preheader a dedicated one")
	rootCmd.Flags().BoolVar(&trace, "trace", defaults.Trace, "Log every hoisted instruction")

	// Output
	rootCmd.Flags().BoolVar(&doDump, "dump", false, "Print the module after all transformations")
	rootCmd.Flags().BoolVar(&showStats, "stats", false, "Print hoisting and extraction statistics to stderr")
	rootCmd.Flags().StringVar(&dotFile, "dot", "", "Write the annotated CFG of every function to `FILE` in Graphviz format")

	return rootCmd
}

func process(path string, out, errOut io.Writer) error {
	dialect, err := kernopt.ParseDialect(dialectName)
	if err != nil {
		return err
	}

	m, err := irfile.Load(path)
	if err != nil {
		return err
	}

	options := []kernopt.Option{
		kernopt.WithTrace(trace),
		kernopt.WithStripMarkers(stripMarkers),
		kernopt.WithPreheaderInsertion(insertPreheaders),
	}

	// Nothing selected: just print what was loaded
	if !doHoist && !doDims && !doEntries && dotFile == "" {
		doDump = true
	}

	if doEntries {
		for _, fn := range kernopt.EntryPoints(m, dialect) {
			fmt.Fprintf(out, "entry: @%s\n", fn.Name)
		}
	}

	if doHoist {
		n := kernopt.HoistModule(m, options...)
		fmt.Fprintf(out, "hoist: %d function(s) changed\n", n)
	}

	if doDims {
		kd, err := kernopt.ExtractDimensions(m, dialect, options...)
		if err != nil {
			var de *kernopt.DimensionError
			if errors.As(err, &de) && trace {
				log.Printf("dims: %s", de.Detail())
			}
			return err
		}
		fmt.Fprintf(out, "dims: %s\n", kd)
	}

	if dotFile != "" {
		if err := writeDot(dotFile, m); err != nil {
			return err
		}
		fmt.Fprintf(errOut, "kernopt: wrote %s\n", dotFile)
	}

	if doDump {
		ir.NewPrinter(out).PrintModule(m)
	}
	return nil
}

func printStats(w io.Writer) {
	st := debug.GetStats()
	fmt.Fprintf(w, "stats: loops=%d no-preheader=%d hoisted=%d\n", st.Hoist.Loops, st.Hoist.NoPreheader, st.Hoist.Hoisted)
	fmt.Fprintf(w, "stats: axioms=%d matched=%d\n", st.Axiom.Candidates, st.Axiom.Matched)
}

// writeDot writes one digraph per function defined in m.
func writeDot(path string, m *ir.Module) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, fn := range m.Functions {
		if fn.IsDeclaration() {
			continue
		}
		if err := ir.WriteDot(f, fn); err != nil {
			return err
		}
	}
	return f.Close()
}
