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

package ir

import (
    `fmt`
    `io`
    `sort`
    `strings`
)

// Printer writes the textual form of modules and functions.
type Printer struct {
    w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
    return &Printer { w: w }
}

func (self *Printer) PrintModule(m *Module) {
    for _, gv := range m.Globals {
        fmt.Fprintf(self.w, "@%s = external global %s\n", gv.Name, gv.Ty.Elem)
    }

    /* separate globals from functions */
    if len(m.Globals) != 0 {
        fmt.Fprintln(self.w)
    }

    /* print functions */
    for i, fn := range m.Functions {
        if self.PrintFunction(fn); i != len(m.Functions) - 1 {
            fmt.Fprintln(self.w)
        }
    }

    /* sort metadata tables for deterministic output */
    keys := make([]string, 0, len(m.NamedMetadata))
    for k := range m.NamedMetadata {
        keys = append(keys, k)
    }

    /* print named metadata */
    sort.Strings(keys)
    for _, k := range keys {
        nodes := make([]string, 0, len(m.NamedMetadata[k].Nodes))
        for _, nd := range m.NamedMetadata[k].Nodes {
            nodes = append(nodes, nd.String())
        }
        fmt.Fprintf(self.w, "\n!%s = !{%s}", k, strings.Join(nodes, ", "))
    }

    /* end with a new line if metadata is printed */
    if len(keys) != 0 {
        fmt.Fprintln(self.w)
    }
}

func (self *Printer) PrintFunction(fn *Function) {
    if fn.IsDeclaration() {
        fmt.Fprintln(self.w, fn.String())
        return
    }

    /* function header */
    fmt.Fprintf(self.w, "%s {\n", fn)

    /* print every block */
    for _, bb := range fn.Blocks {
        fmt.Fprintf(self.w, "%s:\n", bb.Label())
        for _, ins := range bb.Ins {
            fmt.Fprintf(self.w, "    %s\n", ins)
        }
    }

    /* function tail */
    fmt.Fprintln(self.w, "}")
}

// Format returns the textual form of fn.
func Format(fn *Function) string {
    var sb strings.Builder
    NewPrinter(&sb).PrintFunction(fn)
    return sb.String()
}
