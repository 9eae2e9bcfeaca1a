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

package hoist

import (
    `log`

    `github.com/cloudwego/kernopt/internal/opts`
    `github.com/cloudwego/kernopt/ir`
)

type Pass interface {
    Apply(*ir.Function) bool
}

type PassDescriptor struct {
    Pass Pass
    Name string
}

// LoopSimplify gives every loop of the function a dedicated preheader.
type LoopSimplify struct{}

func (LoopSimplify) Apply(fn *ir.Function) bool {
    changed := false
    if fn.IsDeclaration() {
        return false
    }

    /* every insertion invalidates the analyses, start over after each one */
    for again := true; again; {
        again = false
        dt := ir.BuildDominatorTree(fn)

        /* find the first loop that can be given a preheader */
        for _, lp := range ir.BuildLoopInfo(fn, dt).Loops() {
            if ir.InsertPreheader(lp) != nil {
                again = true
                changed = true
                break
            }
        }
    }
    return changed
}

// CarefulHoist runs the Hoister on every loop of the function, innermost
// loops first, so an instruction can bubble out through several levels of
// nesting in a single application.
type CarefulHoist struct {
    Options opts.Options
    Purity  *Purity
}

func (self *CarefulHoist) Apply(fn *ir.Function) bool {
    moved := false
    if fn.IsDeclaration() {
        return false
    }

    /* purity results are shared between functions when provided */
    if self.Purity == nil {
        self.Purity = NewPurity()
    }

    /* hoisting never changes the CFG, the analyses stay valid */
    dt := ir.BuildDominatorTree(fn)
    li := ir.BuildLoopInfo(fn, dt)
    hs := NewHoister(dt, self.Options).WithPurity(self.Purity)

    /* optimize every loop */
    for _, lp := range li.Loops() {
        moved = hs.Run(lp) || moved
    }
    return moved
}

// Passes returns the pipeline selected by the options.
func Passes(o opts.Options, purity *Purity) []PassDescriptor {
    var ret []PassDescriptor
    if o.CanSimplify() {
        ret = append(ret, PassDescriptor { Name: "Loop Simplification", Pass: LoopSimplify{} })
    }
    ret = append(ret, PassDescriptor { Name: "Careful Hoisting", Pass: &CarefulHoist { Options: o, Purity: purity } })
    return ret
}

// Optimize runs the pipeline on fn and reports whether anything changed.
func Optimize(fn *ir.Function, o opts.Options, purity *Purity) bool {
    changed := false
    if o.DumpIR {
        log.Printf("hoist: before optimization\n%s", ir.Format(fn))
    }

    /* run every pass */
    for _, p := range Passes(o, purity) {
        if p.Pass.Apply(fn) {
            changed = true
            if o.Trace {
                log.Printf("hoist: %s changed %s", p.Name, fn.Name)
            }
        }
    }

    /* dump the result if requested */
    if o.DumpIR {
        log.Printf("hoist: after optimization\n%s", ir.Format(fn))
    }
    return changed
}
