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
    `sync/atomic`

    `github.com/cloudwego/kernopt/internal/opts`
    `github.com/cloudwego/kernopt/ir`
)

var (
    LoopCount        uint64 = 0
    NoPreheaderCount uint64 = 0
    HoistCount       uint64 = 0
)

// Hoister moves loop invariant instructions into the loop preheader, visiting
// the loop blocks in dominator order so that an instruction is only hoisted
// after every instruction it depends on had the chance to be.
type Hoister struct {
    facts Facts
    cls   *Classifier
    opts  opts.Options
}

func NewHoister(facts Facts, options opts.Options) *Hoister {
    return &Hoister {
        facts : facts,
        cls   : NewClassifier(nil),
        opts  : options,
    }
}

// WithPurity makes the hoister share purity results with other hoisters.
func (self *Hoister) WithPurity(purity *Purity) *Hoister {
    self.cls = NewClassifier(purity)
    return self
}

// Run hoists what it can out of lp and reports whether anything was moved.
// Loops without a preheader are left untouched. Blocks that belong to a
// subloop are not scanned, but the blocks they dominate still are.
func (self *Hoister) Run(lp *ir.Loop) bool {
    moved := false
    atomic.AddUint64(&LoopCount, 1)

    /* nowhere to hoist to */
    pre := lp.Preheader()
    if pre == nil {
        atomic.AddUint64(&NoPreheaderCount, 1)
        return false
    }

    /* scan the loop in dominator order */
    ir.DominatorOrder(lp.Header, self.facts.DomChildren, lp.Contains, func(bb *ir.BasicBlock) {
        if !lp.InSubloop(bb) {
            moved = self.hoistBlock(lp, bb, pre) || moved
        }
    })
    return moved
}

func (self *Hoister) hoistBlock(lp *ir.Loop, bb *ir.BasicBlock, pre *ir.BasicBlock) bool {
    moved := false
    snap := make([]*ir.Instr, len(bb.Ins))

    /* hoisting changes the instruction list, iterate over a copy */
    copy(snap, bb.Ins)
    for _, ins := range snap {
        if IsLoopInvariant(lp, ins) && self.cls.CanHoist(ins) {
            moved = true
            self.trace(ins, bb, pre)
            ins.MoveBeforeTerm(pre)
            atomic.AddUint64(&HoistCount, 1)
        }
    }
    return moved
}

func (self *Hoister) trace(ins *ir.Instr, from *ir.BasicBlock, to *ir.BasicBlock) {
    if self.opts.Trace {
        log.Printf("hoist: %s from %s to %s in %s", ins, from.Label(), to.Label(), from.Parent.Name)
    }
}
