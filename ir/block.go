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
)

type BasicBlock struct {
    Id     int
    Name   string
    Ins    []*Instr
    Parent *Function
}

func (self *BasicBlock) Label() string {
    if self.Name != "" {
        return self.Name
    } else {
        return fmt.Sprintf("bb_%d", self.Id)
    }
}

func (self *BasicBlock) String() string {
    return self.Label()
}

// Term returns the terminator of the block, or nil if the block is not
// terminated yet.
func (self *BasicBlock) Term() *Instr {
    if n := len(self.Ins); n == 0 {
        return nil
    } else if p := self.Ins[n - 1]; !p.Op.IsTerminator() {
        return nil
    } else {
        return p
    }
}

func (self *BasicBlock) Succs() []*BasicBlock {
    if tr := self.Term(); tr == nil {
        return nil
    } else {
        return tr.Targets
    }
}

// Preds scans the parent function for blocks branching to this block. Each
// predecessor is reported once, in function order.
func (self *BasicBlock) Preds() []*BasicBlock {
    var ret []*BasicBlock
    if self.Parent == nil {
        return nil
    }

    /* check every terminator */
    for _, bb := range self.Parent.Blocks {
        for _, s := range bb.Succs() {
            if s == self {
                ret = append(ret, bb)
                break
            }
        }
    }
    return ret
}

// Append adds an instruction at the end of the block and takes ownership of it.
func (self *BasicBlock) Append(ins *Instr) *Instr {
    if ins.Parent != nil {
        panic("ir: instruction already has a parent block")
    }
    ins.Parent = self
    self.Ins = append(self.Ins, ins)
    return ins
}

// Index returns the position of ins in the block, or -1.
func (self *BasicBlock) Index(ins *Instr) int {
    for i, p := range self.Ins {
        if p == ins {
            return i
        }
    }
    return -1
}

func (self *BasicBlock) remove(ins *Instr) {
    i := self.Index(ins)
    if i < 0 {
        panic(fmt.Sprintf("ir: instruction %s does not belong to %s", ins, self.Label()))
    }

    /* shift the remaining instructions down */
    copy(self.Ins[i:], self.Ins[i + 1:])
    self.Ins[len(self.Ins) - 1] = nil
    self.Ins = self.Ins[:len(self.Ins) - 1]
    ins.Parent = nil
}

func (self *BasicBlock) insertBefore(ins *Instr, pos *Instr) {
    i := self.Index(pos)
    if i < 0 {
        panic(fmt.Sprintf("ir: instruction %s does not belong to %s", pos, self.Label()))
    }

    /* make room for the new instruction */
    self.Ins = append(self.Ins, nil)
    copy(self.Ins[i + 1:], self.Ins[i:])
    self.Ins[i] = ins
    ins.Parent = self
}
