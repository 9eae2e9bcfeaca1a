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
    `sort`

    `github.com/oleiade/lane`
)

// Loop is a natural loop: a header block plus every block that can reach a
// back edge into the header without passing through the header again.
type Loop struct {
    Header   *BasicBlock
    Parent   *Loop
    Subloops []*Loop
    Depth    int
    blocks   map[*BasicBlock]struct{}
}

func (self *Loop) String() string {
    return fmt.Sprintf("loop<%s, depth=%d, blocks=%d>", self.Header.Label(), self.Depth, len(self.blocks))
}

func (self *Loop) Contains(bb *BasicBlock) bool {
    _, ok := self.blocks[bb]
    return ok
}

// Blocks returns the blocks of the loop in function order.
func (self *Loop) Blocks() []*BasicBlock {
    ret := make([]*BasicBlock, 0, len(self.blocks))
    for _, bb := range self.Header.Parent.Blocks {
        if self.Contains(bb) {
            ret = append(ret, bb)
        }
    }
    return ret
}

// Size returns the number of blocks in the loop.
func (self *Loop) Size() int {
    return len(self.blocks)
}

// Preheader returns the only block outside the loop branching to the header,
// provided that block branches nowhere else. Otherwise it returns nil.
func (self *Loop) Preheader() *BasicBlock {
    var out *BasicBlock

    /* find the only predecessor outside of the loop */
    for _, p := range self.Header.Preds() {
        if !self.Contains(p) {
            if out != nil {
                return nil
            }
            out = p
        }
    }

    /* it must branch only to the header */
    if out == nil || len(out.Succs()) != 1 {
        return nil
    } else {
        return out
    }
}

// IsLoopInvariant reports whether v is computed outside the loop. Anything
// that is not an instruction is invariant.
func (self *Loop) IsLoopInvariant(v Value) bool {
    if ins, ok := v.(*Instr); !ok {
        return true
    } else {
        return ins.Parent == nil || !self.Contains(ins.Parent)
    }
}

// InSubloop reports whether bb belongs to one of the loops nested in this one.
func (self *Loop) InSubloop(bb *BasicBlock) bool {
    for _, sub := range self.Subloops {
        if sub.Contains(bb) {
            return true
        }
    }
    return false
}

// LoopInfo is the loop nest forest of a function.
type LoopInfo struct {
    top   []*Loop
    all   []*Loop
    owner map[*BasicBlock]*Loop
}

// BuildLoopInfo discovers the natural loops of fn. Back edges are edges whose
// target dominates their source; loops sharing a header are merged.
func BuildLoopInfo(fn *Function, dt DominatorTree) *LoopInfo {
    var hdrs []*BasicBlock
    tails := make(map[*BasicBlock][]*BasicBlock)
    reach := Reachable(fn)

    /* find back edges, in function order */
    for _, bb := range fn.Blocks {
        if reach[bb.Id] {
            for _, h := range bb.Succs() {
                if dt.Dominates(h, bb) {
                    if _, ok := tails[h]; !ok {
                        hdrs = append(hdrs, h)
                    }
                    tails[h] = append(tails[h], bb)
                }
            }
        }
    }

    /* collect the body of every loop */
    loops := make([]*Loop, 0, len(hdrs))
    for _, h := range hdrs {
        loops = append(loops, collectLoop(h, tails[h], reach))
    }

    /* build the loop nest */
    ret := &LoopInfo { owner: make(map[*BasicBlock]*Loop) }
    ret.nest(fn, loops)
    return ret
}

func collectLoop(header *BasicBlock, tails []*BasicBlock, reach map[int]bool) *Loop {
    q := lane.NewQueue()
    lp := &Loop {
        Header : header,
        blocks : map[*BasicBlock]struct{} { header: {} },
    }

    /* walk backwards from the back edges until the header */
    for _, t := range tails {
        q.Enqueue(t)
    }

    /* traverse the reversed graph with BFS */
    for !q.Empty() {
        bb := q.Dequeue().(*BasicBlock)

        /* already part of the loop */
        if lp.Contains(bb) {
            continue
        }

        /* add to the loop and scan the predecessors */
        lp.blocks[bb] = struct{}{}
        for _, p := range bb.Preds() {
            if reach[p.Id] && !lp.Contains(p) {
                q.Enqueue(p)
            }
        }
    }
    return lp
}

func (self *LoopInfo) nest(fn *Function, loops []*Loop) {
    pos := make(map[*BasicBlock]int, len(fn.Blocks))
    for i, bb := range fn.Blocks {
        pos[bb] = i
    }

    /* the parent is the smallest loop strictly containing the header */
    for _, lp := range loops {
        for _, p := range loops {
            if p != lp && p.Contains(lp.Header) && p.Size() > lp.Size() {
                if lp.Parent == nil || p.Size() < lp.Parent.Size() {
                    lp.Parent = p
                }
            }
        }
    }

    /* link the children, ordered by header position */
    sort.SliceStable(loops, func(i int, j int) bool {
        return pos[loops[i].Header] < pos[loops[j].Header]
    })

    /* build the forest */
    for _, lp := range loops {
        if lp.Parent == nil {
            self.top = append(self.top, lp)
        } else {
            lp.Parent.Subloops = append(lp.Parent.Subloops, lp)
        }
    }

    /* compute depth and the innermost-first order */
    for _, lp := range self.top {
        self.visit(lp, 1)
    }

    /* the innermost loop owning each block */
    for _, lp := range self.all {
        for bb := range lp.blocks {
            if p, ok := self.owner[bb]; !ok || p.Depth < lp.Depth {
                self.owner[bb] = lp
            }
        }
    }
}

func (self *LoopInfo) visit(lp *Loop, depth int) {
    lp.Depth = depth
    for _, sub := range lp.Subloops {
        self.visit(sub, depth + 1)
    }
    self.all = append(self.all, lp)
}

// Loops returns every loop, with subloops listed before their parents.
func (self *LoopInfo) Loops() []*Loop {
    return self.all
}

// TopLevel returns the outermost loops.
func (self *LoopInfo) TopLevel() []*Loop {
    return self.top
}

// LoopFor returns the innermost loop containing bb, or nil.
func (self *LoopInfo) LoopFor(bb *BasicBlock) *Loop {
    return self.owner[bb]
}

// InsertPreheader gives the loop a dedicated preheader when it has none. Every
// predecessor of the header outside the loop is redirected to the new block,
// which falls through to the header. The dominator tree and loop info of the
// function are stale afterwards and must be rebuilt. Returns nil when the loop
// already has a preheader or cannot be given one.
func InsertPreheader(lp *Loop) *BasicBlock {
    var outs []*BasicBlock
    hdr := lp.Header
    fn := hdr.Parent

    /* nothing to do */
    if lp.Preheader() != nil {
        return nil
    }

    /* find all the entering blocks */
    for _, p := range hdr.Preds() {
        if !lp.Contains(p) {
            outs = append(outs, p)
        }
    }

    /* unreachable loops are left alone; a header that is also the entry
     * block gets a new entry block instead */
    if len(outs) == 0 && hdr != fn.Entry() {
        return nil
    }

    /* create the preheader right before the header */
    pre := fn.NewBlockBefore(hdr.Label() + ".preheader", hdr)
    mov := make(map[*BasicBlock]bool, len(outs))

    /* redirect every entering edge */
    for _, p := range outs {
        mov[p] = true
        tr := p.Term()
        for i, t := range tr.Targets {
            if t == hdr {
                tr.Targets[i] = pre
            }
        }
    }

    /* merge the incoming values of the header phis */
    for _, ins := range hdr.Ins {
        if ins.Op == OpPhi {
            mergeIncoming(ins, pre, mov)
        }
    }

    /* fall through to the header */
    pre.Append(&Instr {
        Op      : OpBr,
        Ty      : Void,
        Targets : []*BasicBlock { hdr },
    })
    return pre
}

func mergeIncoming(phi *Instr, pre *BasicBlock, mov map[*BasicBlock]bool) {
    var keep []Value
    var from []*BasicBlock
    var vals []Value
    var srcs []*BasicBlock

    /* split the entering and the looping edges */
    for i, v := range phi.Ops {
        if mov[phi.Incoming[i]] {
            vals = append(vals, v)
            srcs = append(srcs, phi.Incoming[i])
        } else {
            keep = append(keep, v)
            from = append(from, phi.Incoming[i])
        }
    }

    /* a single entering value flows through unchanged, otherwise the
     * preheader needs its own phi */
    switch len(vals) {
        case 0: {
            return
        }
        case 1: {
            keep = append(keep, vals[0])
        }
        default: {
            np := pre.Append(&Instr {
                Op       : OpPhi,
                Name     : phi.Name + ".ph",
                Ty       : phi.Ty,
                Ops      : vals,
                Incoming : srcs,
            })
            keep = append(keep, np)
        }
    }

    /* rebuild the header phi */
    phi.Ops = keep
    phi.Incoming = append(from, pre)
}
