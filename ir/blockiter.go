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
    `github.com/oleiade/lane`
)

// DominatorOrder walks the dominator tree below root in depth-first pre-order,
// so every block is visited before the blocks it dominates. Children are
// visited in the order returned by children. When enter returns false the
// block and its whole subtree are skipped.
func DominatorOrder(
    root     *BasicBlock,
    children func(*BasicBlock) []*BasicBlock,
    enter    func(*BasicBlock) bool,
    visit    func(*BasicBlock),
) {
    s := lane.NewStack()
    s.Push(root)

    /* scan until the stack is empty */
    for !s.Empty() {
        bb := s.Pop().(*BasicBlock)

        /* pruned subtree */
        if !enter(bb) {
            continue
        }

        /* visit the block before anything it dominates */
        visit(bb)
        ch := children(bb)

        /* push in reverse so the first child is popped first */
        for i := len(ch) - 1; i >= 0; i-- {
            s.Push(ch[i])
        }
    }
}

// PreOrder lists the blocks of the dominator tree in pre-order.
func (self DominatorTree) PreOrder() []*BasicBlock {
    var ret []*BasicBlock
    if self.Root == nil {
        return nil
    }

    /* dump all the blocks */
    DominatorOrder(
        self.Root,
        self.DomChildren,
        func(*BasicBlock) bool { return true },
        func(bb *BasicBlock) { ret = append(ret, bb) },
    )
    return ret
}
