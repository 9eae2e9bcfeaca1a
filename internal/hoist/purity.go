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
    `github.com/cloudwego/kernopt/ir`
)

// Purity decides whether functions access memory, directly or through the
// functions they call. Results are memoised per function.
type Purity struct {
    memo map[*ir.Function]bool
    busy map[*ir.Function]bool
}

func NewPurity() *Purity {
    return &Purity {
        memo: make(map[*ir.Function]bool),
        busy: make(map[*ir.Function]bool),
    }
}

// IsMemoryPure reports whether fn neither loads nor stores, and only calls
// functions that are memory pure themselves. Debug info intrinsics are
// ignored. Declarations, indirect calls and recursive call cycles make a
// function impure.
func (self *Purity) IsMemoryPure(fn *ir.Function) bool {
    if fn == nil || fn.IsDeclaration() {
        return false
    }

    /* already decided */
    if ret, ok := self.memo[fn]; ok {
        return ret
    }

    /* reached again while still being analyzed */
    if self.busy[fn] {
        return false
    }

    /* analyze the body, a cycle only ever yields false so every
     * result is final once computed */
    self.busy[fn] = true
    ret := self.analyze(fn)
    delete(self.busy, fn)
    self.memo[fn] = ret
    return ret
}

func (self *Purity) analyze(fn *ir.Function) bool {
    for _, ins := range fn.Instructions() {
        switch ins.Op {
            case ir.OpLoad  : return false
            case ir.OpStore : return false
            case ir.OpCall  : break
            default         : continue
        }

        /* indirect calls may go anywhere */
        callee := ins.Callee()
        if callee == nil {
            return false
        }

        /* debug intrinsics never touch program memory */
        if callee.Intrinsic.IsDebugInfo() {
            continue
        }

        /* closing a cycle makes every function on it impure */
        if self.busy[callee] {
            return false
        }

        /* the callee must be pure as well */
        if !self.IsMemoryPure(callee) {
            return false
        }
    }
    return true
}
