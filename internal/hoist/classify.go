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

// Classifier decides which kinds of instructions are safe to execute
// speculatively in a loop preheader. Memory reads are never hoisted, other
// threads may write the same location between iterations.
type Classifier struct {
    purity *Purity
}

func NewClassifier(purity *Purity) *Classifier {
    if purity == nil {
        purity = NewPurity()
    }
    return &Classifier { purity: purity }
}

func (self *Classifier) CanHoist(ins *ir.Instr) bool {
    switch ins.Op {
        case ir.OpLoad          : return false
        case ir.OpStore         : return false
        case ir.OpCall          : return self.purity.IsMemoryPure(ins.Callee())
        case ir.OpUDiv          : return true
        case ir.OpSDiv          : return true
        case ir.OpFDiv          : return true
        case ir.OpURem          : return true
        case ir.OpSRem          : return true
        case ir.OpZExt          : return true
        case ir.OpSExt          : return true
        case ir.OpTrunc         : return true
        case ir.OpPtrToInt      : return true
        case ir.OpFPToSI        : return true
        case ir.OpFPToUI        : return true
        default                 : return false
    }
}
