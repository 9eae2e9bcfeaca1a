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
    `strings`
)

type Intrinsic uint8

const (
    IntrinsicNone Intrinsic = iota
    IntrinsicDbgValue
    IntrinsicDbgDeclare
)

var _Intrinsics = map[string]Intrinsic {
    "llvm.dbg.value"   : IntrinsicDbgValue,
    "llvm.dbg.declare" : IntrinsicDbgDeclare,
}

// IntrinsicOf maps a function name to the intrinsic it denotes.
func IntrinsicOf(name string) Intrinsic {
    return _Intrinsics[name]
}

// IsDebugInfo reports whether the intrinsic only annotates debug information.
func (self Intrinsic) IsDebugInfo() bool {
    return self == IntrinsicDbgValue || self == IntrinsicDbgDeclare
}

type Function struct {
    Name      string
    Ret       Type
    Params    []*Argument
    Blocks    []*BasicBlock
    Intrinsic Intrinsic
    nextid    int
}

// NewFunction creates a function without a body, that is, a declaration.
func NewFunction(name string, ret Type, params ...*Argument) *Function {
    for i, p := range params {
        p.Index = i
    }
    return &Function {
        Name      : name,
        Ret       : ret,
        Params    : params,
        Intrinsic : IntrinsicOf(name),
    }
}

func (self *Function) Type() Type {
    ret := &FuncType {
        Ret    : self.Ret,
        Params : make([]Type, 0, len(self.Params)),
    }

    /* add every parameter */
    for _, p := range self.Params {
        ret.Params = append(ret.Params, p.Ty)
    }

    /* functions are referenced by address */
    return PointerTo(ret)
}

func (self *Function) Ident() string {
    return "@" + self.Name
}

func (self *Function) IsDeclaration() bool {
    return len(self.Blocks) == 0
}

func (self *Function) Entry() *BasicBlock {
    if len(self.Blocks) == 0 {
        return nil
    } else {
        return self.Blocks[0]
    }
}

// Param looks up a parameter by name.
func (self *Function) Param(name string) *Argument {
    for _, p := range self.Params {
        if p.Name == name {
            return p
        }
    }
    return nil
}

// Block looks up a basic block by name.
func (self *Function) Block(name string) *BasicBlock {
    for _, bb := range self.Blocks {
        if bb.Name == name {
            return bb
        }
    }
    return nil
}

// MaxBlock returns the largest block ID ever handed out by this function.
func (self *Function) MaxBlock() int {
    return self.nextid
}

func (self *Function) newBlock(name string) *BasicBlock {
    self.nextid++
    return &BasicBlock {
        Id     : self.nextid,
        Name   : name,
        Parent : self,
    }
}

// NewBlock appends an empty basic block to the function.
func (self *Function) NewBlock(name string) *BasicBlock {
    bb := self.newBlock(name)
    self.Blocks = append(self.Blocks, bb)
    return bb
}

// NewBlockBefore inserts an empty basic block right before pos in block order.
func (self *Function) NewBlockBefore(name string, pos *BasicBlock) *BasicBlock {
    bb := self.newBlock(name)
    for i, p := range self.Blocks {
        if p == pos {
            self.Blocks = append(self.Blocks, nil)
            copy(self.Blocks[i + 1:], self.Blocks[i:])
            self.Blocks[i] = bb
            return bb
        }
    }
    panic(fmt.Sprintf("ir: block %s does not belong to %s", pos.Label(), self.Name))
}

// Instructions returns every instruction of the function in block order.
func (self *Function) Instructions() []*Instr {
    var ret []*Instr
    for _, bb := range self.Blocks {
        ret = append(ret, bb.Ins...)
    }
    return ret
}

func (self *Function) String() string {
    args := make([]string, 0, len(self.Params))
    for _, p := range self.Params {
        args = append(args, p.String())
    }

    /* declarations have no body */
    if self.IsDeclaration() {
        return fmt.Sprintf("declare %s @%s(%s)", self.Ret, self.Name, strings.Join(args, ", "))
    } else {
        return fmt.Sprintf("define %s @%s(%s)", self.Ret, self.Name, strings.Join(args, ", "))
    }
}
