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

type Opcode uint8

const (
    OpInvalid Opcode = iota

    /* binary operators */
    OpAdd
    OpSub
    OpMul
    OpUDiv
    OpSDiv
    OpURem
    OpSRem
    OpFAdd
    OpFSub
    OpFMul
    OpFDiv
    OpFRem
    OpShl
    OpLShr
    OpAShr
    OpAnd
    OpOr
    OpXor

    /* casts */
    OpTrunc
    OpZExt
    OpSExt
    OpFPToUI
    OpFPToSI
    OpUIToFP
    OpSIToFP
    OpPtrToInt
    OpIntToPtr
    OpBitCast
    OpAddrSpaceCast

    /* memory */
    OpAlloca
    OpLoad
    OpStore
    OpGetElementPtr

    /* others */
    OpICmp
    OpFCmp
    OpPhi
    OpSelect
    OpCall

    /* terminators */
    OpBr
    OpCondBr
    OpRet
    OpUnreachable

    _OpCount
)

var _OpNames = [_OpCount]string {
    OpInvalid       : "invalid",
    OpAdd           : "add",
    OpSub           : "sub",
    OpMul           : "mul",
    OpUDiv          : "udiv",
    OpSDiv          : "sdiv",
    OpURem          : "urem",
    OpSRem          : "srem",
    OpFAdd          : "fadd",
    OpFSub          : "fsub",
    OpFMul          : "fmul",
    OpFDiv          : "fdiv",
    OpFRem          : "frem",
    OpShl           : "shl",
    OpLShr          : "lshr",
    OpAShr          : "ashr",
    OpAnd           : "and",
    OpOr            : "or",
    OpXor           : "xor",
    OpTrunc         : "trunc",
    OpZExt          : "zext",
    OpSExt          : "sext",
    OpFPToUI        : "fptoui",
    OpFPToSI        : "fptosi",
    OpUIToFP        : "uitofp",
    OpSIToFP        : "sitofp",
    OpPtrToInt      : "ptrtoint",
    OpIntToPtr      : "inttoptr",
    OpBitCast       : "bitcast",
    OpAddrSpaceCast : "addrspacecast",
    OpAlloca        : "alloca",
    OpLoad          : "load",
    OpStore         : "store",
    OpGetElementPtr : "getelementptr",
    OpICmp          : "icmp",
    OpFCmp          : "fcmp",
    OpPhi           : "phi",
    OpSelect        : "select",
    OpCall          : "call",
    OpBr            : "br",
    OpCondBr        : "condbr",
    OpRet           : "ret",
    OpUnreachable   : "unreachable",
}

func (self Opcode) String() string {
    if self < _OpCount {
        return _OpNames[self]
    } else {
        return fmt.Sprintf("op(%d)", uint8(self))
    }
}

// ParseOpcode is the inverse of Opcode.String.
func ParseOpcode(name string) (Opcode, bool) {
    for op := OpAdd; op < _OpCount; op++ {
        if _OpNames[op] == name {
            return op, true
        }
    }
    return OpInvalid, false
}

func (self Opcode) IsBinary() bool {
    return self >= OpAdd && self <= OpXor
}

func (self Opcode) IsCast() bool {
    return self >= OpTrunc && self <= OpAddrSpaceCast
}

func (self Opcode) IsTerminator() bool {
    return self >= OpBr && self <= OpUnreachable
}

type Predicate uint8

const (
    PredNone Predicate = iota
    PredEq
    PredNe
    PredUgt
    PredUge
    PredUlt
    PredUle
    PredSgt
    PredSge
    PredSlt
    PredSle
    PredOeq
    PredOne
    PredOgt
    PredOge
    PredOlt
    PredOle
    _PredCount
)

var _PredNames = [_PredCount]string {
    PredNone : "",
    PredEq   : "eq",
    PredNe   : "ne",
    PredUgt  : "ugt",
    PredUge  : "uge",
    PredUlt  : "ult",
    PredUle  : "ule",
    PredSgt  : "sgt",
    PredSge  : "sge",
    PredSlt  : "slt",
    PredSle  : "sle",
    PredOeq  : "oeq",
    PredOne  : "one",
    PredOgt  : "ogt",
    PredOge  : "oge",
    PredOlt  : "olt",
    PredOle  : "ole",
}

func (self Predicate) String() string {
    if self < _PredCount {
        return _PredNames[self]
    } else {
        return fmt.Sprintf("pred(%d)", uint8(self))
    }
}

func ParsePredicate(name string) (Predicate, bool) {
    for p := PredEq; p < _PredCount; p++ {
        if _PredNames[p] == name {
            return p, true
        }
    }
    return PredNone, false
}

// Instr is a single IR operation. An instruction is owned by exactly one
// basic block at a time, recorded in Parent.
//
// Operand conventions:
//   - OpCall: Ops[0] is the callee, Ops[1:] are the arguments.
//   - OpStore: Ops[0] is the stored value, Ops[1] the address.
//   - OpPhi: Ops[i] flows in from Incoming[i].
//   - OpBr / OpCondBr: successors are in Targets, OpCondBr's condition is Ops[0].
type Instr struct {
    Op       Opcode
    Name     string
    Ty       Type
    Ops      []Value
    Pred     Predicate
    Targets  []*BasicBlock
    Incoming []*BasicBlock
    Parent   *BasicBlock
}

func (self *Instr) Type() Type {
    if self.Ty == nil {
        return Void
    } else {
        return self.Ty
    }
}

func (self *Instr) Ident() string {
    if self.Name == "" {
        return ""
    } else {
        return "%" + self.Name
    }
}

// Operands returns every value the instruction reads.
func (self *Instr) Operands() []Value {
    return self.Ops
}

// Callee returns the statically resolved callee of a call, or nil when the
// instruction is not a call or the call is indirect.
func (self *Instr) Callee() *Function {
    if self.Op != OpCall || len(self.Ops) == 0 {
        return nil
    } else if fn, ok := self.Ops[0].(*Function); ok {
        return fn
    } else {
        return nil
    }
}

// Args returns the actual arguments of a call.
func (self *Instr) Args() []Value {
    if self.Op != OpCall || len(self.Ops) == 0 {
        return nil
    } else {
        return self.Ops[1:]
    }
}

// MoveBeforeTerm transfers the instruction from its current block into dst,
// right before dst's terminator.
func (self *Instr) MoveBeforeTerm(dst *BasicBlock) {
    term := dst.Term()

    /* the destination must be a well-formed block */
    if term == nil {
        panic(fmt.Sprintf("ir: block %s has no terminator", dst.Label()))
    }

    /* detach from the current owner */
    if self.Parent != nil {
        self.Parent.remove(self)
    }

    /* attach to the new owner */
    dst.insertBefore(self, term)
}

func (self *Instr) String() string {
    var lhs string
    var rhs string

    /* result assignment */
    if self.Name != "" {
        lhs = self.Ident() + " = "
    }

    /* format the operation */
    switch op := self.Op; {
        case op.IsBinary() : rhs = fmt.Sprintf("%s %s %s", op, self.opType(0), idents(self.Ops))
        case op.IsCast()   : rhs = fmt.Sprintf("%s %s to %s", op, operand(self.Ops, 0), self.Type())
        default            : rhs = self.format()
    }

    /* join them together */
    return lhs + rhs
}

func (self *Instr) format() string {
    switch self.Op {
        case OpAlloca        : return fmt.Sprintf("alloca %s", elemOf(self.Type()))
        case OpLoad          : return fmt.Sprintf("load %s, %s", self.Type(), operand(self.Ops, 0))
        case OpStore         : return fmt.Sprintf("store %s, %s", operand(self.Ops, 0), operand(self.Ops, 1))
        case OpGetElementPtr : return fmt.Sprintf("getelementptr %s", operands(self.Ops))
        case OpICmp          : return fmt.Sprintf("icmp %s %s %s", self.Pred, self.opType(0), idents(self.Ops))
        case OpFCmp          : return fmt.Sprintf("fcmp %s %s %s", self.Pred, self.opType(0), idents(self.Ops))
        case OpSelect        : return fmt.Sprintf("select %s", operands(self.Ops))
        case OpPhi           : return self.formatPhi()
        case OpCall          : return self.formatCall()
        case OpBr            : return fmt.Sprintf("br label %s", blockRef(self.Targets, 0))
        case OpCondBr        : return fmt.Sprintf("br %s, label %s, label %s", operand(self.Ops, 0), blockRef(self.Targets, 0), blockRef(self.Targets, 1))
        case OpUnreachable   : return "unreachable"
        case OpRet: {
            if len(self.Ops) == 0 {
                return "ret void"
            } else {
                return "ret " + typed(self.Ops[0])
            }
        }
        default: {
            return fmt.Sprintf("%s %s", self.Op, operands(self.Ops))
        }
    }
}

func (self *Instr) formatPhi() string {
    ret := make([]string, 0, len(self.Ops))
    for i, v := range self.Ops {
        ret = append(ret, fmt.Sprintf("[ %s, %s ]", v.Ident(), blockRef(self.Incoming, i)))
    }
    return fmt.Sprintf("phi %s %s", self.Type(), strings.Join(ret, ", "))
}

func (self *Instr) formatCall() string {
    var fn string
    if len(self.Ops) != 0 {
        fn = self.Ops[0].Ident()
    }
    return fmt.Sprintf("call %s %s(%s)", self.Type(), fn, operands(self.Args()))
}

func (self *Instr) opType(i int) string {
    if i < len(self.Ops) {
        return self.Ops[i].Type().String()
    } else {
        return "?"
    }
}

func elemOf(t Type) Type {
    if p, ok := t.(*PointerType); ok {
        return p.Elem
    } else {
        return t
    }
}

// typed formats an operand reference as "<type> <ident>".
func typed(v Value) string {
    return v.Type().String() + " " + v.Ident()
}

func operand(ops []Value, i int) string {
    if i < len(ops) {
        return typed(ops[i])
    } else {
        return "<missing>"
    }
}

func operands(ops []Value) string {
    ret := make([]string, 0, len(ops))
    for _, v := range ops {
        ret = append(ret, typed(v))
    }
    return strings.Join(ret, ", ")
}

func idents(ops []Value) string {
    ret := make([]string, 0, len(ops))
    for _, v := range ops {
        ret = append(ret, v.Ident())
    }
    return strings.Join(ret, ", ")
}

func blockRef(bbs []*BasicBlock, i int) string {
    if i < len(bbs) {
        return "%" + bbs[i].Label()
    } else {
        return "<missing>"
    }
}
