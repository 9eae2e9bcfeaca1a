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

// Builder appends instructions to the current block of a function.
type Builder struct {
    i  int
    fn *Function
    bb *BasicBlock
}

func CreateBuilder(fn *Function) *Builder {
    return &Builder { fn: fn }
}

func (self *Builder) Func() *Function {
    return self.fn
}

func (self *Builder) Block() *BasicBlock {
    return self.bb
}

// Label creates a new block and makes it the insertion point.
func (self *Builder) Label(name string) *BasicBlock {
    self.bb = self.fn.NewBlock(name)
    return self.bb
}

// SetBlock moves the insertion point to the end of bb.
func (self *Builder) SetBlock(bb *BasicBlock) {
    self.bb = bb
}

func (self *Builder) add(p *Instr) *Instr {
    if self.bb == nil {
        panic("ir: builder has no insertion block")
    }

    /* give every value producing instruction a name */
    if _, void := p.Type().(*VoidType); p.Name == "" && !void {
        p.Name = fmt.Sprintf("t%d", self.i)
        self.i++
    }

    /* add to the current block */
    return self.bb.Append(p)
}

func (self *Builder) Binary(op Opcode, name string, x Value, y Value) *Instr {
    if !op.IsBinary() {
        panic("ir: not a binary operator: " + op.String())
    }
    return self.add(&Instr {
        Op   : op,
        Name : name,
        Ty   : x.Type(),
        Ops  : []Value { x, y },
    })
}

func (self *Builder) Cast(op Opcode, name string, v Value, ty Type) *Instr {
    if !op.IsCast() {
        panic("ir: not a cast operator: " + op.String())
    }
    return self.add(&Instr {
        Op   : op,
        Name : name,
        Ty   : ty,
        Ops  : []Value { v },
    })
}

func (self *Builder) Alloca(name string, ty Type) *Instr {
    return self.add(&Instr {
        Op   : OpAlloca,
        Name : name,
        Ty   : PointerTo(ty),
    })
}

func (self *Builder) Load(name string, ty Type, ptr Value) *Instr {
    return self.add(&Instr {
        Op   : OpLoad,
        Name : name,
        Ty   : ty,
        Ops  : []Value { ptr },
    })
}

func (self *Builder) Store(v Value, ptr Value) *Instr {
    return self.add(&Instr {
        Op  : OpStore,
        Ty  : Void,
        Ops : []Value { v, ptr },
    })
}

// GEP computes an address; ty is the type of the resulting pointer.
func (self *Builder) GEP(name string, ty Type, base Value, indices ...Value) *Instr {
    return self.add(&Instr {
        Op   : OpGetElementPtr,
        Name : name,
        Ty   : ty,
        Ops  : append([]Value { base }, indices...),
    })
}

func (self *Builder) ICmp(name string, pred Predicate, x Value, y Value) *Instr {
    return self.add(&Instr {
        Op   : OpICmp,
        Name : name,
        Ty   : I1,
        Pred : pred,
        Ops  : []Value { x, y },
    })
}

func (self *Builder) FCmp(name string, pred Predicate, x Value, y Value) *Instr {
    return self.add(&Instr {
        Op   : OpFCmp,
        Name : name,
        Ty   : I1,
        Pred : pred,
        Ops  : []Value { x, y },
    })
}

func (self *Builder) Select(name string, c Value, x Value, y Value) *Instr {
    return self.add(&Instr {
        Op   : OpSelect,
        Name : name,
        Ty   : x.Type(),
        Ops  : []Value { c, x, y },
    })
}

func (self *Builder) Phi(name string, ty Type) *Instr {
    return self.add(&Instr {
        Op   : OpPhi,
        Name : name,
        Ty   : ty,
    })
}

// AddIncoming adds a (value, predecessor) pair to a phi node.
func AddIncoming(phi *Instr, v Value, from *BasicBlock) {
    if phi.Op != OpPhi {
        panic("ir: not a phi node")
    }
    phi.Ops = append(phi.Ops, v)
    phi.Incoming = append(phi.Incoming, from)
}

// Call emits a direct call to fn.
func (self *Builder) Call(name string, fn *Function, args ...Value) *Instr {
    return self.CallValue(name, fn.Ret, fn, args...)
}

// CallValue emits a call through an arbitrary callee value; calls through
// anything other than a *Function are indirect.
func (self *Builder) CallValue(name string, ret Type, callee Value, args ...Value) *Instr {
    return self.add(&Instr {
        Op   : OpCall,
        Name : name,
        Ty   : ret,
        Ops  : append([]Value { callee }, args...),
    })
}

func (self *Builder) Br(to *BasicBlock) *Instr {
    return self.add(&Instr {
        Op      : OpBr,
        Ty      : Void,
        Targets : []*BasicBlock { to },
    })
}

func (self *Builder) CondBr(c Value, t *BasicBlock, f *BasicBlock) *Instr {
    return self.add(&Instr {
        Op      : OpCondBr,
        Ty      : Void,
        Ops     : []Value { c },
        Targets : []*BasicBlock { t, f },
    })
}

func (self *Builder) Ret(v ...Value) *Instr {
    if len(v) > 1 {
        panic("ir: ret takes at most one value")
    }
    return self.add(&Instr {
        Op  : OpRet,
        Ty  : Void,
        Ops : v,
    })
}

func (self *Builder) Unreachable() *Instr {
    return self.add(&Instr {
        Op : OpUnreachable,
        Ty : Void,
    })
}
