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
    `strconv`
)

// Value is anything an instruction can take as an operand.
type Value interface {
    fmt.Stringer
    Type() Type
    Ident() string
}

// Constant marks values that are known at compile time.
type Constant interface {
    Value
    constant()
}

func (*ConstInt)   constant() {}
func (*ConstFloat) constant() {}

type ConstInt struct {
    Ty *IntType
    V  int64
}

// Int creates an integer constant of the given type.
func Int(ty *IntType, v int64) *ConstInt {
    return &ConstInt { Ty: ty, V: v }
}

func (self *ConstInt) Type() Type {
    return self.Ty
}

func (self *ConstInt) Ident() string {
    return strconv.FormatInt(self.SExtValue(), 10)
}

func (self *ConstInt) String() string {
    return fmt.Sprintf("%s %s", self.Ty, self.Ident())
}

// ZExtValue interprets the constant as an unsigned integer of its own width.
func (self *ConstInt) ZExtValue() uint64 {
    if n := self.Ty.Bits; n >= 64 {
        return uint64(self.V)
    } else {
        return uint64(self.V) & (1 << uint(n) - 1)
    }
}

// SExtValue interprets the constant as a signed integer of its own width.
func (self *ConstInt) SExtValue() int64 {
    if n := uint(self.Ty.Bits); n >= 64 {
        return self.V
    } else {
        return self.V << (64 - n) >> (64 - n)
    }
}

type ConstFloat struct {
    Ty *FloatType
    V  float64
}

// Float creates a floating point constant of the given type.
func Float(ty *FloatType, v float64) *ConstFloat {
    return &ConstFloat { Ty: ty, V: v }
}

func (self *ConstFloat) Type() Type {
    return self.Ty
}

func (self *ConstFloat) Ident() string {
    return strconv.FormatFloat(self.V, 'g', -1, 64)
}

func (self *ConstFloat) String() string {
    return fmt.Sprintf("%s %s", self.Ty, self.Ident())
}

type Argument struct {
    Name  string
    Ty    Type
    Index int
}

func (self *Argument) Type() Type {
    return self.Ty
}

func (self *Argument) Ident() string {
    return "%" + self.Name
}

func (self *Argument) String() string {
    return fmt.Sprintf("%s %s", self.Ty, self.Ident())
}

// Global is a module level variable. Its value is always the address of the
// storage, so Ty is a pointer type.
type Global struct {
    Name string
    Ty   *PointerType
}

func (self *Global) Type() Type {
    return self.Ty
}

func (self *Global) Ident() string {
    return "@" + self.Name
}

func (self *Global) String() string {
    return fmt.Sprintf("%s %s", self.Ty, self.Ident())
}

// IsConstant reports whether v is a compile time constant.
func IsConstant(v Value) bool {
    _, ok := v.(Constant)
    return ok
}
