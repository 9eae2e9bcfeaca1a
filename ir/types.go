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

type Type interface {
    fmt.Stringer
    irtype()
}

func (*IntType)     irtype() {}
func (*FloatType)   irtype() {}
func (*PointerType) irtype() {}
func (*StructType)  irtype() {}
func (*VoidType)    irtype() {}
func (*LabelType)   irtype() {}
func (*FuncType)    irtype() {}

type IntType struct {
    Bits int
}

func (self *IntType) String() string {
    return fmt.Sprintf("i%d", self.Bits)
}

type FloatType struct {
    Bits int
}

func (self *FloatType) String() string {
    switch self.Bits {
        case 32 : return "float"
        case 64 : return "double"
        default : return fmt.Sprintf("f%d", self.Bits)
    }
}

type PointerType struct {
    Elem      Type
    AddrSpace int
}

func (self *PointerType) String() string {
    if self.AddrSpace == 0 {
        return self.Elem.String() + "*"
    } else {
        return fmt.Sprintf("%s addrspace(%d)*", self.Elem, self.AddrSpace)
    }
}

// StructType is a named aggregate. Only the name takes part in type identity.
type StructType struct {
    Name   string
    Fields []Type
}

func (self *StructType) String() string {
    if self.Name != "" {
        return "%" + self.Name
    }

    /* literal struct */
    buf := make([]string, 0, len(self.Fields))
    for _, f := range self.Fields {
        buf = append(buf, f.String())
    }

    /* join them together */
    return fmt.Sprintf("{ %s }", strings.Join(buf, ", "))
}

type VoidType struct{}

func (*VoidType) String() string {
    return "void"
}

type LabelType struct{}

func (*LabelType) String() string {
    return "label"
}

type FuncType struct {
    Ret    Type
    Params []Type
}

func (self *FuncType) String() string {
    buf := make([]string, 0, len(self.Params))
    for _, p := range self.Params {
        buf = append(buf, p.String())
    }
    return fmt.Sprintf("%s (%s)", self.Ret, strings.Join(buf, ", "))
}

var (
    I1    = &IntType   { Bits: 1 }
    I8    = &IntType   { Bits: 8 }
    I16   = &IntType   { Bits: 16 }
    I32   = &IntType   { Bits: 32 }
    I64   = &IntType   { Bits: 64 }
    F32   = &FloatType { Bits: 32 }
    F64   = &FloatType { Bits: 64 }
    Void  = &VoidType  {}
    Label = &LabelType {}
)

// PointerTo returns a pointer type in the default address space.
func PointerTo(elem Type) *PointerType {
    return &PointerType { Elem: elem }
}

// IsStructPointer reports whether t points at a struct named name.
func IsStructPointer(t Type, name string) bool {
    if p, ok := t.(*PointerType); !ok {
        return false
    } else if st, ok := p.Elem.(*StructType); !ok {
        return false
    } else {
        return st.Name == name
    }
}

// Vector3 is the layout the CUDA front-end gives blockDim / gridDim.
func Vector3(name string, elem Type) *StructType {
    return &StructType {
        Name   : name,
        Fields : []Type { elem, elem, elem },
    }
}
