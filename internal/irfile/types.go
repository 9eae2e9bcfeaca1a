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

package irfile

import (
    `fmt`
    `strconv`
    `strings`

    `github.com/cloudwego/kernopt/ir`
)

type _TypeParser struct {
    structs map[string]*ir.StructType
}

func newTypeParser() *_TypeParser {
    return &_TypeParser {
        structs: make(map[string]*ir.StructType),
    }
}

// parse understands iN, float, double, void, label, %name and the pointer
// suffixes "*" and " addrspace(N)*".
func (self *_TypeParser) parse(src string) (ir.Type, error) {
    src = strings.TrimSpace(src)
    if src == "" {
        return nil, fmt.Errorf("empty type")
    }

    /* pointer types */
    if strings.HasSuffix(src, "*") {
        return self.parsePointer(src[:len(src) - 1])
    }

    /* named struct types */
    if strings.HasPrefix(src, "%") {
        return self.named(src[1:]), nil
    }

    /* primitive types */
    switch src {
        case "void"   : return ir.Void, nil
        case "label"  : return ir.Label, nil
        case "float"  : return ir.F32, nil
        case "double" : return ir.F64, nil
    }

    /* integer types */
    if src[0] != 'i' {
        return nil, fmt.Errorf("unknown type %q", src)
    } else if n, err := strconv.Atoi(src[1:]); err != nil || n <= 0 || n > 64 {
        return nil, fmt.Errorf("invalid integer type %q", src)
    } else {
        return intType(n), nil
    }
}

func (self *_TypeParser) parsePointer(src string) (ir.Type, error) {
    as := 0
    src = strings.TrimSpace(src)

    /* explicit address space */
    if i := strings.LastIndex(src, " addrspace("); i >= 0 && strings.HasSuffix(src, ")") {
        v, err := strconv.Atoi(src[i + 11:len(src) - 1])
        if err != nil || v < 0 {
            return nil, fmt.Errorf("invalid address space in %q", src)
        }
        as, src = v, src[:i]
    }

    /* the pointee */
    elem, err := self.parse(src)
    if err != nil {
        return nil, err
    } else {
        return &ir.PointerType { Elem: elem, AddrSpace: as }, nil
    }
}

func (self *_TypeParser) named(name string) *ir.StructType {
    if st, ok := self.structs[name]; ok {
        return st
    }

    /* the builtin CUDA vectors are known to have three fields */
    st := &ir.StructType { Name: name }
    if name == "struct._3DimensionalVector" {
        st.Fields = []ir.Type { ir.I32, ir.I32, ir.I32 }
    }

    /* remember for later references */
    self.structs[name] = st
    return st
}

func intType(n int) *ir.IntType {
    switch n {
        case 1  : return ir.I1
        case 8  : return ir.I8
        case 16 : return ir.I16
        case 32 : return ir.I32
        case 64 : return ir.I64
        default : return &ir.IntType { Bits: n }
    }
}
