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

package kernel

import (
    `strings`
    `sync/atomic`

    `github.com/cloudwego/kernopt/internal/utils`
    `github.com/cloudwego/kernopt/ir`
)

// AxiomPrefix marks the functions the front-end generates to state facts
// about the launch geometry. They carry no program semantics and are
// expected to be removed before the module is emitted, see StripMarkers.
const AxiomPrefix = "__axiom"

// ExitUnsupportedDimension is the process exit status drivers use when the
// launch geometry cannot be determined.
const ExitUnsupportedDimension = 111

const (
    RoleLocal = "local"
    RoleGroup = "group"
)

const (
    _CUDAVectorType = "struct._3DimensionalVector"
)

var (
    CandidateCount uint64 = 0
    MatchCount     uint64 = 0
)

// DimensionError reports the first launch dimension that is missing or not
// strictly positive.
type DimensionError = utils.DimensionError

type _Axiom struct {
    role  string
    axis  int
    value *ir.ConstInt
}

// IsAxiom reports whether fn is a geometry marker.
func IsAxiom(fn *ir.Function) bool {
    return strings.HasPrefix(fn.Name, AxiomPrefix)
}

// ExtractDimensions recovers the launch geometry stated by the marker
// functions of m. Markers that do not follow the idiom of the dialect exactly
// are ignored; when several markers state the same dimension the last one
// wins. A *DimensionError is returned when any of the six dimensions is
// missing or not strictly positive.
func ExtractDimensions(m *ir.Module, dialect Dialect) (KernelDimensions, error) {
    var kd KernelDimensions
    var match func(*ir.Function) (_Axiom, bool)

    /* select the idiom */
    switch dialect {
        case CUDA   : match = matchCUDA
        case OpenCL : match = matchOpenCL
        case C      : return kd, ErrNoKernelDialect
        default     : return kd, ErrUnknownDialect
    }

    /* scan every marker */
    for _, fn := range m.Functions {
        if !IsAxiom(fn) {
            continue
        }

        /* try to match the idiom */
        atomic.AddUint64(&CandidateCount, 1)
        ax, ok := match(fn)
        if !ok {
            continue
        }

        /* record the dimension */
        atomic.AddUint64(&MatchCount, 1)
        kd.BitWidth = ax.value.Ty.Bits
        if ax.role == RoleLocal {
            kd.Local[ax.axis] = ax.value
        } else {
            kd.Group[ax.axis] = ax.value
        }
    }

    /* every dimension must be known and positive */
    return kd, validate(kd)
}

func validate(kd KernelDimensions) error {
    for i := 0; i < NumAxes; i++ {
        if !isPositive(kd.Local[i]) {
            return utils.EDimension(RoleLocal, i)
        }
        if !isPositive(kd.Group[i]) {
            return utils.EDimension(RoleGroup, i)
        }
    }
    return nil
}

func isPositive(v *ir.ConstInt) bool {
    return v != nil && v.SExtValue() > 0
}

func constOf(v ir.Value) (*ir.ConstInt, bool) {
    ret, ok := v.(*ir.ConstInt)
    return ret, ok
}

func nameOf(v ir.Value) string {
    switch p := v.(type) {
        case *ir.Global   : return p.Name
        case *ir.Argument : return p.Name
        case *ir.Instr    : return p.Name
        default           : return ""
    }
}

// matchCompare matches "icmp eq <v>, <const>" followed by the return, and
// yields the constant.
func matchCompare(ins []*ir.Instr, v ir.Value) (*ir.ConstInt, bool) {
    if len(ins) != 2 {
        return nil, false
    }

    /* equality against a constant */
    cmp := ins[0]
    if cmp.Op != ir.OpICmp || cmp.Pred != ir.PredEq || len(cmp.Ops) != 2 || cmp.Ops[0] != v {
        return nil, false
    }

    /* which must be an integer constant */
    val, ok := constOf(cmp.Ops[1])
    if !ok || ins[1].Op != ir.OpRet {
        return nil, false
    } else {
        return val, true
    }
}

// matchOpenCL matches the size query idiom:
//
//   %n = call i64 @get_local_size(i32 <axis>)     ; or @get_num_groups
//   %c = icmp eq i64 %n, <size>
//   ret i1 %c
func matchOpenCL(fn *ir.Function) (_Axiom, bool) {
    var role string
    if len(fn.Blocks) != 1 || len(fn.Blocks[0].Ins) != 3 {
        return _Axiom{}, false
    }

    /* a direct call to one of the size queries */
    ins := fn.Blocks[0].Ins
    callee := ins[0].Callee()
    if callee == nil {
        return _Axiom{}, false
    }

    /* which one */
    switch callee.Name {
        case "get_local_size" : role = RoleLocal
        case "get_num_groups" : role = RoleGroup
        default               : return _Axiom{}, false
    }

    /* a single constant axis */
    args := ins[0].Args()
    if len(args) != 1 {
        return _Axiom{}, false
    }

    /* within the supported axes */
    axis, ok := constOf(args[0])
    if !ok || axis.ZExtValue() >= NumAxes {
        return _Axiom{}, false
    }

    /* compared against the size */
    if val, ok := matchCompare(ins[1:], ins[0]); !ok {
        return _Axiom{}, false
    } else {
        return _Axiom { role: role, axis: int(axis.ZExtValue()), value: val }, true
    }
}

// matchCUDA matches the field access idiom:
//
//   %p = addrspacecast %struct._3DimensionalVector addrspace(4)* @blockDim to %struct._3DimensionalVector*
//   %f = getelementptr %struct._3DimensionalVector* %p, i32 0, i32 <axis>
//   %n = load i32, i32* %f
//   %c = icmp eq i32 %n, <size>
//   ret i1 %c
//
// with @gridDim in place of @blockDim for the number of groups.
func matchCUDA(fn *ir.Function) (_Axiom, bool) {
    var role string
    if len(fn.Blocks) != 1 || len(fn.Blocks[0].Ins) != 5 {
        return _Axiom{}, false
    }

    /* cast of one of the builtin vectors */
    ins := fn.Blocks[0].Ins
    cast := ins[0]
    if cast.Op != ir.OpAddrSpaceCast || len(cast.Ops) != 1 || !ir.IsStructPointer(cast.Ops[0].Type(), _CUDAVectorType) {
        return _Axiom{}, false
    }

    /* which one */
    switch nameOf(cast.Ops[0]) {
        case "blockDim" : role = RoleLocal
        case "gridDim"  : role = RoleGroup
        default         : return _Axiom{}, false
    }

    /* the address of one of its fields */
    gep := ins[1]
    if gep.Op != ir.OpGetElementPtr || len(gep.Ops) != 3 || gep.Ops[0] != cast {
        return _Axiom{}, false
    }

    /* the first index must be 0 */
    if idx, ok := constOf(gep.Ops[1]); !ok || idx.ZExtValue() != 0 {
        return _Axiom{}, false
    }

    /* the second one selects the axis */
    axis, ok := constOf(gep.Ops[2])
    if !ok || axis.ZExtValue() >= NumAxes {
        return _Axiom{}, false
    }

    /* read the field */
    load := ins[2]
    if load.Op != ir.OpLoad || len(load.Ops) != 1 || load.Ops[0] != gep {
        return _Axiom{}, false
    }

    /* compared against the size */
    if val, ok := matchCompare(ins[3:], load); !ok {
        return _Axiom{}, false
    } else {
        return _Axiom { role: role, axis: int(axis.ZExtValue()), value: val }, true
    }
}

// StripMarkers removes every geometry marker from m and returns how many
// were removed.
func StripMarkers(m *ir.Module) int {
    var axioms []*ir.Function
    for _, fn := range m.Functions {
        if IsAxiom(fn) {
            axioms = append(axioms, fn)
        }
    }

    /* remove them in a separate pass, RemoveFunction rewrites the list */
    for _, fn := range axioms {
        m.RemoveFunction(fn)
    }
    return len(axioms)
}
