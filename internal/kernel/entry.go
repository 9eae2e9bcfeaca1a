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
    `github.com/cloudwego/kernopt/ir`
)

const (
    CUDAAnnotations = "nvvm.annotations"
    OpenCLKernels   = "opencl.kernels"
)

// IsEntryPoint reports whether fn is annotated as a GPU kernel in m. Each
// dialect only consults its own metadata table.
func IsEntryPoint(fn *ir.Function, m *ir.Module, dialect Dialect) bool {
    switch dialect {
        case CUDA   : return isCUDAKernel(fn, m.NamedMD(CUDAAnnotations))
        case OpenCL : return isOpenCLKernel(fn, m.NamedMD(OpenCLKernels))
        default     : return false
    }
}

func isCUDAKernel(fn *ir.Function, md *ir.NamedMD) bool {
    if md == nil {
        return false
    }

    /* annotations come in (tag, value) pairs after the annotated function */
    for _, nd := range md.Nodes {
        if nd.References(fn) {
            for i := 1; i < len(nd.Ops); i += 2 {
                if tag, ok := nd.Ops[i].(ir.MDString); ok && tag == "kernel" {
                    return true
                }
            }
        }
    }
    return false
}

func isOpenCLKernel(fn *ir.Function, md *ir.NamedMD) bool {
    if md == nil {
        return false
    }

    /* any node naming the function */
    for _, nd := range md.Nodes {
        if nd.References(fn) {
            return true
        }
    }
    return false
}

// EntryPoints lists the kernels of m in module order.
func EntryPoints(m *ir.Module, dialect Dialect) []*ir.Function {
    var ret []*ir.Function
    for _, fn := range m.Functions {
        if IsEntryPoint(fn, m, dialect) {
            ret = append(ret, fn)
        }
    }
    return ret
}
