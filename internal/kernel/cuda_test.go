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
    `fmt`
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
    `github.com/cloudwego/kernopt/ir`
)

type _CUDAModule struct {
    m        *ir.Module
    vec      *ir.StructType
    blockDim *ir.Global
    gridDim  *ir.Global
    markers  int
}

func newCUDAModule() *_CUDAModule {
    m := ir.NewModule("cuda")
    vec := ir.Vector3(_CUDAVectorType, ir.I32)
    return &_CUDAModule {
        m        : m,
        vec      : vec,
        blockDim : m.AddGlobal(&ir.Global { Name: "blockDim", Ty: &ir.PointerType { Elem: vec, AddrSpace: 4 } }),
        gridDim  : m.AddGlobal(&ir.Global { Name: "gridDim", Ty: &ir.PointerType { Elem: vec, AddrSpace: 4 } }),
    }
}

func (self *_CUDAModule) axiom(src ir.Value, axis int64, size int64) *ir.Function {
    fn := self.m.AddFunction(ir.NewFunction(fmt.Sprintf("%s_%d", AxiomPrefix, self.markers), ir.I1))
    p := ir.CreateBuilder(fn)
    p.Label("entry")
    cast := p.Cast(ir.OpAddrSpaceCast, "p", src, ir.PointerTo(self.vec))
    gep := p.GEP("f", ir.PointerTo(ir.I32), cast, ir.Int(ir.I32, 0), ir.Int(ir.I32, axis))
    val := p.Load("n", ir.I32, gep)
    p.Ret(p.ICmp("c", ir.PredEq, val, ir.Int(ir.I32, size)))
    self.markers++
    return fn
}

func TestExtract_CUDA(t *testing.T) {
    cm := newCUDAModule()
    for i := int64(0); i < 3; i++ {
        cm.axiom(cm.blockDim, i, 32 << i)
        cm.axiom(cm.gridDim, i, 100 + i)
    }

    kd, err := ExtractDimensions(cm.m, CUDA)
    require.NoError(t, err)
    require.Equal(t, "local=(32, 64, 128) group=(100, 101, 102) bits=32", kd.String())

    /* OpenCL does not understand the CUDA idiom */
    _, err = ExtractDimensions(cm.m, OpenCL)
    require.Error(t, err)
}

func TestExtract_CUDAStrict(t *testing.T) {
    cm := newCUDAModule()
    other := cm.m.AddGlobal(&ir.Global { Name: "threadIdx", Ty: &ir.PointerType { Elem: cm.vec, AddrSpace: 4 } })
    plain := cm.m.AddGlobal(&ir.Global { Name: "blockDim2", Ty: ir.PointerTo(ir.Vector3("struct.dim3", ir.I32)) })
    cases := map[string]*ir.Function {
        "other builtin"   : cm.axiom(other, 0, 1),
        "other struct"    : cm.axiom(plain, 0, 1),
        "axis 3"          : cm.axiom(cm.blockDim, 3, 1),
    }

    /* first index not zero */
    nz := cm.axiom(cm.blockDim, 0, 1)
    nz.Blocks[0].Ins[1].Ops[1] = ir.Int(ir.I32, 1)
    cases["non zero index"] = nz

    /* an extra index */
    ei := cm.axiom(cm.blockDim, 0, 1)
    ei.Blocks[0].Ins[1].Ops = append(ei.Blocks[0].Ins[1].Ops, ir.Int(ir.I32, 0))
    cases["extra index"] = ei

    /* load from somewhere else */
    ls := cm.axiom(cm.blockDim, 0, 1)
    ls.Blocks[0].Ins[2].Ops[0] = ls.Blocks[0].Ins[0]
    cases["load elsewhere"] = ls

    /* signed compare */
    sc := cm.axiom(cm.blockDim, 0, 1)
    sc.Blocks[0].Ins[3].Pred = ir.PredSge
    cases["signed compare"] = sc

    for name, fn := range cases {
        _, ok := matchCUDA(fn)
        assert.False(t, ok, name)
    }

    /* sanity check on the untouched builder output */
    ax, ok := matchCUDA(cm.axiom(cm.gridDim, 1, 7))
    require.True(t, ok)
    require.Equal(t, RoleGroup, ax.role)
    require.Equal(t, 1, ax.axis)
    require.Equal(t, int64(7), ax.value.SExtValue())
}

func TestIsEntryPoint(t *testing.T) {
    m := ir.NewModule("kernels")
    k1 := m.AddFunction(ir.NewFunction("k1", ir.Void))
    k2 := m.AddFunction(ir.NewFunction("k2", ir.Void))
    dev := m.AddFunction(ir.NewFunction("dev", ir.Void))
    m.AddNamedMD(OpenCLKernels, &ir.MDValue { V: k1 })
    m.AddNamedMD(CUDAAnnotations, &ir.MDValue { V: k2 }, ir.MDString("maxntidx"), &ir.MDValue { V: ir.Int(ir.I32, 256) }, ir.MDString("kernel"), &ir.MDValue { V: ir.Int(ir.I32, 1) })
    m.AddNamedMD(CUDAAnnotations, &ir.MDValue { V: dev }, &ir.MDValue { V: ir.Int(ir.I32, 1) }, ir.MDString("kernel"))
    m.AddNamedMD(CUDAAnnotations)

    /* every table is only consulted for its own dialect */
    assert.True(t, IsEntryPoint(k1, m, OpenCL))
    assert.False(t, IsEntryPoint(k1, m, CUDA))
    assert.True(t, IsEntryPoint(k2, m, CUDA))
    assert.False(t, IsEntryPoint(k2, m, OpenCL))
    assert.False(t, IsEntryPoint(k1, m, C))
    assert.False(t, IsEntryPoint(k2, m, C))

    /* the tag must sit at an odd position */
    assert.False(t, IsEntryPoint(dev, m, CUDA))

    assert.Equal(t, []*ir.Function { k2 }, EntryPoints(m, CUDA))
    assert.Equal(t, []*ir.Function { k1 }, EntryPoints(m, OpenCL))
    assert.Empty(t, EntryPoints(ir.NewModule("none"), OpenCL))
}
