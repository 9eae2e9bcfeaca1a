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
    `errors`
    `fmt`
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
    `github.com/cloudwego/kernopt/ir`
)

type _OpenCLModule struct {
    m         *ir.Module
    localSize *ir.Function
    numGroups *ir.Function
    markers   int
}

func newOpenCLModule() *_OpenCLModule {
    m := ir.NewModule("ocl")
    return &_OpenCLModule {
        m         : m,
        localSize : m.AddFunction(ir.NewFunction("get_local_size", ir.I64, &ir.Argument { Name: "dim", Ty: ir.I32 })),
        numGroups : m.AddFunction(ir.NewFunction("get_num_groups", ir.I64, &ir.Argument { Name: "dim", Ty: ir.I32 })),
    }
}

// axiom adds "__axiom_N() { n = call query(axis); c = icmp eq n, size; ret c }",
// extra is emitted between the call and the compare when not nil.
func (self *_OpenCLModule) axiom(query *ir.Function, axis int64, size *ir.ConstInt, extra func(p *ir.Builder)) *ir.Function {
    fn := self.m.AddFunction(ir.NewFunction(fmt.Sprintf("%s_%d", AxiomPrefix, self.markers), ir.I1))
    p := ir.CreateBuilder(fn)
    p.Label("entry")
    n := p.Call("n", query, ir.Int(ir.I32, axis))
    if extra != nil {
        extra(p)
    }
    p.Ret(p.ICmp("c", ir.PredEq, n, size))
    self.markers++
    return fn
}

func (self *_OpenCLModule) complete(bits int, local [3]int64, group [3]int64) {
    ty := &ir.IntType { Bits: bits }
    for i := 0; i < 3; i++ {
        self.axiom(self.localSize, int64(i), ir.Int(ty, local[i]), nil)
        self.axiom(self.numGroups, int64(i), ir.Int(ty, group[i]), nil)
    }
}

func TestExtract_OpenCLLocalSize(t *testing.T) {
    om := newOpenCLModule()
    om.complete(64, [3]int64 { 1, 1, 1 }, [3]int64 { 1, 1, 1 })
    om.axiom(om.localSize, 1, ir.Int(ir.I32, 256), nil)

    kd, err := ExtractDimensions(om.m, OpenCL)
    require.NoError(t, err)
    require.Equal(t, int64(256), kd.LocalSize(1))
    require.Equal(t, 32, kd.BitWidth)
    require.Equal(t, "local=(1, 256, 1) group=(1, 1, 1) bits=32", kd.String())
}

func TestExtract_OpenCLRandom(t *testing.T) {
    f := gofakeit.New(20221010)
    for n := 0; n < 50; n++ {
        var local, group [3]int64
        for i := 0; i < 3; i++ {
            local[i] = int64(f.Number(1, 1024))
            group[i] = int64(f.Number(1, 65535))
        }

        /* every dimension is recovered */
        om := newOpenCLModule()
        om.complete(32, local, group)
        kd, err := ExtractDimensions(om.m, OpenCL)
        require.NoError(t, err)
        for i := 0; i < 3; i++ {
            assert.Equal(t, local[i], kd.LocalSize(i))
            assert.Equal(t, group[i], kd.NumGroups(i))
        }
    }
}

func TestExtract_InterleavedInstruction(t *testing.T) {
    om := newOpenCLModule()
    om.complete(32, [3]int64 { 4, 4, 4 }, [3]int64 { 2, 2, 2 })

    /* an instruction between the call and the compare spoils the idiom */
    fn := om.axiom(om.localSize, 2, ir.Int(ir.I32, 64), func(p *ir.Builder) {
        p.Binary(ir.OpAdd, "junk", ir.Int(ir.I32, 1), ir.Int(ir.I32, 2))
    })
    _, ok := matchOpenCL(fn)
    require.False(t, ok)

    kd, err := ExtractDimensions(om.m, OpenCL)
    require.NoError(t, err)
    require.Equal(t, int64(4), kd.LocalSize(2))

    /* and when it was the only one, the geometry is unknown */
    om = newOpenCLModule()
    for i := int64(0); i < 3; i++ {
        om.axiom(om.numGroups, i, ir.Int(ir.I32, 8), nil)
        if i != 2 {
            om.axiom(om.localSize, i, ir.Int(ir.I32, 8), nil)
        }
    }
    om.axiom(om.localSize, 2, ir.Int(ir.I32, 64), func(p *ir.Builder) {
        p.Binary(ir.OpAdd, "junk", ir.Int(ir.I32, 1), ir.Int(ir.I32, 2))
    })

    _, err = ExtractDimensions(om.m, OpenCL)
    var de *DimensionError
    require.True(t, errors.As(err, &de))
    require.Equal(t, "Unsupported kernel dimension", err.Error())
    require.Equal(t, RoleLocal, de.Role)
    require.Equal(t, 2, de.Axis)
}

func TestExtract_OpenCLStrict(t *testing.T) {
    om := newOpenCLModule()
    other := om.m.AddFunction(ir.NewFunction("get_global_size", ir.I64, &ir.Argument { Name: "dim", Ty: ir.I32 }))
    cases := map[string]*ir.Function {
        "axis out of range": om.axiom(om.localSize, 3, ir.Int(ir.I32, 8), nil),
        "unknown query": om.axiom(other, 0, ir.Int(ir.I32, 8), nil),
    }

    /* not an equality */
    ne := om.axiom(om.localSize, 0, ir.Int(ir.I32, 8), nil)
    ne.Blocks[0].Ins[1].Pred = ir.PredNe
    cases["not equal"] = ne

    /* compared against a variable */
    vv := om.axiom(om.localSize, 0, ir.Int(ir.I32, 8), nil)
    vv.Blocks[0].Ins[1].Ops[1] = om.localSize.Params[0]
    cases["variable size"] = vv

    /* spread over two blocks */
    tb := om.axiom(om.localSize, 0, ir.Int(ir.I32, 8), nil)
    tb.NewBlock("dead").Append(&ir.Instr { Op: ir.OpUnreachable })
    cases["two blocks"] = tb

    /* axis given by a variable */
    va := om.axiom(om.localSize, 0, ir.Int(ir.I32, 8), nil)
    va.Blocks[0].Ins[0].Ops[1] = om.localSize.Params[0]
    cases["variable axis"] = va

    /* extra arguments to the query */
    ea := om.axiom(om.localSize, 0, ir.Int(ir.I32, 8), nil)
    ea.Blocks[0].Ins[0].Ops = append(ea.Blocks[0].Ins[0].Ops, ir.Int(ir.I32, 1))
    cases["extra argument"] = ea

    for name, fn := range cases {
        _, ok := matchOpenCL(fn)
        assert.False(t, ok, name)
    }

    /* a well formed marker still matches, with unsigned axis semantics */
    ax, ok := matchOpenCL(om.axiom(om.numGroups, 2, ir.Int(ir.I16, 3), nil))
    require.True(t, ok)
    require.Equal(t, RoleGroup, ax.role)
    require.Equal(t, 2, ax.axis)
    _, ok = matchOpenCL(om.axiom(om.numGroups, -1, ir.Int(ir.I16, 3), nil))
    require.False(t, ok)
}

func TestExtract_LastMatchWins(t *testing.T) {
    om := newOpenCLModule()
    om.complete(32, [3]int64 { 1, 2, 3 }, [3]int64 { 4, 5, 6 })
    om.axiom(om.numGroups, 0, ir.Int(ir.I64, 40), nil)
    kd, err := ExtractDimensions(om.m, OpenCL)
    require.NoError(t, err)
    require.Equal(t, int64(40), kd.NumGroups(0))
    require.Equal(t, 64, kd.BitWidth)
}

func TestExtract_Validation(t *testing.T) {
    for _, tc := range []struct {
        local [3]int64
        group [3]int64
        role  string
        axis  int
    } {
        { [3]int64 { 0, 1, 1 }, [3]int64 { 1, 1, 1 }, RoleLocal, 0 },
        { [3]int64 { 1, 1, 1 }, [3]int64 { 1, -5, 1 }, RoleGroup, 1 },
        { [3]int64 { 1, 1, 2 }, [3]int64 { 1, 1, 0 }, RoleGroup, 2 },
        { [3]int64 { 1, 0, 1 }, [3]int64 { 0, 1, 1 }, RoleGroup, 0 },
    } {
        om := newOpenCLModule()
        om.complete(32, tc.local, tc.group)
        _, err := ExtractDimensions(om.m, OpenCL)
        var de *DimensionError
        require.True(t, errors.As(err, &de), "%v", err)
        require.Equal(t, tc.role, de.Role)
        require.Equal(t, tc.axis, de.Axis)
    }

    /* a value negative only once sign extended is rejected too */
    om := newOpenCLModule()
    om.complete(8, [3]int64 { 1, 1, 0xff }, [3]int64 { 1, 1, 1 })
    _, err := ExtractDimensions(om.m, OpenCL)
    require.Error(t, err)

    /* no markers at all */
    _, err = ExtractDimensions(ir.NewModule("empty"), OpenCL)
    require.Error(t, err)
}

func TestExtract_Dialects(t *testing.T) {
    om := newOpenCLModule()
    om.complete(32, [3]int64 { 1, 1, 1 }, [3]int64 { 1, 1, 1 })
    _, err := ExtractDimensions(om.m, C)
    require.ErrorIs(t, err, ErrNoKernelDialect)
    _, err = ExtractDimensions(om.m, Dialect(9))
    require.ErrorIs(t, err, ErrUnknownDialect)

    /* CUDA does not understand the OpenCL idiom */
    _, err = ExtractDimensions(om.m, CUDA)
    var de *DimensionError
    require.True(t, errors.As(err, &de))
}

func TestParseDialect(t *testing.T) {
    for _, d := range []Dialect { C, CUDA, OpenCL } {
        v, err := ParseDialect(d.String())
        require.NoError(t, err)
        require.Equal(t, d, v)
    }
    v, err := ParseDialect("OpenCL")
    require.NoError(t, err)
    require.Equal(t, OpenCL, v)
    _, err = ParseDialect("hip")
    require.ErrorIs(t, err, ErrUnknownDialect)
}

func TestStripMarkers(t *testing.T) {
    om := newOpenCLModule()
    om.complete(32, [3]int64 { 1, 1, 1 }, [3]int64 { 1, 1, 1 })
    om.m.AddNamedMD(OpenCLKernels, &ir.MDValue { V: om.m.Functions[2] })
    require.Equal(t, 6, StripMarkers(om.m))
    require.Len(t, om.m.Functions, 2)
    require.Empty(t, om.m.NamedMD(OpenCLKernels).Nodes)
    require.Equal(t, 0, StripMarkers(om.m))
}
