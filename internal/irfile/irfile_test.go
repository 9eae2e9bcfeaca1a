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
    `errors`
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
    `github.com/cloudwego/kernopt/ir`
)

func TestLoad_Hoist(t *testing.T) {
    m, err := Load("../../testdata/hoist.yaml")
    require.NoError(t, err)
    require.Equal(t, "hoist", m.Name)

    fn := m.Function("divide")
    require.NotNil(t, fn)
    require.Equal(t, []string { "entry", "loop", "exit" }, []string { fn.Blocks[0].Name, fn.Blocks[1].Name, fn.Blocks[2].Name })

    /* forward references resolve to the same instruction */
    loop := fn.Block("loop")
    phi, next := loop.Ins[0], loop.Ins[5]
    require.Equal(t, ir.OpPhi, phi.Op)
    require.Equal(t, next, phi.Ops[1])
    require.Equal(t, []*ir.BasicBlock { fn.Block("entry"), loop }, phi.Incoming)

    /* implicit types */
    require.Equal(t, ir.I32, loop.Ins[1].Type())
    require.Equal(t, ir.I1, loop.Ins[6].Type())
    require.Equal(t, ir.OpCondBr, loop.Term().Op)
    require.Equal(t, []*ir.BasicBlock { loop, fn.Block("exit") }, loop.Succs())
    require.Equal(t, "%q = udiv i32 %a, %b", loop.Ins[1].String())
}

func TestLoad_Metadata(t *testing.T) {
    m, err := Load("../../testdata/cuda.yaml")
    require.NoError(t, err)

    md := m.NamedMD("nvvm.annotations")
    require.NotNil(t, md)
    require.Len(t, md.Nodes, 1)
    require.True(t, md.Nodes[0].References(m.Function("kernel")))
    require.Equal(t, ir.MDString("kernel"), md.Nodes[0].Ops[1])
    require.Equal(t, &ir.MDValue { V: ir.Int(ir.I32, 1) }, md.Nodes[0].Ops[2])

    /* globals keep their address space and struct identity */
    bd := m.Global("blockDim")
    require.NotNil(t, bd)
    require.Equal(t, 4, bd.Ty.AddrSpace)
    require.True(t, ir.IsStructPointer(bd.Type(), "struct._3DimensionalVector"))
    cast := m.Function("__axiom_block_x").Entry().Ins[0]
    require.Same(t, bd.Ty.Elem, cast.Type().(*ir.PointerType).Elem)
}

func TestParse_Declarations(t *testing.T) {
    m, err := Parse([]byte(`
functions:
  - name: llvm.dbg.value
  - name: trace
    intrinsic: dbg.declare
  - name: f
    ret: double
    params: [{name: x, type: float}]
    blocks:
      - name: entry
        ins:
          - {op: call, args: ["@llvm.dbg.value", "%x"]}
          - {name: y, op: fdiv, args: ["%x", "float 2.5"]}
          - {name: z, op: fpext, type: double, args: ["%y"]}
          - {op: ret, args: ["%z"]}
`))
    var se *SyntaxError
    require.True(t, errors.As(err, &se))
    require.Contains(t, se.Error(), "functions[2].blocks[0].ins[2]")
    require.Contains(t, se.Error(), "fpext")
    require.Nil(t, m)

    m, err = Parse([]byte(`
functions:
  - name: llvm.dbg.value
  - name: trace
    intrinsic: dbg.declare
  - name: f
    ret: float
    params: [{name: x, type: float}]
    blocks:
      - name: entry
        ins:
          - {op: call, args: ["@llvm.dbg.value", "%x"]}
          - {name: y, op: fdiv, args: ["%x", "float 2.5"]}
          - {op: ret, args: ["%y"]}
`))
    require.NoError(t, err)
    assert.True(t, m.Function("llvm.dbg.value").IsDeclaration())
    assert.True(t, m.Function("llvm.dbg.value").Intrinsic.IsDebugInfo())
    assert.Equal(t, ir.IntrinsicDbgDeclare, m.Function("trace").Intrinsic)
    assert.Equal(t, ir.Void, m.Function("f").Entry().Ins[0].Type())
    assert.Equal(t, ir.Float(ir.F32, 2.5), m.Function("f").Entry().Ins[1].Ops[1])
}

func TestParse_Errors(t *testing.T) {
    for name, src := range map[string]string {
        "yaml"            : "functions: [",
        "unknown opcode"  : "functions: [{name: f, blocks: [{name: e, ins: [{op: fma}]}]}]",
        "undefined value" : "functions: [{name: f, blocks: [{name: e, ins: [{op: ret, args: ['%x']}]}]}]",
        "undefined block" : "functions: [{name: f, blocks: [{name: e, ins: [{op: br, targets: [nowhere]}]}]}]",
        "undefined symbol": "functions: [{name: f, blocks: [{name: e, ins: [{op: call, args: ['@g']}, {op: ret}]}]}]",
        "unterminated"    : "functions: [{name: f, blocks: [{name: e, ins: [{name: x, op: add, args: ['i32 1', 'i32 2']}]}]}]",
        "bad type"        : "functions: [{name: f, ret: int, blocks: [{name: e, ins: [{op: ret}]}]}]",
        "bad literal"     : "functions: [{name: f, blocks: [{name: e, ins: [{op: ret, args: ['i32 x']}]}]}]",
        "bad predicate"   : "functions: [{name: f, blocks: [{name: e, ins: [{name: c, op: icmp, pred: lt, args: ['i32 1', 'i32 2']}, {op: ret}]}]}]",
        "no predicate"    : "functions: [{name: f, blocks: [{name: e, ins: [{name: c, op: icmp, args: ['i32 1', 'i32 2']}, {op: ret}]}]}]",
        "operand count"   : "functions: [{name: f, blocks: [{name: e, ins: [{name: x, op: add, args: ['i32 1']}, {op: ret}]}]}]",
        "duplicated value": "functions: [{name: f, blocks: [{name: e, ins: [{name: x, op: add, args: ['i32 1', 'i32 1']}, {name: x, op: add, args: ['i32 1', 'i32 1']}, {op: ret}]}]}]",
        "duplicated block": "functions: [{name: f, blocks: [{name: e, ins: [{op: ret}]}, {name: e, ins: [{op: ret}]}]}]",
        "duplicated func" : "functions: [{name: f}, {name: f}]",
        "global not ptr"  : "globals: [{name: g, type: i32}]",
        "phi sources"     : "functions: [{name: f, blocks: [{name: e, ins: [{name: p, op: phi, type: i32, args: ['i32 1']}, {op: ret}]}]}]",
        "bad intrinsic"   : "functions: [{name: f, intrinsic: dbg.label}]",
    } {
        _, err := Parse([]byte(src))
        var se *SyntaxError
        assert.True(t, errors.As(err, &se), "%s: %v", name, err)
    }
}

func TestLoad_Missing(t *testing.T) {
    _, err := Load("../../testdata/does-not-exist.yaml")
    require.Error(t, err)
    var se *SyntaxError
    require.False(t, errors.As(err, &se))
}
