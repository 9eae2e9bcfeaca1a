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
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestInstr_MoveBeforeTerm(t *testing.T) {
    fn := NewFunction("move", I32, &Argument { Name: "a", Ty: I32 })
    p := CreateBuilder(fn)
    src := p.Label("src")
    dst := fn.NewBlock("dst")
    x := p.Binary(OpMul, "x", fn.Param("a"), Int(I32, 3))
    y := p.Binary(OpAdd, "y", x, Int(I32, 1))
    p.Br(dst)
    p.SetBlock(dst)
    r := p.Ret(y)

    x.MoveBeforeTerm(dst)
    require.Equal(t, dst, x.Parent)
    require.Equal(t, []*Instr { y, src.Ins[1] }, src.Ins)
    require.Equal(t, []*Instr { x, r }, dst.Ins)

    /* moving again appends right before the terminator, after x */
    y.MoveBeforeTerm(dst)
    require.Equal(t, []*Instr { x, y, r }, dst.Ins)
    require.Len(t, src.Ins, 1)
    require.Equal(t, OpBr, src.Term().Op)
}

func TestInstr_MoveBeforeTerm_Unterminated(t *testing.T) {
    fn := NewFunction("open", Void)
    p := CreateBuilder(fn)
    p.Label("a")
    x := p.Binary(OpAdd, "x", Int(I32, 1), Int(I32, 2))
    p.Ret()
    b := fn.NewBlock("b")
    require.Panics(t, func() { x.MoveBeforeTerm(b) })
    require.Equal(t, fn.Block("a"), x.Parent)
}

func TestBlock_AppendOwned(t *testing.T) {
    fn := NewFunction("own", Void)
    p := CreateBuilder(fn)
    p.Label("a")
    x := p.Binary(OpAdd, "x", Int(I32, 1), Int(I32, 2))
    require.Panics(t, func() { fn.NewBlock("b").Append(x) })
}

func TestConstInt_Extension(t *testing.T) {
    assert.Equal(t, int64(-1), Int(I8, 0xff).SExtValue())
    assert.Equal(t, uint64(0xff), Int(I8, 0xff).ZExtValue())
    assert.Equal(t, int64(127), Int(I8, 127).SExtValue())
    assert.Equal(t, uint64(1), Int(I1, 1).ZExtValue())
    assert.Equal(t, int64(-1), Int(I1, 1).SExtValue())
    assert.Equal(t, uint64(0xffffffffffffffff), Int(I64, -1).ZExtValue())
    assert.Equal(t, int64(256), Int(I32, 256).SExtValue())
}

func TestOpcode_Parse(t *testing.T) {
    for op := OpAdd; op < _OpCount; op++ {
        v, ok := ParseOpcode(op.String())
        require.True(t, ok, op.String())
        require.Equal(t, op, v)
    }
    _, ok := ParseOpcode("invalid")
    require.False(t, ok)
    _, ok = ParseOpcode("fma")
    require.False(t, ok)
    require.True(t, OpSRem.IsBinary())
    require.True(t, OpAddrSpaceCast.IsCast())
    require.False(t, OpLoad.IsCast())
    require.True(t, OpUnreachable.IsTerminator())
    require.False(t, OpCall.IsTerminator())
}

func TestInstr_String(t *testing.T) {
    callee := NewFunction("get_local_size", I64, &Argument { Name: "dim", Ty: I32 })
    fn := NewFunction("fmt", I32, &Argument { Name: "a", Ty: I32 }, &Argument { Name: "p", Ty: PointerTo(I32) })
    p := CreateBuilder(fn)
    p.Label("entry")
    div := p.Binary(OpSDiv, "q", fn.Param("a"), Int(I32, 4))
    ext := p.Cast(OpSExt, "w", div, I64)
    ld := p.Load("v", I32, fn.Param("p"))
    st := p.Store(div, fn.Param("p"))
    call := p.Call("n", callee, Int(I32, 0))
    cmp := p.ICmp("c", PredEq, call, Int(I64, 256))
    ret := p.Ret(ld)

    assert.Equal(t, "%q = sdiv i32 %a, 4", div.String())
    assert.Equal(t, "%w = sext i32 %q to i64", ext.String())
    assert.Equal(t, "%v = load i32, i32* %p", ld.String())
    assert.Equal(t, "store i32 %q, i32* %p", st.String())
    assert.Equal(t, "%n = call i64 @get_local_size(i32 0)", call.String())
    assert.Equal(t, "%c = icmp eq i64 %n, 256", cmp.String())
    assert.Equal(t, "ret i32 %v", ret.String())
    assert.Equal(t, callee, call.Callee())
    assert.Equal(t, []Value { Int(I32, 0) }, call.Args())
    assert.Nil(t, div.Callee())
}

func TestFunction_Intrinsic(t *testing.T) {
    assert.True(t, NewFunction("llvm.dbg.value", Void).Intrinsic.IsDebugInfo())
    assert.True(t, NewFunction("llvm.dbg.declare", Void).Intrinsic.IsDebugInfo())
    assert.False(t, NewFunction("llvm.memcpy", Void).Intrinsic.IsDebugInfo())
    assert.Equal(t, "declare i64 @get_local_size(i32 %dim)", NewFunction("get_local_size", I64, &Argument { Name: "dim", Ty: I32 }).String())
}

func TestModule_RemoveFunction(t *testing.T) {
    m := NewModule("m")
    k := m.AddFunction(NewFunction("k", Void))
    a := m.AddFunction(NewFunction("__axiom_dims", Void))
    m.AddNamedMD("opencl.kernels", &MDValue { V: k })
    m.AddNamedMD("opencl.kernels", &MDValue { V: a })
    require.True(t, m.RemoveFunction(a))
    require.False(t, m.RemoveFunction(a))
    require.Equal(t, []*Function { k }, m.Functions)
    require.Len(t, m.NamedMD("opencl.kernels").Nodes, 1)
    require.True(t, m.NamedMD("opencl.kernels").Nodes[0].References(k))
}
