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

package debug

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/cloudwego/kernopt/internal/hoist"
	"github.com/cloudwego/kernopt/internal/kernel"
	"github.com/cloudwego/kernopt/internal/opts"
	"github.com/cloudwego/kernopt/ir"
)

func TestGetStats_Axiom(t *testing.T) {
	m := ir.NewModule("stats")
	m.AddFunction(ir.NewFunction(kernel.AxiomPrefix + "_0", ir.I1))
	m.AddFunction(ir.NewFunction("kernel", ir.Void))

	before := GetStats()
	_, err := kernel.ExtractDimensions(m, kernel.OpenCL)
	require.Error(t, err)

	after := GetStats()
	require.Equal(t, before.Axiom.Candidates + 1, after.Axiom.Candidates)
	require.Equal(t, before.Axiom.Matched, after.Axiom.Matched)
}

func TestGetStats_Hoist(t *testing.T) {
	fn := ir.NewFunction("spin", ir.Void, &ir.Argument{Name: "a", Ty: ir.I32})
	p := ir.CreateBuilder(fn)
	hdr := p.Label("entry")
	p.Binary(ir.OpUDiv, "q", fn.Param("a"), ir.Int(ir.I32, 3))
	p.CondBr(ir.Int(ir.I1, 1), hdr, fn.NewBlock("exit"))
	p.SetBlock(fn.Block("exit"))
	p.Ret()

	/* the loop header is the entry block, there is no preheader */
	dt := ir.BuildDominatorTree(fn)
	lp := ir.BuildLoopInfo(fn, dt).Loops()[0]
	before := GetStats()
	require.False(t, hoist.NewHoister(dt, opts.Options{}).Run(lp))
	after := GetStats()
	require.Equal(t, before.Hoist.Loops+1, after.Hoist.Loops)
	require.Equal(t, before.Hoist.NoPreheader+1, after.Hoist.NoPreheader)

	/* once it has one the division moves */
	require.NotNil(t, ir.InsertPreheader(lp))
	dt = ir.BuildDominatorTree(fn)
	lp = ir.BuildLoopInfo(fn, dt).Loops()[0]
	require.True(t, hoist.NewHoister(dt, opts.Options{}).Run(lp))
	final := GetStats()
	require.Equal(t, after.Hoist.Hoisted+1, final.Hoist.Hoisted)
	require.Equal(t, after.Hoist.NoPreheader, final.Hoist.NoPreheader)
}
