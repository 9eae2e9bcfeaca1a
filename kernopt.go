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

// Package kernopt implements two analyses over GPU kernel IR: a careful
// loop invariant code motion that never moves memory accesses, and the
// recovery of the kernel launch geometry from the marker functions emitted
// by the front-end.
package kernopt

import (
	"github.com/cloudwego/kernopt/internal/hoist"
	"github.com/cloudwego/kernopt/internal/kernel"
	"github.com/cloudwego/kernopt/ir"
)

// Dialect is the source language of a module.
type Dialect = kernel.Dialect

const (
	C      = kernel.C
	CUDA   = kernel.CUDA
	OpenCL = kernel.OpenCL
)

// AxiomPrefix is the name prefix of the geometry marker functions.
const AxiomPrefix = kernel.AxiomPrefix

// KernelDimensions is the launch geometry recovered by ExtractDimensions.
type KernelDimensions = kernel.KernelDimensions

// Facts provides the dominator tree children of a block, ir.DominatorTree
// implements it.
type Facts = hoist.Facts

// ParseDialect parses "c", "cuda" or "opencl".
func ParseDialect(name string) (Dialect, error) {
	return kernel.ParseDialect(name)
}

// HoistLoop hoists the invariant, side-effect free instructions of lp into
// its preheader. Loops without a preheader are left untouched. Blocks of
// nested loops are not scanned; run HoistLoop on inner loops first.
func HoistLoop(lp *ir.Loop, facts Facts, options ...Option) bool {
	return hoist.NewHoister(facts, getOptions(options)).Run(lp)
}

// Hoist runs HoistLoop on every loop of fn, innermost loops first, and
// reports whether anything was moved.
func Hoist(fn *ir.Function, options ...Option) bool {
	return hoist.Optimize(fn, getOptions(options), nil)
}

// HoistModule runs Hoist on every function defined in m and returns how many
// were changed. Purity results are shared between the functions.
func HoistModule(m *ir.Module, options ...Option) int {
	n := 0
	o := getOptions(options)
	p := hoist.NewPurity()

	/* optimize every definition */
	for _, fn := range m.Functions {
		if !fn.IsDeclaration() && hoist.Optimize(fn, o, p) {
			n++
		}
	}
	return n
}

// IsMemoryPure reports whether fn and everything it calls neither loads
// nor stores.
func IsMemoryPure(fn *ir.Function) bool {
	return hoist.NewPurity().IsMemoryPure(fn)
}

// IsEntryPoint reports whether fn is a kernel according to the metadata of m.
func IsEntryPoint(fn *ir.Function, m *ir.Module, dialect Dialect) bool {
	return kernel.IsEntryPoint(fn, m, dialect)
}

// EntryPoints lists every kernel of m.
func EntryPoints(m *ir.Module, dialect Dialect) []*ir.Function {
	return kernel.EntryPoints(m, dialect)
}

// ExtractDimensions recovers the launch geometry from the marker functions
// of m. It returns a *DimensionError when the geometry is incomplete or not
// strictly positive, and ErrNoKernelDialect for C modules.
func ExtractDimensions(m *ir.Module, dialect Dialect, options ...Option) (KernelDimensions, error) {
	kd, err := kernel.ExtractDimensions(m, dialect)
	if o := getOptions(options); o.StripMarkers && err != ErrNoKernelDialect && err != ErrUnknownDialect {
		kernel.StripMarkers(m)
	}
	return kd, err
}

// StripMarkers removes every geometry marker function from m and returns how
// many were removed.
func StripMarkers(m *ir.Module) int {
	return kernel.StripMarkers(m)
}
