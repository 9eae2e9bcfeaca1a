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

// Package irfile decodes the YAML description of an IR module used by the
// command line driver and by tests.
package irfile

import (
    `fmt`
    `os`
    `sort`
    `strconv`
    `strings`

    `gopkg.in/yaml.v3`
    `github.com/cloudwego/kernopt/internal/utils`
    `github.com/cloudwego/kernopt/ir`
)

// SyntaxError describes where a module description is malformed.
type SyntaxError = utils.SyntaxError

type _Module struct {
    Name      string                `yaml:"name"`
    Globals   []_Global             `yaml:"globals"`
    Functions []_Function           `yaml:"functions"`
    Metadata  map[string][][]string `yaml:"metadata"`
}

type _Global struct {
    Name string `yaml:"name"`
    Type string `yaml:"type"`
}

type _Param struct {
    Name string `yaml:"name"`
    Type string `yaml:"type"`
}

type _Function struct {
    Name      string   `yaml:"name"`
    Ret       string   `yaml:"ret"`
    Params    []_Param `yaml:"params"`
    Intrinsic string   `yaml:"intrinsic,omitempty"`
    Blocks    []_Block `yaml:"blocks"`
}

type _Block struct {
    Name string   `yaml:"name"`
    Ins  []_Instr `yaml:"ins"`
}

type _Instr struct {
    Name    string   `yaml:"name,omitempty"`
    Op      string   `yaml:"op"`
    Type    string   `yaml:"type,omitempty"`
    Pred    string   `yaml:"pred,omitempty"`
    Args    []string `yaml:"args,omitempty"`
    Targets []string `yaml:"targets,omitempty"`
    From    []string `yaml:"from,omitempty"`
}

var _Intrinsics = map[string]ir.Intrinsic {
    "dbg.value"   : ir.IntrinsicDbgValue,
    "dbg.declare" : ir.IntrinsicDbgDeclare,
}

// Load reads and decodes the module description at path.
func Load(path string) (*ir.Module, error) {
    buf, err := os.ReadFile(path)
    if err != nil {
        return nil, err
    }

    /* decode the module */
    m, err := Parse(buf)
    if err != nil {
        return nil, fmt.Errorf("%s: %w", path, err)
    }

    /* name the module after the file by default */
    if m.Name == "" {
        m.Name = path
    }
    return m, nil
}

// Parse decodes a module description. References to functions, globals,
// blocks and instructions may appear before their definitions.
func Parse(src []byte) (*ir.Module, error) {
    var mm _Module
    if err := yaml.Unmarshal(src, &mm); err != nil {
        return nil, utils.ESyntax("", err.Error())
    } else {
        return newLoader(mm.Name).load(&mm)
    }
}

type _Loader struct {
    m     *ir.Module
    types *_TypeParser
    defs  []_Definition
}

type _Definition struct {
    fn   *ir.Function
    spec *_Function
    path string
    vals map[string]ir.Value
}

func newLoader(name string) *_Loader {
    return &_Loader {
        m     : ir.NewModule(name),
        types : newTypeParser(),
    }
}

func (self *_Loader) load(mm *_Module) (*ir.Module, error) {
    for i := range mm.Globals {
        if err := self.declareGlobal(fmt.Sprintf("globals[%d]", i), &mm.Globals[i]); err != nil {
            return nil, err
        }
    }

    /* declare every function and create its instructions */
    for i := range mm.Functions {
        if err := self.declareFunction(fmt.Sprintf("functions[%d]", i), &mm.Functions[i]); err != nil {
            return nil, err
        }
    }

    /* every name is known now, resolve the operands */
    for _, def := range self.defs {
        if err := self.resolveFunction(def); err != nil {
            return nil, err
        }
    }

    /* named metadata */
    if err := self.loadMetadata(mm.Metadata); err != nil {
        return nil, err
    }
    return self.m, nil
}

func (self *_Loader) declareGlobal(path string, gv *_Global) error {
    ty, err := self.types.parse(gv.Type)
    if err != nil {
        return utils.ESyntax(path, err.Error())
    }

    /* globals are always addresses */
    pt, ok := ty.(*ir.PointerType)
    if !ok {
        return utils.ESyntax(path, fmt.Sprintf("global %q must have a pointer type", gv.Name))
    }

    /* check for duplications */
    if self.m.Global(gv.Name) != nil || self.m.Function(gv.Name) != nil {
        return utils.ESyntax(path, fmt.Sprintf("duplicated symbol %q", gv.Name))
    }

    /* add to the module */
    self.m.AddGlobal(&ir.Global { Name: gv.Name, Ty: pt })
    return nil
}

func (self *_Loader) declareFunction(path string, spec *_Function) error {
    var ret ir.Type = ir.Void
    var args []*ir.Argument

    /* the return type defaults to void */
    if spec.Ret != "" {
        ty, err := self.types.parse(spec.Ret)
        if err != nil {
            return utils.ESyntax(path + ".ret", err.Error())
        }
        ret = ty
    }

    /* parameters */
    for i, p := range spec.Params {
        ty, err := self.types.parse(p.Type)
        if err != nil {
            return utils.ESyntax(fmt.Sprintf("%s.params[%d]", path, i), err.Error())
        }
        args = append(args, &ir.Argument { Name: p.Name, Ty: ty })
    }

    /* check for duplications */
    if self.m.Global(spec.Name) != nil || self.m.Function(spec.Name) != nil {
        return utils.ESyntax(path, fmt.Sprintf("duplicated symbol %q", spec.Name))
    }

    /* create the function */
    fn := self.m.AddFunction(ir.NewFunction(spec.Name, ret, args...))
    def := _Definition {
        fn   : fn,
        spec : spec,
        path : path,
        vals : make(map[string]ir.Value),
    }

    /* explicit intrinsic tag */
    if spec.Intrinsic != "" {
        if in, ok := _Intrinsics[spec.Intrinsic]; !ok {
            return utils.ESyntax(path + ".intrinsic", fmt.Sprintf("unknown intrinsic %q", spec.Intrinsic))
        } else {
            fn.Intrinsic = in
        }
    }

    /* parameters are local values */
    for _, p := range args {
        def.vals[p.Name] = p
    }

    /* create the blocks first so branches can refer forward */
    for _, bb := range spec.Blocks {
        if fn.Block(bb.Name) != nil {
            return utils.ESyntax(path, fmt.Sprintf("duplicated block %q", bb.Name))
        }
        fn.NewBlock(bb.Name)
    }

    /* then the instructions, without their operands */
    for i, bb := range spec.Blocks {
        for j := range bb.Ins {
            at := fmt.Sprintf("%s.blocks[%d].ins[%d]", path, i, j)
            if err := self.declareInstr(at, &def, fn.Blocks[i], &bb.Ins[j]); err != nil {
                return err
            }
        }
    }

    /* resolve the operands later */
    self.defs = append(self.defs, def)
    return nil
}

func (self *_Loader) declareInstr(path string, def *_Definition, bb *ir.BasicBlock, spec *_Instr) error {
    op, ok := ir.ParseOpcode(spec.Op)
    if !ok {
        return utils.ESyntax(path, fmt.Sprintf("unknown opcode %q", spec.Op))
    }

    /* "br" with two targets is a conditional branch */
    if op == ir.OpBr && len(spec.Targets) == 2 {
        op = ir.OpCondBr
    }

    /* explicit result type */
    ins := &ir.Instr { Op: op, Name: spec.Name }
    if spec.Type != "" {
        ty, err := self.types.parse(spec.Type)
        if err != nil {
            return utils.ESyntax(path, err.Error())
        }
        ins.Ty = ty
    }

    /* allocas are typed by what they allocate */
    if op == ir.OpAlloca {
        if ins.Ty == nil {
            return utils.ESyntax(path, "alloca requires a type")
        }
        ins.Ty = ir.PointerTo(ins.Ty)
    }

    /* compare predicates */
    if spec.Pred != "" {
        if ins.Pred, ok = ir.ParsePredicate(spec.Pred); !ok {
            return utils.ESyntax(path, fmt.Sprintf("unknown predicate %q", spec.Pred))
        }
    }

    /* register the result */
    if spec.Name != "" {
        if _, dup := def.vals[spec.Name]; dup {
            return utils.ESyntax(path, fmt.Sprintf("redefinition of %%%s", spec.Name))
        }
        def.vals[spec.Name] = ins
    }

    /* add to the block */
    bb.Append(ins)
    return nil
}

func (self *_Loader) resolveFunction(def _Definition) error {
    for i, bb := range def.fn.Blocks {
        for j, ins := range bb.Ins {
            at := fmt.Sprintf("%s.blocks[%d].ins[%d]", def.path, i, j)
            if err := self.resolveInstr(at, def, ins, &def.spec.Blocks[i].Ins[j]); err != nil {
                return err
            }
        }

        /* every block must end with a terminator */
        if bb.Term() == nil {
            return utils.ESyntax(fmt.Sprintf("%s.blocks[%d]", def.path, i), fmt.Sprintf("block %q is not terminated", bb.Label()))
        }
    }
    return nil
}

func (self *_Loader) resolveInstr(path string, def _Definition, ins *ir.Instr, spec *_Instr) error {
    for _, arg := range spec.Args {
        v, err := self.value(path, def, arg)
        if err != nil {
            return err
        }
        ins.Ops = append(ins.Ops, v)
    }

    /* branch targets */
    for _, name := range spec.Targets {
        if bb := def.fn.Block(name); bb == nil {
            return utils.EUndefined(path, "block", name)
        } else {
            ins.Targets = append(ins.Targets, bb)
        }
    }

    /* phi sources */
    for _, name := range spec.From {
        if bb := def.fn.Block(name); bb == nil {
            return utils.EUndefined(path, "block", name)
        } else {
            ins.Incoming = append(ins.Incoming, bb)
        }
    }

    /* check the shape and fill in the implicit type */
    return checkInstr(path, ins)
}

func checkInstr(path string, ins *ir.Instr) error {
    switch op := ins.Op; {
        case op.IsBinary() : return expect(path, ins, 2, 0, ins.Ty == nil, 0)
        case op.IsCast()   : return expect(path, ins, 1, 0, false, -1)
    }

    /* everything else */
    switch ins.Op {
        case ir.OpLoad          : return expect(path, ins, 1, 0, false, -1)
        case ir.OpStore         : return expect(path, ins, 2, 0, false, -1)
        case ir.OpAlloca        : return expect(path, ins, 0, 0, false, -1)
        case ir.OpGetElementPtr : return expectAtLeast(path, ins, 2)
        case ir.OpSelect        : return expect(path, ins, 3, 0, ins.Ty == nil, 1)
        case ir.OpBr            : return expect(path, ins, 0, 1, false, -1)
        case ir.OpCondBr        : return expect(path, ins, 1, 2, false, -1)
        case ir.OpUnreachable   : return expect(path, ins, 0, 0, false, -1)
        case ir.OpCall          : return checkCall(path, ins)
        case ir.OpRet           : return checkRet(path, ins)
        case ir.OpPhi           : return checkPhi(path, ins)
        case ir.OpICmp          : return checkCompare(path, ins)
        case ir.OpFCmp          : return checkCompare(path, ins)
        default                 : return utils.ESyntax(path, "unsupported opcode " + ins.Op.String())
    }
}

func expect(path string, ins *ir.Instr, nops int, ntargets int, infer bool, from int) error {
    if len(ins.Ops) != nops {
        return utils.ESyntax(path, fmt.Sprintf("%s expects %d operands, got %d", ins.Op, nops, len(ins.Ops)))
    }
    if len(ins.Targets) != ntargets {
        return utils.ESyntax(path, fmt.Sprintf("%s expects %d targets, got %d", ins.Op, ntargets, len(ins.Targets)))
    }
    if infer {
        ins.Ty = ins.Ops[from].Type()
    }
    if ins.Ty == nil && ins.Op != ir.OpStore && !ins.Op.IsTerminator() {
        return utils.ESyntax(path, ins.Op.String() + " requires a type")
    }
    return nil
}

func expectAtLeast(path string, ins *ir.Instr, nops int) error {
    if len(ins.Ops) < nops {
        return utils.ESyntax(path, fmt.Sprintf("%s expects at least %d operands, got %d", ins.Op, nops, len(ins.Ops)))
    } else if ins.Ty == nil {
        return utils.ESyntax(path, ins.Op.String() + " requires a type")
    } else {
        return nil
    }
}

func checkCall(path string, ins *ir.Instr) error {
    if len(ins.Ops) == 0 {
        return utils.ESyntax(path, "call without a callee")
    }

    /* direct calls return what the callee returns */
    if ins.Ty == nil {
        if fn := ins.Callee(); fn != nil {
            ins.Ty = fn.Ret
        } else {
            ins.Ty = ir.Void
        }
    }
    return nil
}

func checkRet(path string, ins *ir.Instr) error {
    if len(ins.Ops) > 1 {
        return utils.ESyntax(path, "ret takes at most one operand")
    } else {
        return nil
    }
}

func checkPhi(path string, ins *ir.Instr) error {
    if len(ins.Ops) != len(ins.Incoming) {
        return utils.ESyntax(path, "phi needs one source block per value")
    } else if ins.Ty == nil {
        return utils.ESyntax(path, "phi requires a type")
    } else {
        return nil
    }
}

func checkCompare(path string, ins *ir.Instr) error {
    if ins.Pred == ir.PredNone {
        return utils.ESyntax(path, "compare without a predicate")
    }
    if ins.Ty == nil {
        ins.Ty = ir.I1
    }
    return expect(path, ins, 2, 0, false, -1)
}

// value resolves an operand reference: %local, @global or "<type> <literal>".
func (self *_Loader) value(path string, def _Definition, ref string) (ir.Value, error) {
    ref = strings.TrimSpace(ref)
    switch {
        case strings.HasPrefix(ref, "%") : return self.local(path, def, ref[1:])
        case strings.HasPrefix(ref, "@") : return self.global(path, ref[1:])
        default                          : return self.constant(path, ref)
    }
}

func (self *_Loader) local(path string, def _Definition, name string) (ir.Value, error) {
    if v, ok := def.vals[name]; ok {
        return v, nil
    } else {
        return nil, utils.EUndefined(path, "value", "%" + name)
    }
}

func (self *_Loader) global(path string, name string) (ir.Value, error) {
    if fn := self.m.Function(name); fn != nil {
        return fn, nil
    } else if gv := self.m.Global(name); gv != nil {
        return gv, nil
    } else {
        return nil, utils.EUndefined(path, "symbol", "@" + name)
    }
}

func (self *_Loader) constant(path string, ref string) (ir.Value, error) {
    i := strings.LastIndexByte(ref, ' ')
    if i < 0 {
        return nil, utils.ESyntax(path, fmt.Sprintf("invalid operand %q", ref))
    }

    /* parse the type */
    ty, err := self.types.parse(ref[:i])
    if err != nil {
        return nil, utils.ESyntax(path, err.Error())
    }

    /* parse the literal */
    switch vt := ty.(type) {
        case *ir.IntType: {
            if v, err := strconv.ParseInt(ref[i + 1:], 0, 64); err != nil {
                return nil, utils.ESyntax(path, fmt.Sprintf("invalid integer literal %q", ref))
            } else {
                return ir.Int(vt, v), nil
            }
        }
        case *ir.FloatType: {
            if v, err := strconv.ParseFloat(ref[i + 1:], 64); err != nil {
                return nil, utils.ESyntax(path, fmt.Sprintf("invalid float literal %q", ref))
            } else {
                return ir.Float(vt, v), nil
            }
        }
        default: {
            return nil, utils.ESyntax(path, fmt.Sprintf("%s constants are not supported", ty))
        }
    }
}

func (self *_Loader) loadMetadata(md map[string][][]string) error {
    keys := make([]string, 0, len(md))
    for k := range md {
        keys = append(keys, k)
    }

    /* tables are created in name order */
    sort.Strings(keys)
    for _, k := range keys {
        for i, node := range md[k] {
            path := fmt.Sprintf("metadata.%s[%d]", k, i)
            ops := make([]ir.Metadata, 0, len(node))

            /* convert every operand */
            for _, ref := range node {
                if op, err := self.metadata(path, ref); err != nil {
                    return err
                } else {
                    ops = append(ops, op)
                }
            }

            /* add to the table */
            self.m.AddNamedMD(k, ops...)
        }
    }
    return nil
}

// metadata converts a metadata operand: @symbol, a typed constant, or else a
// plain string.
func (self *_Loader) metadata(path string, ref string) (ir.Metadata, error) {
    if strings.HasPrefix(ref, "@") {
        if v, err := self.global(path, ref[1:]); err != nil {
            return nil, err
        } else {
            return &ir.MDValue { V: v }, nil
        }
    }

    /* constants look like "i32 1" */
    if v, err := self.constant(path, ref); err == nil {
        return &ir.MDValue { V: v }, nil
    } else {
        return ir.MDString(ref), nil
    }
}
