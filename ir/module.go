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
    `fmt`
    `strconv`
    `strings`
)

type Metadata interface {
    fmt.Stringer
    metadata()
}

func (*MDValue) metadata() {}
func (MDString) metadata() {}

// MDValue wraps an IR value referenced from metadata.
type MDValue struct {
    V Value
}

func (self *MDValue) String() string {
    return typed(self.V)
}

type MDString string

func (self MDString) String() string {
    return "!" + strconv.Quote(string(self))
}

type MDNode struct {
    Ops []Metadata
}

func (self *MDNode) String() string {
    buf := make([]string, 0, len(self.Ops))
    for _, v := range self.Ops {
        buf = append(buf, v.String())
    }
    return fmt.Sprintf("!{%s}", strings.Join(buf, ", "))
}

// References reports whether the first operand of the node refers to v.
func (self *MDNode) References(v Value) bool {
    if len(self.Ops) == 0 {
        return false
    } else if mv, ok := self.Ops[0].(*MDValue); !ok {
        return false
    } else {
        return mv.V == v
    }
}

// NamedMD is a top-level named metadata table.
type NamedMD struct {
    Name  string
    Nodes []*MDNode
}

type Module struct {
    Name          string
    Functions     []*Function
    Globals       []*Global
    NamedMetadata map[string]*NamedMD
}

func NewModule(name string) *Module {
    return &Module {
        Name          : name,
        NamedMetadata : make(map[string]*NamedMD),
    }
}

func (self *Module) AddFunction(fn *Function) *Function {
    self.Functions = append(self.Functions, fn)
    return fn
}

func (self *Module) AddGlobal(gv *Global) *Global {
    self.Globals = append(self.Globals, gv)
    return gv
}

// AddNamedMD appends a node to the named table, creating the table if needed.
func (self *Module) AddNamedMD(name string, ops ...Metadata) *MDNode {
    md := self.NamedMetadata[name]
    node := &MDNode { Ops: ops }

    /* create the table on first use */
    if md == nil {
        md = &NamedMD { Name: name }
        if self.NamedMetadata == nil {
            self.NamedMetadata = make(map[string]*NamedMD)
        }
        self.NamedMetadata[name] = md
    }

    /* add to the table */
    md.Nodes = append(md.Nodes, node)
    return node
}

// NamedMD returns the named metadata table, or nil when absent.
func (self *Module) NamedMD(name string) *NamedMD {
    return self.NamedMetadata[name]
}

func (self *Module) Function(name string) *Function {
    for _, fn := range self.Functions {
        if fn.Name == name {
            return fn
        }
    }
    return nil
}

func (self *Module) Global(name string) *Global {
    for _, gv := range self.Globals {
        if gv.Name == name {
            return gv
        }
    }
    return nil
}

// RemoveFunction drops fn from the module. Metadata nodes referring to it are
// dropped as well so no dangling references survive.
func (self *Module) RemoveFunction(fn *Function) bool {
    found := false
    funcs := self.Functions[:0]

    /* filter the function list */
    for _, p := range self.Functions {
        if p != fn {
            funcs = append(funcs, p)
        } else {
            found = true
        }
    }

    /* nothing to remove */
    if self.Functions = funcs; !found {
        return false
    }

    /* filter every metadata table */
    for _, md := range self.NamedMetadata {
        nodes := md.Nodes[:0]
        for _, nd := range md.Nodes {
            if !nd.References(fn) {
                nodes = append(nodes, nd)
            }
        }
        md.Nodes = nodes
    }
    return true
}
