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
    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/simple`
    `gonum.org/v1/gonum/graph/traverse`
)

// CFGGraph exposes the control flow graph of fn as a gonum directed graph,
// with node IDs equal to block IDs. Self edges are dropped since they never
// change reachability or dominance.
func CFGGraph(fn *Function) *simple.DirectedGraph {
    g := simple.NewDirectedGraph()

    /* add every block */
    for _, bb := range fn.Blocks {
        g.AddNode(simple.Node(bb.Id))
    }

    /* add every edge */
    for _, bb := range fn.Blocks {
        for _, s := range bb.Succs() {
            if s != bb {
                g.SetEdge(simple.Edge { F: simple.Node(bb.Id), T: simple.Node(s.Id) })
            }
        }
    }
    return g
}

// Reachable returns the IDs of every block reachable from the entry of fn.
func Reachable(fn *Function) map[int]bool {
    ret := make(map[int]bool)
    entry := fn.Entry()

    /* declarations have no blocks */
    if entry == nil {
        return ret
    }

    /* depth-first walk from the entry */
    walk := traverse.DepthFirst {
        Visit: func(n graph.Node) { ret[int(n.ID())] = true },
    }

    /* walk the entire graph */
    walk.Walk(CFGGraph(fn), simple.Node(entry.Id), nil)
    return ret
}
