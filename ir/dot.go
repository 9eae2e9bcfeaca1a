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
    `html`
    `io`
    `strings`

    `github.com/oleiade/lane`
)

func dumprow(buf *[]string, w *int, ss string) {
    vv := strings.ReplaceAll(html.EscapeString(ss), " ", "&nbsp;")
    *buf = append(*buf, fmt.Sprintf("<tr><td align=\"left\">%s</td></tr>\n", vv))
    if len(ss) > *w {
        *w = len(ss)
    }
}

func dumpbb(bb *BasicBlock, dt DominatorTree, li *LoopInfo) string {
    var w int
    var ins []string
    var meta []string
    var pred []string
    var idomof []string

    /* block predecessors */
    for _, d := range bb.Preds() {
        pred = append(pred, d.Label())
    }

    /* immediate dominator */
    idomby := "∅"
    if d := dt.DominatedBy[bb.Id]; d != nil {
        idomby = d.Label()
    }

    /* immediately dominated blocks */
    for _, d := range dt.DomChildren(bb) {
        idomof = append(idomof, d.Label())
    }

    /* loop membership */
    loop := "∅"
    if lp := li.LoopFor(bb); lp != nil {
        loop = fmt.Sprintf("%s (depth %d)", lp.Header.Label(), lp.Depth)
    }

    /* metadata rows */
    dumprow(&meta, &w, fmt.Sprintf("# pred = {%s}", strings.Join(pred, ", ")))
    dumprow(&meta, &w, fmt.Sprintf("# idom_by = %s", idomby))
    dumprow(&meta, &w, fmt.Sprintf("# idom_of = {%s}", strings.Join(idomof, ", ")))
    dumprow(&meta, &w, fmt.Sprintf("# loop = %s", loop))

    /* instruction rows */
    for _, v := range bb.Ins {
        dumprow(&ins, &w, v.String())
    }

    /* build the table */
    buf := []string {
        "<table border=\"1\" cellborder=\"0\" cellspacing=\"0\">\n",
        fmt.Sprintf("<tr><td width=\"%d\">%s</td></tr>\n", w * 10 + 5, html.EscapeString(bb.Label())),
        "<hr/>\n",
    }

    /* add metadata and instructions */
    buf = append(buf, meta...)
    if len(ins) != 0 {
        buf = append(buf, "<hr/>\n")
        buf = append(buf, ins...)
    }

    /* join them together */
    buf = append(buf, "</table>")
    return strings.Join(buf, "")
}

// WriteDot renders the CFG of fn as a Graphviz digraph, annotating each block
// with its dominator and loop information.
func WriteDot(out io.Writer, fn *Function) error {
    if fn.IsDeclaration() {
        return fmt.Errorf("ir: %s is a declaration", fn.Name)
    }

    /* analyses used for the annotations */
    q := lane.NewQueue()
    n := make(map[int]bool)
    dt := BuildDominatorTree(fn)
    li := BuildLoopInfo(fn, dt)

    /* graph header */
    buf := []string {
        fmt.Sprintf("digraph %q {", fn.Name),
        `    graph [ fontname = "Fira Code" ]`,
        `    node [ fontname = "Fira Code" fontsize="16" shape = "plaintext" ]`,
        `    edge [ fontname = "Fira Code" ]`,
        `    START [ shape = "circle" ]`,
        fmt.Sprintf(`    START -> bb_%d`, dt.Root.Id),
    }

    /* traverse the graph with BFS */
    for q.Enqueue(dt.Root); !q.Empty(); {
        p := q.Dequeue().(*BasicBlock)
        if n[p.Id] {
            continue
        }

        /* add the node */
        n[p.Id] = true
        buf = append(buf, fmt.Sprintf(`    bb_%d [ label = < %s > ]`, p.Id, dumpbb(p, dt, li)))

        /* add every edge */
        for i, ln := range p.Succs() {
            if !n[ln.Id] {
                q.Enqueue(ln)
            }
            if tr := p.Term(); tr.Op == OpCondBr {
                buf = append(buf, fmt.Sprintf(`    bb_%d -> bb_%d [ label = "%t" ]`, p.Id, ln.Id, i == 0))
            } else {
                buf = append(buf, fmt.Sprintf(`    bb_%d -> bb_%d [ label = "goto" ]`, p.Id, ln.Id))
            }
        }
    }

    /* write the graph */
    buf = append(buf, "}", "")
    _, err := io.WriteString(out, strings.Join(buf, "\n"))
    return err
}
