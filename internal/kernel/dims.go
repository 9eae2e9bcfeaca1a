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
    `strings`

    `github.com/cloudwego/kernopt/ir`
)

// NumAxes is the number of launch axes, x, y and z.
const NumAxes = 3

// KernelDimensions is the launch geometry of a kernel: the work-group size
// and the number of work-groups along each axis. BitWidth is the width of
// the integer type the sizes were compared against.
type KernelDimensions struct {
    Local    [NumAxes]*ir.ConstInt
    Group    [NumAxes]*ir.ConstInt
    BitWidth int
}

// LocalSize returns the work-group size along axis, or 0 when unknown.
func (self KernelDimensions) LocalSize(axis int) int64 {
    return valueOf(self.Local[axis])
}

// NumGroups returns the number of work-groups along axis, or 0 when unknown.
func (self KernelDimensions) NumGroups(axis int) int64 {
    return valueOf(self.Group[axis])
}

func (self KernelDimensions) String() string {
    local := make([]string, 0, NumAxes)
    group := make([]string, 0, NumAxes)

    /* format every axis */
    for i := 0; i < NumAxes; i++ {
        local = append(local, fmt.Sprint(self.LocalSize(i)))
        group = append(group, fmt.Sprint(self.NumGroups(i)))
    }

    /* join them together */
    return fmt.Sprintf(
        "local=(%s) group=(%s) bits=%d",
        strings.Join(local, ", "),
        strings.Join(group, ", "),
        self.BitWidth,
    )
}

func valueOf(v *ir.ConstInt) int64 {
    if v == nil {
        return 0
    } else {
        return v.SExtValue()
    }
}
