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
    `strings`
)

// Dialect is the source language the module was compiled from.
type Dialect uint8

const (
    C Dialect = iota
    CUDA
    OpenCL
)

var (
    ErrUnknownDialect  = errors.New("kernel: unknown dialect")
    ErrNoKernelDialect = errors.New("kernel: dialect has no kernel launch geometry")
)

func (self Dialect) String() string {
    switch self {
        case C      : return "c"
        case CUDA   : return "cuda"
        case OpenCL : return "opencl"
        default     : return fmt.Sprintf("dialect(%d)", uint8(self))
    }
}

// ParseDialect accepts the names produced by Dialect.String, ignoring case.
func ParseDialect(name string) (Dialect, error) {
    switch strings.ToLower(name) {
        case "c"      : return C, nil
        case "cuda"   : return CUDA, nil
        case "opencl" : return OpenCL, nil
        default       : return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
    }
}
