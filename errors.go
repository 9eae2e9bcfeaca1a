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

package kernopt

import (
	"github.com/cloudwego/kernopt/internal/kernel"
	"github.com/cloudwego/kernopt/internal/utils"
)

// DimensionError occures when the launch geometry of a kernel is incomplete
// or not strictly positive. Its message is always "Unsupported kernel
// dimension"; drivers are expected to exit with ExitUnsupportedDimension.
type DimensionError = utils.DimensionError

// SyntaxError occures when a module description cannot be decoded.
type SyntaxError = utils.SyntaxError

// ExitUnsupportedDimension is the exit status for a DimensionError.
const ExitUnsupportedDimension = kernel.ExitUnsupportedDimension

var (
	ErrUnknownDialect  = kernel.ErrUnknownDialect
	ErrNoKernelDialect = kernel.ErrNoKernelDialect
)
