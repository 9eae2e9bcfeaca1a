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

package opts

import (
	"strings"

	"github.com/xyproto/env/v2"
)

const (
	_DefaultDialect = "opencl"
)

var (
	Trace            = env.Bool("KERNOPT_TRACE")
	DumpIR           = env.Bool("KERNOPT_DUMP_IR")
	StripMarkers     = env.Bool("KERNOPT_STRIP_MARKERS")
	InsertPreheaders = env.Bool("KERNOPT_INSERT_PREHEADERS")
	Dialect          = dialectOrDefault("KERNOPT_DIALECT", _DefaultDialect)
)

var _Dialects = map[string]bool{
	"c":      true,
	"cuda":   true,
	"opencl": true,
}

func dialectOrDefault(key string, def string) string {
	if val := strings.ToLower(env.Str(key, def)); !_Dialects[val] {
		panic("kernopt: invalid value for " + key)
	} else {
		return val
	}
}
