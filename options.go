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
	"github.com/cloudwego/kernopt/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithTrace logs every instruction the hoister relocates.
//
// This option can also be enabled with the `KERNOPT_TRACE` environment
// variable.
func WithTrace(v bool) Option {
	return func(o *opts.Options) { o.Trace = v }
}

// WithDumpIR logs the text of every function before and after hoisting.
//
// This option can also be enabled with the `KERNOPT_DUMP_IR` environment
// variable.
func WithDumpIR(v bool) Option {
	return func(o *opts.Options) { o.DumpIR = v }
}

// WithStripMarkers makes ExtractDimensions remove the geometry marker
// functions from the module once they have been scanned.
//
// The default value of this option is "false".
func WithStripMarkers(v bool) Option {
	return func(o *opts.Options) { o.StripMarkers = v }
}

// WithPreheaderInsertion gives loops without a preheader a dedicated one
// before hoisting. Without it such loops are left untouched.
//
// The default value of this option is "false".
func WithPreheaderInsertion(v bool) Option {
	return func(o *opts.Options) { o.InsertPreheaders = v }
}

// SetTrace sets the default trace setting for all hoisting from now on.
//
// Returns the old opts.Trace value.
func SetTrace(v bool) bool {
	v, opts.Trace = opts.Trace, v
	return v
}

// SetDumpIR sets the default IR dumping setting for all hoisting from now on.
//
// Returns the old opts.DumpIR value.
func SetDumpIR(v bool) bool {
	v, opts.DumpIR = opts.DumpIR, v
	return v
}

func getOptions(options []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}
	return o
}
