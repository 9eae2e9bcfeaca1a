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

package utils

import (
    `fmt`
)

// DimensionError occures when a kernel launch dimension is missing or is not
// a strictly positive constant.
type DimensionError struct {
    Role string
    Axis int
}

func (self *DimensionError) Error() string {
    return "Unsupported kernel dimension"
}

// Detail describes which dimension failed the validation.
func (self *DimensionError) Detail() string {
    return fmt.Sprintf("%s size of axis %d is missing or not positive", self.Role, self.Axis)
}

// SyntaxError occures when a module description cannot be decoded.
type SyntaxError struct {
    Path   string
    Reason string
}

func (self *SyntaxError) Error() string {
    if self.Path == "" {
        return "Syntax error: " + self.Reason
    } else {
        return fmt.Sprintf("Syntax error at %s: %s", self.Path, self.Reason)
    }
}

func EDimension(role string, axis int) *DimensionError {
    return &DimensionError {
        Role: role,
        Axis: axis,
    }
}

func ESyntax(path string, reason string) *SyntaxError {
    return &SyntaxError {
        Path   : path,
        Reason : reason,
    }
}

func EUndefined(path string, kind string, name string) *SyntaxError {
    return ESyntax(path, fmt.Sprintf("undefined %s %q", kind, name))
}
