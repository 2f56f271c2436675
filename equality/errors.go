/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package equality

import "errors"

// ErrLengthMismatch is returned when vectors that take part in the same
// encryption, key derivation or decryption have different lengths.
var ErrLengthMismatch = errors.New("vector lengths do not match")

// ErrInvalidParameter is returned for inputs outside the domain of the
// scheme, e.g. non-positive vector lengths or out of range values.
var ErrInvalidParameter = errors.New("invalid parameter")
