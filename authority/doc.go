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

// Package authority holds the state of the issuing authority of the
// SPADE protocol: one master key pair per vector length, the identities
// of registered data owners and their latest ciphertexts. Service
// combines them into the four protocol operations.
//
// The authority issues the owners' secret exponents and also holds the
// master secret keys, so it has to be trusted by the owners. All types
// in this package are safe for concurrent use.
package authority
