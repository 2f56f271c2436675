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

// Package equality includes functional encryption schemes for
// equality queries.
//
// The SPADE scheme lets a data owner encrypt an integer vector x under
// a master public key and a personal secret alpha. The holder of the
// master secret key derives, for a query value v, a key dk which lets
// an analyst learn exactly the positions i with x_i = v:
//
//	y_i = c_i * h_i^-v * dk_i = g^(r_i (x_i - v))
//
// which is 1 iff x_i = v. Nothing else about x is revealed by a single
// key, but keys for several values v reveal the union of the matching
// positions.
//
// SPADE works in Z_Q* for a prime Q; SPADEBN256 runs the same
// equations in the group BN256.G1.
package equality
