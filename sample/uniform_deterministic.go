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

package sample

import (
	"encoding/binary"
	"math/big"

	"golang.org/x/crypto/salsa20"
)

// UniformDet samples pseudo-random values from the interval [0, max).
// Values are drawn from a Salsa20 key stream, so two samplers with the
// same key and bound produce the same sequence.
type UniformDet struct {
	key      *[32]byte
	max      *big.Int
	maxBytes int
	over     uint
	counter  uint64
}

// NewUniformDet returns an instance of the UniformDet sampler.
// It accepts an upper bound on the sampled values (at least 1) and the
// key of the pseudo-random generator.
func NewUniformDet(max *big.Int, key *[32]byte) *UniformDet {
	maxBits := new(big.Int).Sub(max, big.NewInt(1)).BitLen()
	maxBytes := (maxBits + 7) / 8
	if maxBytes == 0 {
		maxBytes = 1
	}

	return &UniformDet{
		key:      key,
		max:      new(big.Int).Set(max),
		maxBytes: maxBytes,
		over:     uint(8*maxBytes - maxBits),
	}
}

// Sample returns the next value of the sequence. Candidates >= max are
// rejected, each candidate uses a fresh nonce.
func (u *UniformDet) Sample() (*big.Int, error) {
	in := make([]byte, u.maxBytes) // input is initialized to zeros
	out := make([]byte, u.maxBytes)
	nonce := make([]byte, 8)
	ret := new(big.Int)

	for {
		binary.BigEndian.PutUint64(nonce, u.counter)
		u.counter++

		salsa20.XORKeyStream(out, in, nonce, u.key)
		out[0] = out[0] >> u.over
		ret.SetBytes(out)
		if ret.Cmp(u.max) < 0 {
			return ret, nil
		}
	}
}
