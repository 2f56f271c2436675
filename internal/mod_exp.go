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

package internal

import (
	"math/big"

	"github.com/pkg/errors"
)

// ModExp calculates g^x in Z_m*, even if x < 0.
// For negative x the inverse of g is computed first and then raised
// to |x|. The caller must make sure g is invertible modulo m.
func ModExp(g, x, m *big.Int) *big.Int {
	ret := new(big.Int)
	if x.Sign() == -1 {
		xNeg := new(big.Int).Neg(x)
		gInv := new(big.Int).ModInverse(g, m)
		ret.Exp(gInv, xNeg, m)
	} else {
		ret.Exp(g, x, m)
	}

	return ret
}

// ModInverse returns a^-1 mod m, or an error if a is not invertible.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return nil, errors.Errorf("%s is not invertible modulo %s", a, m)
	}

	return inv, nil
}

// InGroup reports whether a is an element of Z_m*, e.g. 1 <= a < m.
// It assumes m is prime.
func InGroup(a, m *big.Int) bool {
	return a != nil && a.Sign() > 0 && a.Cmp(m) < 0
}
