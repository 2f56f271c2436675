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

package keygen

import (
	"crypto/rand"
	"math/big"

	"github.com/fentec-project/spade/internal"
	"github.com/pkg/errors"
)

// Reference group parameters: Q is the Fermat prime 2^16 + 1, so the
// order Q - 1 = 2^16, and 3 generates Z_Q*.
var (
	DefaultQ = big.NewInt(65537)
	DefaultG = big.NewInt(3)
)

// smallPrimeBound limits trial division when factoring the group order.
const smallPrimeBound = 1 << 16

// minSafePrimeLength is the shortest modulus NewSafePrimeGroup accepts;
// tiny safe primes have no generator passing the extra checks below.
const minSafePrimeLength = 16

// Group holds the shared parameters of the multiplicative group Z_Q*.
type Group struct {
	Q *big.Int // prime modulus
	G *big.Int // generator of Z_Q*
}

// DefaultGroup returns the reference group Q = 65537, G = 3.
func DefaultGroup() *Group {
	return &Group{
		Q: new(big.Int).Set(DefaultQ),
		G: new(big.Int).Set(DefaultG),
	}
}

// NewGroup checks that q is prime and that g generates Z_q*, and
// returns the group. The generator check needs the prime factors of
// q - 1; it fails if q - 1 does not factor into small primes and at
// most one large prime.
func NewGroup(q, g *big.Int) (*Group, error) {
	if q == nil || g == nil {
		return nil, errors.New("group modulus and generator must be set")
	}
	if q.Cmp(big.NewInt(3)) < 0 || !q.ProbablyPrime(20) {
		return nil, errors.Errorf("group modulus %s must be an odd prime", q)
	}
	if g.Cmp(big.NewInt(2)) < 0 || g.Cmp(q) >= 0 {
		return nil, errors.Errorf("generator %s must be in [2, %s)", g, q)
	}

	order := new(big.Int).Sub(q, big.NewInt(1))
	factors, err := primeFactors(order)
	if err != nil {
		return nil, errors.Wrap(err, "cannot verify generator")
	}
	if !isGenerator(g, q, order, factors) {
		return nil, errors.Errorf("%s does not generate Z_%s*", g, q)
	}

	return &Group{
		Q: new(big.Int).Set(q),
		G: new(big.Int).Set(g),
	}, nil
}

// NewSafePrimeGroup generates a group whose modulus Q = 2P + 1 is a
// safe prime of the given bit length, together with a generator of
// Z_Q*.
func NewSafePrimeGroup(modulusLength int) (*Group, error) {
	if modulusLength < minSafePrimeLength {
		return nil, errors.Errorf("modulus length %d is too small", modulusLength)
	}

	one := big.NewInt(1)
	two := big.NewInt(2)
	q := new(big.Int)
	var p *big.Int
	var err error
	for {
		p, err = rand.Prime(rand.Reader, modulusLength-1)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate safe prime")
		}
		q.Lsh(p, 1).Add(q, one)
		if q.BitLen() == modulusLength && q.ProbablyPrime(20) {
			break
		}
	}

	order := new(big.Int).Sub(q, one)
	g := new(big.Int)
	for {
		r, err := rand.Int(rand.Reader, new(big.Int).Sub(q, big.NewInt(3)))
		if err != nil {
			return nil, err
		}
		g.Add(r, big.NewInt(3))

		if !isGenerator(g, q, order, []*big.Int{two, p}) {
			continue
		}

		// additional checks to avoid some known attacks
		if new(big.Int).Mod(order, g).Sign() == 0 {
			continue
		}
		gInv := new(big.Int).ModInverse(g, q)
		if new(big.Int).Mod(order, gInv).Sign() == 0 {
			continue
		}

		break
	}

	return &Group{Q: q, G: g}, nil
}

// Order returns the order of the group, Q - 1.
func (g *Group) Order() *big.Int {
	return new(big.Int).Sub(g.Q, big.NewInt(1))
}

// Exp returns G^x mod Q; negative x is allowed.
func (g *Group) Exp(x *big.Int) *big.Int {
	return internal.ModExp(g.G, x, g.Q)
}

func isGenerator(g, q, order *big.Int, factors []*big.Int) bool {
	one := big.NewInt(1)
	e := new(big.Int)
	for _, f := range factors {
		e.Div(order, f)
		if new(big.Int).Exp(g, e, q).Cmp(one) == 0 {
			return false
		}
	}

	return true
}

// primeFactors returns the distinct prime factors of n. Factors below
// smallPrimeBound are found by trial division; what remains must be 1
// or a prime.
func primeFactors(n *big.Int) ([]*big.Int, error) {
	var factors []*big.Int
	rest := new(big.Int).Set(n)
	rem := new(big.Int)
	quo := new(big.Int)

	for d := int64(2); d < smallPrimeBound; d++ {
		div := big.NewInt(d)
		if div.Cmp(rest) > 0 {
			break
		}
		found := false
		for {
			quo.QuoRem(rest, div, rem)
			if rem.Sign() != 0 {
				break
			}
			rest.Set(quo)
			found = true
		}
		if found {
			factors = append(factors, div)
		}
	}

	if rest.Cmp(big.NewInt(1)) > 0 {
		if !rest.ProbablyPrime(20) {
			return nil, errors.Errorf("group order has a large composite factor %s", rest)
		}
		factors = append(factors, rest)
	}

	return factors, nil
}
