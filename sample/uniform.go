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
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

// UniformRange samples random values from the interval [min, max).
type UniformRange struct {
	min   *big.Int
	width *big.Int
}

// NewUniformRange returns an instance of the UniformRange sampler.
// It accepts lower and upper bounds on the sampled values.
func NewUniformRange(min, max *big.Int) *UniformRange {
	return &UniformRange{
		min:   new(big.Int).Set(min),
		width: new(big.Int).Sub(max, min),
	}
}

// Sample samples a random value from the interval [min, max).
func (u *UniformRange) Sample() (*big.Int, error) {
	if u.width.Sign() <= 0 {
		return nil, errors.New("empty sampling interval")
	}
	r, err := rand.Int(rand.Reader, u.width)
	if err != nil {
		return nil, errors.Wrap(err, "error while sampling")
	}

	return r.Add(r, u.min), nil
}

// NewUniform returns a sampler of random values from the
// interval [0, max).
func NewUniform(max *big.Int) *UniformRange {
	return NewUniformRange(big.NewInt(0), max)
}

// UniformOdd samples random odd values from the interval [1, max).
type UniformOdd struct {
	half *UniformRange
}

// NewUniformOdd returns an instance of the UniformOdd sampler.
// The interval [1, max) must contain at least one odd value, e.g.
// max must be at least 2.
func NewUniformOdd(max *big.Int) *UniformOdd {
	// odd values 2k+1 < max, so k ranges over [0, floor(max/2))
	half := new(big.Int).Rsh(max, 1)
	return &UniformOdd{half: NewUniform(half)}
}

// Sample samples a random odd value from [1, max).
func (u *UniformOdd) Sample() (*big.Int, error) {
	k, err := u.half.Sample()
	if err != nil {
		return nil, err
	}

	return k.Lsh(k, 1).Add(k, big.NewInt(1)), nil
}
