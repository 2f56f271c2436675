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

import (
	"math/big"

	"github.com/fentec-project/bn256"
	"github.com/fentec-project/spade/data"
	"github.com/fentec-project/spade/sample"
	"github.com/pkg/errors"
)

// SPADEBN256 represents the SPADE scheme in the group BN256.G1 of prime
// order bn256.Order. Exponents and values live in Z_Order.
type SPADEBN256 struct {
	Order *big.Int
}

// CiphertextG1 holds the helper and ciphertext values of a vector
// encrypted with SPADEBN256.
type CiphertextG1 struct {
	H data.VectorG1
	C data.VectorG1
}

// NewSPADEBN256 returns a new instance of the scheme.
func NewSPADEBN256() *SPADEBN256 {
	return &SPADEBN256{Order: bn256.Order}
}

func (s *SPADEBN256) checkValue(v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.Cmp(s.Order) >= 0 {
		return errors.Wrapf(ErrInvalidParameter, "value %v should be in [0, order)", v)
	}
	return nil
}

// GenerateMasterKeys generates a master secret key of n exponents
// uniform in [1, Order) and the master public key msk_i * G1.
func (s *SPADEBN256) GenerateMasterKeys(n int) (data.Vector, data.VectorG1, error) {
	if n <= 0 {
		return nil, nil, errors.Wrapf(ErrInvalidParameter, "vector length %d should be positive", n)
	}
	msk, err := data.NewRandomVector(n, sample.NewUniformRange(big.NewInt(1), s.Order))
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot generate master secret key")
	}

	return msk, msk.MulG1(), nil
}

// GenerateUserKey returns a secret exponent alpha uniform in
// [1, Order) and the public value alpha * G1.
func (s *SPADEBN256) GenerateUserKey() (*big.Int, *bn256.G1, error) {
	alpha, err := sample.NewUniformRange(big.NewInt(1), s.Order).Sample()
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot generate user key")
	}

	return alpha, new(bn256.G1).ScalarBaseMult(alpha), nil
}

// Encrypt encrypts vector x with the secret exponent alpha and the
// master public key mpk:
//
//	h_i = (alpha + r_i) * G1, c_i = alpha * mpk_i + (r_i * x_i) * G1
//
// with r_i uniform in [1, Order). Coordinates of x must lie in
// [0, Order).
func (s *SPADEBN256) Encrypt(x data.Vector, alpha *big.Int, mpk data.VectorG1) (*CiphertextG1, error) {
	if len(x) != len(mpk) {
		return nil, errors.Wrapf(ErrLengthMismatch, "vector has %d entries, master public key %d",
			len(x), len(mpk))
	}
	if err := x.CheckRange(big.NewInt(0), s.Order); err != nil {
		return nil, errors.Wrap(ErrInvalidParameter, err.Error())
	}
	if alpha == nil || alpha.Sign() <= 0 || alpha.Cmp(s.Order) >= 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "alpha should be in [1, order)")
	}

	r, err := data.NewRandomVector(len(x), sample.NewUniformRange(big.NewInt(1), s.Order))
	if err != nil {
		return nil, errors.Wrap(err, "error in encrypt")
	}

	h := make(data.VectorG1, len(x))
	c := make(data.VectorG1, len(x))
	for i := range x {
		e := new(big.Int).Add(alpha, r[i])
		h[i] = new(bn256.G1).ScalarBaseMult(e.Mod(e, s.Order))

		rx := new(big.Int).Mul(r[i], x[i])
		t := new(bn256.G1).ScalarBaseMult(rx.Mod(rx, s.Order))
		c[i] = new(bn256.G1).Add(new(bn256.G1).ScalarMult(mpk[i], alpha), t)
	}

	return &CiphertextG1{H: h, C: c}, nil
}

// DeriveKey returns the functional key dk_i = alpha * (v - msk_i) * G1
// for query value v.
func (s *SPADEBN256) DeriveKey(alpha, v *big.Int, msk data.Vector) (data.VectorG1, error) {
	if len(msk) == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "empty master secret key")
	}
	if err := s.checkValue(v); err != nil {
		return nil, err
	}

	exps := make(data.Vector, len(msk))
	for i, m := range msk {
		e := new(big.Int).Sub(v, m)
		exps[i] = e.Mul(e, alpha)
	}

	// MulG1 reduces the negative exponents modulo the order
	return exps.MulG1(), nil
}

// Decrypt returns y_i = c_i - v * h_i + dk_i, which is the identity of
// G1 iff the encrypted x_i equals v; see MatchesG1.
func (s *SPADEBN256) Decrypt(dk data.VectorG1, ct *CiphertextG1, v *big.Int) (data.VectorG1, error) {
	if len(ct.H) != len(ct.C) || len(dk) != len(ct.C) {
		return nil, errors.Wrapf(ErrLengthMismatch, "key has %d entries, ciphertext %d/%d",
			len(dk), len(ct.H), len(ct.C))
	}
	if err := s.checkValue(v); err != nil {
		return nil, err
	}

	negV := data.NewConstantVector(len(dk), new(big.Int).Neg(v))
	hv := negV.MulVecG1(ct.H)

	return ct.C.Add(hv).Add(dk), nil
}

// MatchesG1 maps a decrypted vector to the positions where the
// encrypted value equals the query value.
func MatchesG1(y data.VectorG1) []bool {
	return y.IsIdentity()
}
