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

	"github.com/fentec-project/spade/data"
	"github.com/fentec-project/spade/internal"
	"github.com/fentec-project/spade/internal/keygen"
	"github.com/fentec-project/spade/sample"
	"github.com/pkg/errors"
)

// SPADEParams represents configuration parameters of the SPADE scheme.
type SPADEParams struct {
	// Modulus - we are operating in the cyclic group Z_Q*.
	Q *big.Int
	// Generator of Z_Q*.
	G *big.Int
}

// SPADE represents the SPADE equality scheme over Z_Q*.
type SPADE struct {
	Params *SPADEParams
}

// Ciphertext holds the helper values H and the ciphertext values C of
// an encrypted vector.
type Ciphertext struct {
	H data.Vector
	C data.Vector
}

// Len returns the length of the encrypted vector, or an error if H
// and C differ in length.
func (ct *Ciphertext) Len() (int, error) {
	if len(ct.H) != len(ct.C) {
		return 0, errors.Wrapf(ErrLengthMismatch, "ciphertext has %d helper and %d cipher values",
			len(ct.H), len(ct.C))
	}

	return len(ct.C), nil
}

// Copy returns a deep copy of the ciphertext.
func (ct *Ciphertext) Copy() *Ciphertext {
	return &Ciphertext{H: ct.H.Copy(), C: ct.C.Copy()}
}

// NewSPADE configures a new instance of the scheme. It accepts the
// prime modulus q and a generator g of Z_q*, and returns an error if
// q is not prime or g does not generate the group.
func NewSPADE(q, g *big.Int) (*SPADE, error) {
	group, err := keygen.NewGroup(q, g)
	if err != nil {
		return nil, errors.Wrap(err, "cannot configure SPADE")
	}

	return NewSPADEFromParams(&SPADEParams{Q: group.Q, G: group.G}), nil
}

// NewDefaultSPADE returns the scheme over the reference group
// Q = 65537, G = 3.
func NewDefaultSPADE() *SPADE {
	group := keygen.DefaultGroup()
	return NewSPADEFromParams(&SPADEParams{Q: group.Q, G: group.G})
}

// NewSPADEFromParams takes configuration parameters of an existing
// SPADE scheme instance, and reconstructs the scheme with the same
// configuration parameters. The parameters are not checked.
func NewSPADEFromParams(params *SPADEParams) *SPADE {
	return &SPADE{
		Params: params,
	}
}

// order returns Q - 1.
func (s *SPADE) order() *big.Int {
	return new(big.Int).Sub(s.Params.Q, big.NewInt(1))
}

// checkExponent checks that a secret exponent lies in [1, Q-1].
func (s *SPADE) checkExponent(name string, e *big.Int) error {
	if e == nil || e.Sign() <= 0 || e.Cmp(s.Params.Q) >= 0 {
		return errors.Wrapf(ErrInvalidParameter, "%s should be in [1, %s]", name, s.order())
	}
	return nil
}

// checkValue checks that a plaintext or query value lies in [0, Q).
func (s *SPADE) checkValue(v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.Cmp(s.Params.Q) >= 0 {
		return errors.Wrapf(ErrInvalidParameter, "value %v should be in [0, %s)", v, s.Params.Q)
	}
	return nil
}

// GenerateMasterKeys generates a pair of master secret key and master
// public key for vectors of length n. Secret exponents are uniform in
// [1, Q-1]. It returns an error in case master keys could not be
// generated.
func (s *SPADE) GenerateMasterKeys(n int) (data.Vector, data.Vector, error) {
	if n <= 0 {
		return nil, nil, errors.Wrapf(ErrInvalidParameter, "vector length %d should be positive", n)
	}
	sampler := sample.NewUniformRange(big.NewInt(1), s.Params.Q)
	msk, err := data.NewRandomVector(n, sampler)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot generate master secret key")
	}

	return msk, s.MasterPubKey(msk), nil
}

// MasterPubKey computes mpk_i = G^msk_i for a master secret key.
func (s *SPADE) MasterPubKey(msk data.Vector) data.Vector {
	return msk.Apply(func(x *big.Int) *big.Int {
		return internal.ModExp(s.Params.G, x, s.Params.Q)
	})
}

// GenerateUserKey returns a secret exponent alpha uniform in [1, Q-1]
// and the public value G^alpha.
func (s *SPADE) GenerateUserKey() (*big.Int, *big.Int, error) {
	alpha, err := sample.NewUniformRange(big.NewInt(1), s.Params.Q).Sample()
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot generate user key")
	}

	return alpha, new(big.Int).Exp(s.Params.G, alpha, s.Params.Q), nil
}

// Encrypt encrypts vector x with the secret exponent alpha of its owner
// and the master public key of the instance for vectors of length
// len(x). Every coordinate gets fresh odd noise r_i from [1, Q):
//
//	h_i = G^(alpha + r_i), c_i = mpk_i^alpha * G^(r_i * x_i)
//
// Coordinates of x must lie in [0, Q).
func (s *SPADE) Encrypt(x data.Vector, alpha *big.Int, mpk data.Vector) (*Ciphertext, error) {
	if len(x) != len(mpk) {
		return nil, errors.Wrapf(ErrLengthMismatch, "vector has %d entries, master public key %d",
			len(x), len(mpk))
	}
	if err := x.CheckRange(big.NewInt(0), s.Params.Q); err != nil {
		return nil, errors.Wrap(ErrInvalidParameter, err.Error())
	}
	if err := s.checkExponent("alpha", alpha); err != nil {
		return nil, err
	}
	if err := internal.CheckGroupElements(mpk, s.Params.Q, internal.MalformedPubKey); err != nil {
		return nil, err
	}

	noise := sample.NewUniformOdd(s.Params.Q)
	h := make(data.Vector, len(x))
	c := make(data.Vector, len(x))
	exp := new(big.Int)
	for i := range x {
		r, err := noise.Sample()
		if err != nil {
			return nil, errors.Wrap(err, "error in encrypt")
		}

		h[i] = new(big.Int).Exp(s.Params.G, exp.Add(alpha, r), s.Params.Q)

		t1 := new(big.Int).Exp(mpk[i], alpha, s.Params.Q)
		t2 := new(big.Int).Exp(s.Params.G, exp.Mul(r, x[i]), s.Params.Q)
		c[i] = t1.Mod(t1.Mul(t1, t2), s.Params.Q)
	}

	return &Ciphertext{H: h, C: c}, nil
}

// DeriveKey takes the secret exponent alpha of a data owner, a query
// value v and the master secret key of an instance, and returns the
// functional key dk_i = G^(alpha * (v - msk_i)). The exponent is
// negative whenever msk_i > v; it is resolved through the modular
// inverse of G.
func (s *SPADE) DeriveKey(alpha, v *big.Int, msk data.Vector) (data.Vector, error) {
	if len(msk) == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "empty master secret key")
	}
	if err := s.checkExponent("alpha", alpha); err != nil {
		return nil, err
	}
	if err := s.checkValue(v); err != nil {
		return nil, err
	}

	dk := make(data.Vector, len(msk))
	exp := new(big.Int)
	for i, m := range msk {
		exp.Sub(v, m)
		exp.Mul(exp, alpha)
		dk[i] = internal.ModExp(s.Params.G, exp, s.Params.Q)
	}

	return dk, nil
}

// Decrypt accepts a functional key for query value v and a ciphertext,
// and returns the vector y_i = c_i * h_i^-v * dk_i. Entry y_i equals 1
// iff the encrypted x_i equals v; see Matches. It returns an error if
// dk and the ciphertext differ in length or hold values outside Z_Q*.
func (s *SPADE) Decrypt(dk data.Vector, ct *Ciphertext, v *big.Int) (data.Vector, error) {
	n, err := ct.Len()
	if err != nil {
		return nil, err
	}
	if len(dk) != n {
		return nil, errors.Wrapf(ErrLengthMismatch, "key has %d entries, ciphertext %d", len(dk), n)
	}
	if err := s.checkValue(v); err != nil {
		return nil, err
	}
	if err := internal.CheckGroupElements(dk, s.Params.Q, internal.MalformedDecKey); err != nil {
		return nil, err
	}
	if err := internal.CheckGroupElements(ct.H, s.Params.Q, internal.MalformedCipher); err != nil {
		return nil, err
	}
	if err := internal.CheckGroupElements(ct.C, s.Params.Q, internal.MalformedCipher); err != nil {
		return nil, err
	}

	y := make(data.Vector, n)
	for i := 0; i < n; i++ {
		hInv, err := internal.ModInverse(ct.H[i], s.Params.Q)
		if err != nil {
			return nil, errors.Wrap(internal.MalformedCipher, err.Error())
		}
		yi := new(big.Int).Exp(hInv, v, s.Params.Q)
		yi.Mul(yi, ct.C[i])
		yi.Mul(yi, dk[i])
		y[i] = yi.Mod(yi, s.Params.Q)
	}

	return y, nil
}

// Matches maps a decrypted vector to the positions where the encrypted
// value equals the query value.
func Matches(y data.Vector) []bool {
	one := big.NewInt(1)
	res := make([]bool, len(y))
	for i, yi := range y {
		res[i] = yi.Cmp(one) == 0
	}

	return res
}
