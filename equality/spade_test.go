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

package equality_test

import (
	"math/big"
	"testing"

	"github.com/fentec-project/spade/data"
	"github.com/fentec-project/spade/equality"
	"github.com/fentec-project/spade/internal"
	"github.com/fentec-project/spade/internal/keygen"
	"github.com/fentec-project/spade/sample"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func expectedMatches(x data.Vector, v *big.Int) []bool {
	res := make([]bool, len(x))
	for i, xi := range x {
		res[i] = xi.Cmp(v) == 0
	}
	return res
}

func TestSPADE_RoundTrip(t *testing.T) {
	spade := equality.NewDefaultSPADE()
	msk := data.NewVectorFromInts(10, 20, 30, 40, 50)
	mpk := spade.MasterPubKey(msk)
	alpha := big.NewInt(7)
	x := data.NewVectorFromInts(1, 2, 3, 2, 1)
	v := big.NewInt(2)

	ct, err := spade.Encrypt(x, alpha, mpk)
	if err != nil {
		t.Fatalf("Error during encryption: %v", err)
	}

	dk, err := spade.DeriveKey(alpha, v, msk)
	if err != nil {
		t.Fatalf("Error during key derivation: %v", err)
	}

	y, err := spade.Decrypt(dk, ct, v)
	if err != nil {
		t.Fatalf("Error during decryption: %v", err)
	}

	assert.Equal(t, []bool{false, true, false, true, false}, equality.Matches(y))
}

type spadeTestParam struct {
	name          string
	modulusLength int
}

func testSPADEFromParam(t *testing.T, param spadeTestParam) {
	n := 20
	var spade *equality.SPADE
	if param.modulusLength == 0 {
		spade = equality.NewDefaultSPADE()
	} else {
		group, err := keygen.NewSafePrimeGroup(param.modulusLength)
		if err != nil {
			t.Fatalf("Error during group generation: %v", err)
		}
		spade, err = equality.NewSPADE(group.Q, group.G)
		if err != nil {
			t.Fatalf("Error during scheme creation: %v", err)
		}
	}

	msk, mpk, err := spade.GenerateMasterKeys(n)
	if err != nil {
		t.Fatalf("Error during master key generation: %v", err)
	}
	alpha, _, err := spade.GenerateUserKey()
	if err != nil {
		t.Fatalf("Error during user key generation: %v", err)
	}

	// small alphabet so that every query value has matches
	x, err := data.NewRandomVector(n, sample.NewUniform(big.NewInt(4)))
	if err != nil {
		t.Fatalf("Error during random generation: %v", err)
	}

	// simulate the encryptor, which only gets the public parameters
	encryptor := equality.NewSPADEFromParams(spade.Params)
	ct, err := encryptor.Encrypt(x, alpha, mpk)
	if err != nil {
		t.Fatalf("Error during encryption: %v", err)
	}

	decryptor := equality.NewSPADEFromParams(spade.Params)
	for v := int64(0); v < 5; v++ {
		query := big.NewInt(v)
		dk, err := spade.DeriveKey(alpha, query, msk)
		if err != nil {
			t.Fatalf("Error during key derivation: %v", err)
		}
		y, err := decryptor.Decrypt(dk, ct, query)
		if err != nil {
			t.Fatalf("Error during decryption: %v", err)
		}
		assert.Equal(t, expectedMatches(x, query), equality.Matches(y), "matches for v=%d", v)
	}
}

func TestSPADE(t *testing.T) {
	params := []spadeTestParam{{"reference group", 0}, {"safe prime group", 128}}

	for _, param := range params {
		t.Run(param.name, func(t *testing.T) {
			testSPADEFromParam(t, param)
		})
	}
}

func TestSPADE_NoiseIsFresh(t *testing.T) {
	spade := equality.NewDefaultSPADE()
	_, mpk, err := spade.GenerateMasterKeys(8)
	if err != nil {
		t.Fatalf("Error during master key generation: %v", err)
	}
	x := data.NewConstantVector(8, big.NewInt(5))

	ct1, err := spade.Encrypt(x, big.NewInt(11), mpk)
	if err != nil {
		t.Fatalf("Error during encryption: %v", err)
	}
	ct2, err := spade.Encrypt(x, big.NewInt(11), mpk)
	if err != nil {
		t.Fatalf("Error during encryption: %v", err)
	}

	assert.False(t, ct1.C.Equals(ct2.C) && ct1.H.Equals(ct2.H), "encryptions should be randomized")
}

func TestSPADE_LengthMismatch(t *testing.T) {
	spade := equality.NewDefaultSPADE()
	msk3, mpk3, err := spade.GenerateMasterKeys(3)
	if err != nil {
		t.Fatalf("Error during master key generation: %v", err)
	}
	msk5, mpk5, err := spade.GenerateMasterKeys(5)
	if err != nil {
		t.Fatalf("Error during master key generation: %v", err)
	}
	alpha := big.NewInt(7)
	x := data.NewVectorFromInts(1, 2, 3, 2, 1)

	_, err = spade.Encrypt(x, alpha, mpk3)
	assert.True(t, errors.Is(err, equality.ErrLengthMismatch), "got %v", err)

	ct, err := spade.Encrypt(x, alpha, mpk5)
	if err != nil {
		t.Fatalf("Error during encryption: %v", err)
	}
	dk3, err := spade.DeriveKey(alpha, big.NewInt(2), msk3)
	if err != nil {
		t.Fatalf("Error during key derivation: %v", err)
	}
	_, err = spade.Decrypt(dk3, ct, big.NewInt(2))
	assert.True(t, errors.Is(err, equality.ErrLengthMismatch), "got %v", err)

	dk5, err := spade.DeriveKey(alpha, big.NewInt(2), msk5)
	if err != nil {
		t.Fatalf("Error during key derivation: %v", err)
	}
	truncated := &equality.Ciphertext{H: ct.H[:4], C: ct.C}
	_, err = spade.Decrypt(dk5, truncated, big.NewInt(2))
	assert.True(t, errors.Is(err, equality.ErrLengthMismatch), "got %v", err)
}

func TestSPADE_InvalidParameters(t *testing.T) {
	spade := equality.NewDefaultSPADE()
	msk, mpk, err := spade.GenerateMasterKeys(2)
	if err != nil {
		t.Fatalf("Error during master key generation: %v", err)
	}
	q := spade.Params.Q

	_, _, err = spade.GenerateMasterKeys(0)
	assert.True(t, errors.Is(err, equality.ErrInvalidParameter))

	_, err = spade.Encrypt(data.NewVectorFromInts(1, -1), big.NewInt(3), mpk)
	assert.True(t, errors.Is(err, equality.ErrInvalidParameter))
	_, err = spade.Encrypt(data.Vector{big.NewInt(1), q}, big.NewInt(3), mpk)
	assert.True(t, errors.Is(err, equality.ErrInvalidParameter))
	_, err = spade.Encrypt(data.NewVectorFromInts(1, 1), big.NewInt(0), mpk)
	assert.True(t, errors.Is(err, equality.ErrInvalidParameter))
	_, err = spade.Encrypt(data.NewVectorFromInts(1, 1), big.NewInt(3), data.NewVectorFromInts(0, 1))
	assert.Equal(t, internal.MalformedPubKey, err)

	_, err = spade.DeriveKey(big.NewInt(3), big.NewInt(-1), msk)
	assert.True(t, errors.Is(err, equality.ErrInvalidParameter))
	_, err = spade.DeriveKey(big.NewInt(3), q, msk)
	assert.True(t, errors.Is(err, equality.ErrInvalidParameter))

	dk, err := spade.DeriveKey(big.NewInt(3), big.NewInt(1), msk)
	if err != nil {
		t.Fatalf("Error during key derivation: %v", err)
	}
	bad := &equality.Ciphertext{H: data.NewVectorFromInts(0, 1), C: data.NewVectorFromInts(1, 1)}
	_, err = spade.Decrypt(dk, bad, big.NewInt(1))
	assert.Equal(t, internal.MalformedCipher, err)
}

func TestNewSPADE(t *testing.T) {
	_, err := equality.NewSPADE(big.NewInt(65537), big.NewInt(3))
	assert.NoError(t, err)

	_, err = equality.NewSPADE(big.NewInt(65537), big.NewInt(9))
	assert.Error(t, err)
}

func TestSPADE_ZeroQuery(t *testing.T) {
	spade := equality.NewDefaultSPADE()
	msk, mpk, err := spade.GenerateMasterKeys(4)
	if err != nil {
		t.Fatalf("Error during master key generation: %v", err)
	}
	alpha := big.NewInt(65536)
	x := data.NewVectorFromInts(0, 65535, 0, 1)

	ct, err := spade.Encrypt(x, alpha, mpk)
	if err != nil {
		t.Fatalf("Error during encryption: %v", err)
	}
	dk, err := spade.DeriveKey(alpha, big.NewInt(0), msk)
	if err != nil {
		t.Fatalf("Error during key derivation: %v", err)
	}
	y, err := spade.Decrypt(dk, ct, big.NewInt(0))
	if err != nil {
		t.Fatalf("Error during decryption: %v", err)
	}

	assert.Equal(t, []bool{true, false, true, false}, equality.Matches(y))
}
