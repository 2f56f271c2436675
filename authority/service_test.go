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

package authority

import (
	"math/big"
	"testing"

	"github.com/fentec-project/spade/data"
	"github.com/fentec-project/spade/equality"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) *Service {
	s, err := NewService(equality.NewDefaultSPADE(), ServiceConfig{MaxVectorLength: 1000})
	if err != nil {
		t.Fatalf("Error during service creation: %v", err)
	}
	return s
}

func TestService_Protocol(t *testing.T) {
	s := newTestService(t)
	x := data.NewVectorFromInts(3, 1, 4, 1, 5, 9, 2, 6)
	n := len(x)

	// data owner
	user, err := s.RegisterUser()
	if err != nil {
		t.Fatalf("Error during registration: %v", err)
	}
	params, err := s.PublicParameters(n)
	if err != nil {
		t.Fatalf("Error during parameter retrieval: %v", err)
	}
	owner := equality.NewSPADEFromParams(&equality.SPADEParams{Q: params.Q, G: params.G})
	ct, err := owner.Encrypt(x, user.Alpha, params.MPK)
	if err != nil {
		t.Fatalf("Error during encryption: %v", err)
	}
	if err := s.StoreData(user.ID, n, ct); err != nil {
		t.Fatalf("Error during store: %v", err)
	}

	// analyst
	v := big.NewInt(1)
	key, err := s.DeriveKey(user.ID, v)
	if err != nil {
		t.Fatalf("Error during key derivation: %v", err)
	}
	assert.Equal(t, n, key.Record.N)
	analystParams, err := s.PublicParameters(key.Record.N)
	if err != nil {
		t.Fatalf("Error during parameter retrieval: %v", err)
	}
	assert.True(t, analystParams.MPK.Equals(params.MPK))

	analyst := equality.NewSPADEFromParams(s.Params())
	y, err := analyst.Decrypt(key.DK, key.Record.Ciphertext, v)
	if err != nil {
		t.Fatalf("Error during decryption: %v", err)
	}
	assert.Equal(t, []bool{false, true, false, true, false, false, false, false}, equality.Matches(y))
}

func TestService_UnknownUser(t *testing.T) {
	s := newTestService(t)

	_, err := s.DeriveKey(9999, big.NewInt(1))
	assert.True(t, errors.Is(err, ErrUserNotFound), "got %v", err)
	assert.Equal(t, 0, s.identities.Len())
	assert.Equal(t, 0, s.ciphertexts.Len())
	assert.Equal(t, 0, s.instances.Len())

	ct := &equality.Ciphertext{H: data.NewVectorFromInts(1), C: data.NewVectorFromInts(1)}
	err = s.StoreData(9999, 1, ct)
	assert.True(t, errors.Is(err, ErrUserNotFound), "got %v", err)
	assert.Equal(t, 0, s.ciphertexts.Len())
}

func TestService_NoStoredData(t *testing.T) {
	s := newTestService(t)
	user, err := s.RegisterUser()
	if err != nil {
		t.Fatalf("Error during registration: %v", err)
	}

	_, err = s.DeriveKey(user.ID, big.NewInt(1))
	assert.True(t, errors.Is(err, ErrNoStoredData), "got %v", err)
	assert.Equal(t, 0, s.instances.Len())
}

func TestService_StoreData(t *testing.T) {
	s := newTestService(t)
	user, err := s.RegisterUser()
	if err != nil {
		t.Fatalf("Error during registration: %v", err)
	}

	tests := []struct {
		name string
		n    int
		ct   *equality.Ciphertext
		err  error
	}{
		{"zero length", 0, &equality.Ciphertext{}, equality.ErrInvalidParameter},
		{"too long", 1001, &equality.Ciphertext{}, equality.ErrInvalidParameter},
		{"missing ciphertext", 2, nil, equality.ErrInvalidParameter},
		{"h and c differ", 2, &equality.Ciphertext{H: data.NewVectorFromInts(1), C: data.NewVectorFromInts(1, 2)}, equality.ErrLengthMismatch},
		{"n differs", 3, &equality.Ciphertext{H: data.NewVectorFromInts(1, 2), C: data.NewVectorFromInts(1, 2)}, equality.ErrLengthMismatch},
		{"not in group", 2, &equality.Ciphertext{H: data.NewVectorFromInts(0, 2), C: data.NewVectorFromInts(1, 2)}, equality.ErrInvalidParameter},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := s.StoreData(user.ID, test.n, test.ct)
			assert.True(t, errors.Is(err, test.err), "got %v", err)
		})
	}
	assert.Equal(t, 0, s.ciphertexts.Len())

	first := &equality.Ciphertext{H: data.NewVectorFromInts(1, 2), C: data.NewVectorFromInts(3, 4)}
	second := &equality.Ciphertext{H: data.NewVectorFromInts(5, 6, 7), C: data.NewVectorFromInts(8, 9, 10)}
	assert.NoError(t, s.StoreData(user.ID, 2, first))
	assert.NoError(t, s.StoreData(user.ID, 3, second))

	key, err := s.DeriveKey(user.ID, big.NewInt(0))
	if err != nil {
		t.Fatalf("Error during key derivation: %v", err)
	}
	assert.Equal(t, 3, key.Record.N)
	assert.Equal(t, 3, len(key.DK))
	assert.True(t, key.Record.Ciphertext.C.Equals(second.C))
}

func TestService_Seeded(t *testing.T) {
	seed := []byte("a seed of sufficient length")
	s1, err := NewService(equality.NewDefaultSPADE(), ServiceConfig{Seed: seed})
	if err != nil {
		t.Fatalf("Error during service creation: %v", err)
	}
	s2, err := NewService(equality.NewDefaultSPADE(), ServiceConfig{Seed: seed})
	if err != nil {
		t.Fatalf("Error during service creation: %v", err)
	}

	p1, err := s1.PublicParameters(10)
	if err != nil {
		t.Fatalf("Error during parameter retrieval: %v", err)
	}
	p2, err := s2.PublicParameters(10)
	if err != nil {
		t.Fatalf("Error during parameter retrieval: %v", err)
	}
	assert.True(t, p1.MPK.Equals(p2.MPK), "restarted authority should serve the same keys")

	_, err = NewService(equality.NewDefaultSPADE(), ServiceConfig{Seed: []byte("short")})
	assert.Error(t, err)
}
