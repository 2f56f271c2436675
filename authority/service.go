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

	"github.com/fentec-project/spade/data"
	"github.com/fentec-project/spade/equality"
	"github.com/fentec-project/spade/internal"
	"github.com/pkg/errors"
)

// DefaultMaxVectorLength bounds the vector length the service accepts
// unless configured otherwise.
const DefaultMaxVectorLength = 1 << 20

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Seed makes instance keys deterministic; see NewSeededInstanceManager.
	// If empty, keys are random.
	Seed []byte
	// MaxVectorLength bounds n in every request. Zero means
	// DefaultMaxVectorLength.
	MaxVectorLength int
}

// PublicParameters are the group parameters and the master public key
// of the instance for one vector length.
type PublicParameters struct {
	Q   *big.Int
	G   *big.Int
	MPK data.Vector
}

// DerivedKey is a functional key for query value V on the data of one
// user, together with the user's stored ciphertext.
type DerivedKey struct {
	UserID int64
	V      *big.Int
	DK     data.Vector
	Record *EncryptedRecord
}

// Service implements the protocol operations of the authority. Each
// call is independent; a failing call leaves the state untouched.
type Service struct {
	scheme      *equality.SPADE
	instances   *InstanceManager
	identities  *IdentityRegistry
	ciphertexts *CiphertextStore
	maxLength   int
}

// NewService returns a service with empty state over the group of
// scheme.
func NewService(scheme *equality.SPADE, cfg ServiceConfig) (*Service, error) {
	instances := NewInstanceManager(scheme)
	if len(cfg.Seed) > 0 {
		var err error
		instances, err = NewSeededInstanceManager(scheme, cfg.Seed)
		if err != nil {
			return nil, err
		}
	}

	maxLength := cfg.MaxVectorLength
	if maxLength <= 0 {
		maxLength = DefaultMaxVectorLength
	}

	return &Service{
		scheme:      scheme,
		instances:   instances,
		identities:  NewIdentityRegistry(scheme),
		ciphertexts: NewCiphertextStore(),
		maxLength:   maxLength,
	}, nil
}

// Params returns the group parameters of the service.
func (s *Service) Params() *equality.SPADEParams {
	return s.scheme.Params
}

func (s *Service) checkLength(n int) error {
	if n <= 0 || n > s.maxLength {
		return errors.Wrapf(equality.ErrInvalidParameter, "vector length %d should be in [1, %d]", n, s.maxLength)
	}
	return nil
}

// RegisterUser registers a new data owner. The returned identity
// includes the owner's secret exponent, which the caller hands to the
// owner.
func (s *Service) RegisterUser() (*UserIdentity, error) {
	return s.identities.Register()
}

// PublicParameters returns Q, G and the master public key for vectors
// of length n, creating the instance on first use.
func (s *Service) PublicParameters(n int) (*PublicParameters, error) {
	if err := s.checkLength(n); err != nil {
		return nil, err
	}
	inst, err := s.instances.GetOrCreate(n)
	if err != nil {
		return nil, err
	}

	return &PublicParameters{
		Q:   s.scheme.Params.Q,
		G:   s.scheme.Params.G,
		MPK: inst.MPK,
	}, nil
}

// StoreData stores the ciphertext of a vector of length n for a
// registered user, replacing earlier submissions.
func (s *Service) StoreData(userID int64, n int, ct *equality.Ciphertext) error {
	if err := s.checkLength(n); err != nil {
		return err
	}
	if ct == nil {
		return errors.Wrap(equality.ErrInvalidParameter, "missing ciphertext")
	}
	l, err := ct.Len()
	if err != nil {
		return err
	}
	if l != n {
		return errors.Wrapf(equality.ErrLengthMismatch, "ciphertext has %d entries, expected %d", l, n)
	}
	q := s.scheme.Params.Q
	if internal.CheckGroupElements(ct.H, q, internal.MalformedCipher) != nil ||
		internal.CheckGroupElements(ct.C, q, internal.MalformedCipher) != nil {
		return errors.Wrap(equality.ErrInvalidParameter, internal.MalformedCipher.Error())
	}
	if _, err := s.identities.Lookup(userID); err != nil {
		return err
	}

	s.ciphertexts.Put(userID, n, ct)
	return nil
}

// DeriveKey derives the functional key for query value v on the data
// stored by userID. The vector length is taken from the stored record.
func (s *Service) DeriveKey(userID int64, v *big.Int) (*DerivedKey, error) {
	id, err := s.identities.Lookup(userID)
	if err != nil {
		return nil, err
	}
	rec, err := s.ciphertexts.Get(userID)
	if err != nil {
		return nil, err
	}
	inst, err := s.instances.GetOrCreate(rec.N)
	if err != nil {
		return nil, err
	}

	dk, err := s.scheme.DeriveKey(id.Alpha, v, inst.MSK)
	if err != nil {
		return nil, err
	}

	return &DerivedKey{
		UserID: userID,
		V:      new(big.Int).Set(v),
		DK:     dk,
		Record: rec,
	}, nil
}
