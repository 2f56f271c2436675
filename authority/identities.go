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
	"sync"

	"github.com/fentec-project/spade/equality"
	"github.com/pkg/errors"
)

// UserIdentity is a registered data owner. Alpha is the owner's secret
// exponent, PublicValue = G^Alpha.
type UserIdentity struct {
	ID          int64
	Alpha       *big.Int
	PublicValue *big.Int
}

// IdentityRegistry issues user identities. Ids start at 1 and grow by
// one with every registration.
type IdentityRegistry struct {
	scheme *equality.SPADE

	mu     sync.RWMutex
	lastID int64
	users  map[int64]*UserIdentity
}

// NewIdentityRegistry returns an empty registry.
func NewIdentityRegistry(scheme *equality.SPADE) *IdentityRegistry {
	return &IdentityRegistry{
		scheme: scheme,
		users:  make(map[int64]*UserIdentity),
	}
}

// Register creates a new identity with a fresh secret exponent.
func (r *IdentityRegistry) Register() (*UserIdentity, error) {
	// keys are sampled before an id is taken, so a failure leaves no gap
	alpha, pub, err := r.scheme.GenerateUserKey()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	id := &UserIdentity{
		ID:          r.lastID,
		Alpha:       alpha,
		PublicValue: pub,
	}
	r.users[id.ID] = id

	return id, nil
}

// Lookup returns the identity registered under id.
func (r *IdentityRegistry) Lookup(id int64) (*UserIdentity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, errors.Wrapf(ErrUserNotFound, "user %d", id)
	}

	return u, nil
}

// Len returns the number of registered users.
func (r *IdentityRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}
