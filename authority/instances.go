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
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/fentec-project/spade/data"
	"github.com/fentec-project/spade/equality"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

// MinSeedLength is the minimal length of a seed for deterministic
// instance keys.
const MinSeedLength = 16

// Instance holds the master keys for vectors of length N.
// It is never modified after creation.
type Instance struct {
	N   int
	MSK data.Vector
	MPK data.Vector
}

type instanceEntry struct {
	once sync.Once
	inst *Instance
	err  error
}

// InstanceManager creates one Instance per vector length on first use.
type InstanceManager struct {
	scheme *equality.SPADE
	seed   []byte

	mu        sync.RWMutex
	instances map[int]*instanceEntry
}

// NewInstanceManager returns a manager whose master secret keys are
// drawn from crypto/rand.
func NewInstanceManager(scheme *equality.SPADE) *InstanceManager {
	return &InstanceManager{
		scheme:    scheme,
		instances: make(map[int]*instanceEntry),
	}
}

// NewSeededInstanceManager returns a manager whose master secret keys
// are derived from seed, so that an authority restarted with the same
// seed serves the same instances.
func NewSeededInstanceManager(scheme *equality.SPADE, seed []byte) (*InstanceManager, error) {
	if len(seed) < MinSeedLength {
		return nil, errors.Errorf("seed should have at least %d bytes", MinSeedLength)
	}
	m := NewInstanceManager(scheme)
	m.seed = append([]byte(nil), seed...)

	return m, nil
}

// GetOrCreate returns the instance for vectors of length n, creating it
// if it does not exist yet. Concurrent callers asking for the same n
// all get the same instance; the keys are generated exactly once.
func (m *InstanceManager) GetOrCreate(n int) (*Instance, error) {
	if n <= 0 {
		return nil, errors.Wrapf(equality.ErrInvalidParameter, "vector length %d should be positive", n)
	}

	m.mu.RLock()
	e, ok := m.instances[n]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		e, ok = m.instances[n]
		if !ok {
			e = &instanceEntry{}
			m.instances[n] = e
		}
		m.mu.Unlock()
	}

	e.once.Do(func() {
		e.inst, e.err = m.generate(n)
	})

	if e.err != nil {
		// let the next caller retry
		m.mu.Lock()
		if m.instances[n] == e {
			delete(m.instances, n)
		}
		m.mu.Unlock()
		return nil, e.err
	}

	return e.inst, nil
}

// Len returns the number of instances created so far.
func (m *InstanceManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.instances)
}

func (m *InstanceManager) generate(n int) (*Instance, error) {
	if m.seed == nil {
		msk, mpk, err := m.scheme.GenerateMasterKeys(n)
		if err != nil {
			return nil, err
		}
		return &Instance{N: n, MSK: msk, MPK: mpk}, nil
	}

	info := []byte(fmt.Sprintf("spade instance %d", n))
	var key [32]byte
	if _, err := io.ReadFull(hkdf.New(sha256.New, m.seed, nil, info), key[:]); err != nil {
		return nil, errors.Wrap(err, "cannot derive instance key")
	}

	// [0, Q-1) shifted to [1, Q-1]
	order := new(big.Int).Sub(m.scheme.Params.Q, big.NewInt(1))
	msk, err := data.NewRandomDetVector(n, order, &key)
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate master secret key")
	}
	msk = msk.Apply(func(x *big.Int) *big.Int {
		return x.Add(x, big.NewInt(1))
	})

	return &Instance{N: n, MSK: msk, MPK: m.scheme.MasterPubKey(msk)}, nil
}
