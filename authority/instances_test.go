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

package authority_test

import (
	"math/big"
	"sync"
	"testing"

	"github.com/fentec-project/spade/authority"
	"github.com/fentec-project/spade/equality"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestInstanceManager_GetOrCreate(t *testing.T) {
	scheme := equality.NewDefaultSPADE()
	m := authority.NewInstanceManager(scheme)

	first, err := m.GetOrCreate(5)
	if err != nil {
		t.Fatalf("Error during instance creation: %v", err)
	}
	second, err := m.GetOrCreate(5)
	if err != nil {
		t.Fatalf("Error during instance lookup: %v", err)
	}

	assert.Same(t, first, second)
	assert.Equal(t, 5, len(first.MSK))
	assert.True(t, first.MPK.Equals(scheme.MasterPubKey(first.MSK)))
	one := big.NewInt(1)
	for _, s := range first.MSK {
		assert.True(t, s.Cmp(one) >= 0 && s.Cmp(scheme.Params.Q) < 0, "secret %s out of range", s)
	}

	other, err := m.GetOrCreate(3)
	if err != nil {
		t.Fatalf("Error during instance creation: %v", err)
	}
	assert.Equal(t, 3, other.N)
	assert.Equal(t, 2, m.Len())

	_, err = m.GetOrCreate(0)
	assert.True(t, errors.Is(err, equality.ErrInvalidParameter))
}

func TestInstanceManager_Concurrent(t *testing.T) {
	m := authority.NewInstanceManager(equality.NewDefaultSPADE())
	workers := 32
	results := make([]*authority.Instance, workers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			inst, err := m.GetOrCreate(100)
			if err != nil {
				t.Errorf("Error during instance creation: %v", err)
				return
			}
			results[i] = inst
		}(i)
	}
	close(start)
	wg.Wait()

	for _, inst := range results {
		assert.Same(t, results[0], inst, "all callers should observe the same instance")
	}
	assert.Equal(t, 1, m.Len())
}

func TestSeededInstanceManager(t *testing.T) {
	scheme := equality.NewDefaultSPADE()
	seed := []byte("0123456789abcdef0123456789abcdef")

	m1, err := authority.NewSeededInstanceManager(scheme, seed)
	if err != nil {
		t.Fatalf("Error during manager creation: %v", err)
	}
	m2, err := authority.NewSeededInstanceManager(scheme, seed)
	if err != nil {
		t.Fatalf("Error during manager creation: %v", err)
	}

	a, err := m1.GetOrCreate(64)
	if err != nil {
		t.Fatalf("Error during instance creation: %v", err)
	}
	b, err := m2.GetOrCreate(64)
	if err != nil {
		t.Fatalf("Error during instance creation: %v", err)
	}
	assert.True(t, a.MSK.Equals(b.MSK), "same seed should give the same keys")
	assert.True(t, a.MPK.Equals(b.MPK))
	assert.NoError(t, a.MSK.CheckRange(big.NewInt(1), scheme.Params.Q))

	c, err := m1.GetOrCreate(65)
	if err != nil {
		t.Fatalf("Error during instance creation: %v", err)
	}
	assert.False(t, c.MSK[:64].Equals(a.MSK), "lengths should get independent keys")

	_, err = authority.NewSeededInstanceManager(scheme, []byte("short"))
	assert.Error(t, err)
}
