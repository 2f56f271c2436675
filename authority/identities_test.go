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
	"sort"
	"sync"
	"testing"

	"github.com/fentec-project/spade/authority"
	"github.com/fentec-project/spade/equality"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIdentityRegistry(t *testing.T) {
	scheme := equality.NewDefaultSPADE()
	r := authority.NewIdentityRegistry(scheme)

	u1, err := r.Register()
	if err != nil {
		t.Fatalf("Error during registration: %v", err)
	}
	u2, err := r.Register()
	if err != nil {
		t.Fatalf("Error during registration: %v", err)
	}

	assert.Equal(t, int64(1), u1.ID)
	assert.Equal(t, int64(2), u2.ID)
	assert.Equal(t, new(big.Int).Exp(scheme.Params.G, u1.Alpha, scheme.Params.Q), u1.PublicValue)

	found, err := r.Lookup(2)
	if err != nil {
		t.Fatalf("Error during lookup: %v", err)
	}
	assert.Same(t, u2, found)

	_, err = r.Lookup(3)
	assert.True(t, errors.Is(err, authority.ErrUserNotFound))
}

func TestIdentityRegistry_Concurrent(t *testing.T) {
	r := authority.NewIdentityRegistry(equality.NewDefaultSPADE())
	n := 200
	ids := make(chan int64, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := r.Register()
			if err != nil {
				t.Errorf("Error during registration: %v", err)
				return
			}
			ids <- u.ID
		}()
	}
	wg.Wait()
	close(ids)

	var got []int
	for id := range ids {
		got = append(got, int(id))
	}
	sort.Ints(got)

	assert.Equal(t, n, len(got))
	for i, id := range got {
		assert.Equal(t, i+1, id, "ids should be 1..n without gaps")
	}
	assert.Equal(t, n, r.Len())
}
