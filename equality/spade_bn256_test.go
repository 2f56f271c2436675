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
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestSPADEBN256(t *testing.T) {
	spade := equality.NewSPADEBN256()
	n := 6

	msk, mpk, err := spade.GenerateMasterKeys(n)
	if err != nil {
		t.Fatalf("Error during master key generation: %v", err)
	}
	alpha, _, err := spade.GenerateUserKey()
	if err != nil {
		t.Fatalf("Error during user key generation: %v", err)
	}
	x := data.NewVectorFromInts(4, 0, 4, 9, 1, 4)

	ct, err := spade.Encrypt(x, alpha, mpk)
	if err != nil {
		t.Fatalf("Error during encryption: %v", err)
	}

	for _, v := range []int64{0, 4, 7} {
		query := big.NewInt(v)
		dk, err := spade.DeriveKey(alpha, query, msk)
		if err != nil {
			t.Fatalf("Error during key derivation: %v", err)
		}
		y, err := spade.Decrypt(dk, ct, query)
		if err != nil {
			t.Fatalf("Error during decryption: %v", err)
		}
		assert.Equal(t, expectedMatches(x, query), equality.MatchesG1(y), "matches for v=%d", v)
	}

	_, err = spade.Encrypt(x[:3], alpha, mpk)
	assert.True(t, errors.Is(err, equality.ErrLengthMismatch))
}
