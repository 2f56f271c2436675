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
	"sync"

	"github.com/fentec-project/spade/equality"
	"github.com/pkg/errors"
)

// EncryptedRecord is the latest ciphertext submitted by a user for
// vectors of length N.
type EncryptedRecord struct {
	UserID     int64
	N          int
	Ciphertext *equality.Ciphertext
}

// CiphertextStore keeps one EncryptedRecord per user.
type CiphertextStore struct {
	mu      sync.RWMutex
	records map[int64]*EncryptedRecord
}

// NewCiphertextStore returns an empty store.
func NewCiphertextStore() *CiphertextStore {
	return &CiphertextStore{
		records: make(map[int64]*EncryptedRecord),
	}
}

// Put stores a copy of ct for userID, replacing any earlier record.
func (s *CiphertextStore) Put(userID int64, n int, ct *equality.Ciphertext) {
	rec := &EncryptedRecord{
		UserID:     userID,
		N:          n,
		Ciphertext: ct.Copy(),
	}

	s.mu.Lock()
	s.records[userID] = rec
	s.mu.Unlock()
}

// Get returns the record of userID. The record must not be modified.
func (s *CiphertextStore) Get(userID int64) (*EncryptedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, errors.Wrapf(ErrNoStoredData, "user %d", userID)
	}

	return rec, nil
}

// Len returns the number of stored records.
func (s *CiphertextStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
