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

package codec

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/fentec-project/spade/data"
	"github.com/fentec-project/spade/equality"
	"github.com/fentec-project/spade/internal"
	"github.com/pkg/errors"
)

// CipherFileSeparator is the line between the helper values and the
// ciphertext values of a cipher file.
const CipherFileSeparator = ":"

// WriteCipherFile writes ct as the helper values, one per line, a
// separator line and the ciphertext values, one per line.
func WriteCipherFile(w io.Writer, ct *equality.Ciphertext) error {
	bw := bufio.NewWriter(w)
	for _, h := range ct.H {
		fmt.Fprintln(bw, h.String())
	}
	fmt.Fprintln(bw, CipherFileSeparator)
	for _, c := range ct.C {
		fmt.Fprintln(bw, c.String())
	}

	return bw.Flush()
}

// ReadCipherFile parses the format written by WriteCipherFile. Blank
// lines are ignored.
func ReadCipherFile(r io.Reader) (*equality.Ciphertext, error) {
	var h, c data.Vector
	sep := false

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == CipherFileSeparator {
			if sep {
				return nil, errors.Wrapf(internal.MalformedCipher, "line %d: second separator", line)
			}
			sep = true
			continue
		}

		x, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, errors.Wrapf(internal.MalformedCipher, "line %d: %q is not an integer", line, text)
		}
		if sep {
			c = append(c, x)
		} else {
			h = append(h, x)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read cipher file")
	}
	if !sep {
		return nil, errors.Wrap(internal.MalformedCipher, "missing separator line")
	}

	ct := &equality.Ciphertext{H: h, C: c}
	if _, err := ct.Len(); err != nil {
		return nil, err
	}

	return ct, nil
}

// LoadCipherFile reads a cipher file from path.
func LoadCipherFile(path string) (*equality.Ciphertext, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCipherFile(f)
}

// SaveCipherFile writes ct to path, replacing an existing file.
func SaveCipherFile(path string, ct *equality.Ciphertext) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCipherFile(f, ct); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
