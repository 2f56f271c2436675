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
	"io"
	"strings"

	"github.com/fentec-project/spade/data"
	"github.com/pkg/errors"
)

// dinucleotides maps value i+1 to its dinucleotide.
var dinucleotides = [...]string{
	"AA", "AC", "AG", "AT",
	"CC", "CA", "CG", "CT",
	"GG", "GA", "GC", "GT",
	"TT", "TA", "TC", "TG",
}

var dinucleotideValues = func() map[string]int64 {
	m := make(map[string]int64, len(dinucleotides))
	for i, d := range dinucleotides {
		m[d] = int64(i + 1)
	}
	return m
}()

// DinucleotideValue returns the value 1..16 of a dinucleotide.
func DinucleotideValue(pair string) (int64, error) {
	v, ok := dinucleotideValues[strings.ToUpper(pair)]
	if !ok {
		return 0, errors.Errorf("unknown dinucleotide %q", pair)
	}
	return v, nil
}

// Dinucleotide returns the dinucleotide with value v.
func Dinucleotide(v int64) (string, error) {
	if v < 1 || v > int64(len(dinucleotides)) {
		return "", errors.Errorf("no dinucleotide has value %d", v)
	}
	return dinucleotides[v-1], nil
}

// EncodeDinucleotides splits a DNA sequence into consecutive pairs of
// bases and returns their values. White space, including line breaks,
// is ignored.
func EncodeDinucleotides(seq string) (data.Vector, error) {
	seq = strings.Join(strings.Fields(seq), "")
	if len(seq)%2 != 0 {
		return nil, errors.Errorf("sequence of %d bases cannot be split into pairs", len(seq))
	}

	vals := make([]int64, 0, len(seq)/2)
	for i := 0; i < len(seq); i += 2 {
		v, err := DinucleotideValue(seq[i : i+2])
		if err != nil {
			return nil, errors.Wrapf(err, "position %d", i)
		}
		vals = append(vals, v)
	}

	return data.NewVectorFromInts(vals...), nil
}

// ReadGenome reads a DNA sequence and encodes it with
// EncodeDinucleotides.
func ReadGenome(r io.Reader) (data.Vector, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read genome")
	}

	return EncodeDinucleotides(string(b))
}
