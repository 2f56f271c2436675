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

// Command spade-analyst queries the encrypted data of a user for one
// value and prints where it occurs.
//
// Usage:
//
//	spade-analyst [-addr host:port] -kind hypnogram|dna -user id -v value
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/fentec-project/spade/authority"
	"github.com/fentec-project/spade/codec"
	"github.com/fentec-project/spade/equality"
	"github.com/fentec-project/spade/transport"
	"github.com/pkg/errors"
)

func main() {
	cfg := transport.DefaultConfig()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "server address")
	kind := flag.String("kind", "hypnogram", "data kind: hypnogram or dna")
	userID := flag.Int64("user", 0, "id of the user whose data is analyzed")
	value := flag.String("v", "", "queried value; a number, or a dinucleotide for -kind dna")
	flag.Parse()

	if *userID <= 0 || *value == "" {
		fmt.Fprintln(os.Stderr, "usage: spade-analyst [-addr host:port] -kind hypnogram|dna -user id -v value")
		os.Exit(2)
	}

	err := run(cfg, *kind, *userID, *value)
	switch {
	case err == nil:
	case errors.Is(err, authority.ErrUserNotFound):
		fmt.Fprintf(os.Stderr, "unknown user %d\n", *userID)
		os.Exit(1)
	case errors.Is(err, authority.ErrNoStoredData):
		fmt.Fprintf(os.Stderr, "user %d has no data submitted yet\n", *userID)
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func parseValue(kind, s string) (int64, error) {
	if kind == "dna" {
		if v, err := codec.DinucleotideValue(s); err == nil {
			return v, nil
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

func run(cfg transport.Config, kind string, userID int64, value string) error {
	if kind != "hypnogram" && kind != "dna" {
		return fmt.Errorf("unknown data kind %q", kind)
	}
	v, err := parseValue(kind, value)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := transport.NewClient(cfg)

	key, err := client.DeriveKey(ctx, userID, big.NewInt(v))
	if err != nil {
		return err
	}
	params, err := client.PublicParameters(ctx, key.Record.N)
	if err != nil {
		return err
	}
	scheme := equality.NewSPADEFromParams(&equality.SPADEParams{Q: params.Q, G: params.G})
	y, err := scheme.Decrypt(key.DK, key.Record.Ciphertext, key.V)
	if err != nil {
		return err
	}
	matches := equality.Matches(y)

	if kind == "dna" {
		printGenome(matches, v)
	} else {
		printHypnogram(matches, v)
	}
	return nil
}

func printHypnogram(matches []bool, v int64) {
	stats := codec.AnalyzeHypnogram(matches)
	fmt.Printf("The value %d appears a total of %d times in the hypnogram data.\n", v, stats.Count)
	fmt.Printf("The value changes from %d to something else a total of %d times.\n", v, stats.Breaks)
	fmt.Printf("The value %d appears in the following sequences:\n", v)
	for _, r := range stats.Runs {
		fmt.Printf("---     %d\n", r)
	}
}

func printGenome(matches []bool, v int64) {
	name, err := codec.Dinucleotide(v)
	if err != nil {
		name = strconv.FormatInt(v, 10)
	}
	idx := codec.MatchIndices(matches)
	strs := make([]string, len(idx))
	for i, j := range idx {
		strs[i] = strconv.Itoa(j)
	}

	fmt.Println(strings.Join(strs, " "))
	fmt.Printf("The dinucleotide %s appears at the indices above, %d times in total.\n", name, len(idx))
}
