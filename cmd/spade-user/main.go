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

// Command spade-user registers a data owner, encrypts a hypnogram or a
// DNA sequence and submits the ciphertext.
//
// Usage:
//
//	spade-user [-addr host:port] -kind hypnogram|dna [-out file [-by-ref]] input
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fentec-project/spade/codec"
	"github.com/fentec-project/spade/data"
	"github.com/fentec-project/spade/equality"
	"github.com/fentec-project/spade/transport"
)

func main() {
	cfg := transport.DefaultConfig()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "server address")
	kind := flag.String("kind", "hypnogram", "input kind: hypnogram or dna")
	out := flag.String("out", "", "write the ciphertext to this file")
	byRef := flag.Bool("by-ref", false, "submit a reference to the -out file instead of the values")
	flag.Parse()

	if flag.NArg() != 1 || (*byRef && *out == "") {
		fmt.Fprintln(os.Stderr, "usage: spade-user [-addr host:port] -kind hypnogram|dna [-out file [-by-ref]] input")
		os.Exit(2)
	}

	if err := run(cfg, *kind, flag.Arg(0), *out, *byRef); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func readInput(kind, path string) (data.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch kind {
	case "hypnogram":
		return codec.ReadHypnogram(f)
	case "dna":
		return codec.ReadGenome(f)
	default:
		return nil, fmt.Errorf("unknown input kind %q", kind)
	}
}

func run(cfg transport.Config, kind, input, out string, byRef bool) error {
	ctx := context.Background()
	client := transport.NewClient(cfg)

	x, err := readInput(kind, input)
	if err != nil {
		return err
	}
	if len(x) == 0 {
		return fmt.Errorf("%s holds no data", input)
	}

	user, err := client.Register(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Registered as user %d.\n", user.ID)

	params, err := client.PublicParameters(ctx, len(x))
	if err != nil {
		return err
	}
	scheme := equality.NewSPADEFromParams(&equality.SPADEParams{Q: params.Q, G: params.G})

	fmt.Printf("Encrypting %d datapoints.\n", len(x))
	ct, err := scheme.Encrypt(x, user.Alpha, params.MPK)
	if err != nil {
		return err
	}

	if out != "" {
		if err := codec.SaveCipherFile(out, ct); err != nil {
			return err
		}
	}
	if byRef {
		err = client.StoreDataFile(ctx, user.ID, len(x), "file:"+filepath.Base(out))
	} else {
		err = client.StoreData(ctx, user.ID, ct)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Stored encrypted data for user %d.\n", user.ID)
	return nil
}
