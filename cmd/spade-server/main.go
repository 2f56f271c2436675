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

// Command spade-server runs the SPADE authority.
//
// Usage:
//
//	spade-server [flags] [host port]
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fentec-project/spade/authority"
	"github.com/fentec-project/spade/equality"
	"github.com/fentec-project/spade/internal/keygen"
	"github.com/fentec-project/spade/transport"
)

func main() {
	cfg := transport.DefaultConfig()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "address to listen on")
	flag.StringVar(&cfg.DataDir, "data-dir", "", "directory for cipher file references (disabled if empty)")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "time limit per connection")
	maxFrame := flag.Uint("max-frame", uint(cfg.MaxFrameSize), "maximal request size in bytes")
	maxLength := flag.Int("max-length", authority.DefaultMaxVectorLength, "maximal vector length")
	q := flag.String("q", keygen.DefaultQ.String(), "prime modulus")
	g := flag.String("g", keygen.DefaultG.String(), "generator of Z_q*")
	seed := flag.String("seed", os.Getenv("SPADE_SEED"), "hex seed for deterministic instance keys (default $SPADE_SEED)")
	flag.Parse()

	logger := log.New(os.Stderr, "spade-server ", log.LstdFlags)

	switch flag.NArg() {
	case 0:
	case 2:
		cfg.Addr = net.JoinHostPort(flag.Arg(0), flag.Arg(1))
	default:
		fmt.Fprintln(os.Stderr, "usage: spade-server [flags] [host port]")
		os.Exit(2)
	}
	cfg.MaxFrameSize = uint32(*maxFrame)

	if err := run(cfg, *q, *g, *seed, *maxLength, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(cfg transport.Config, q, g, seed string, maxLength int, logger *log.Logger) error {
	qi, ok := new(big.Int).SetString(q, 10)
	if !ok {
		return fmt.Errorf("invalid modulus %q", q)
	}
	gi, ok := new(big.Int).SetString(g, 10)
	if !ok {
		return fmt.Errorf("invalid generator %q", g)
	}
	scheme, err := equality.NewSPADE(qi, gi)
	if err != nil {
		return err
	}

	var seedBytes []byte
	if seed != "" {
		if seedBytes, err = hex.DecodeString(seed); err != nil {
			return fmt.Errorf("invalid seed: %v", err)
		}
	}

	service, err := authority.NewService(scheme, authority.ServiceConfig{
		Seed:            seedBytes,
		MaxVectorLength: maxLength,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Printf("starting SPADE server, q=%s g=%s", qi, gi)
	return transport.NewServer(service, cfg, logger).ListenAndServe(ctx)
}
