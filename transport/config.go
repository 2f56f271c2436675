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

package transport

import "time"

// Config configures the transport of a Server or a Client.
type Config struct {
	// Addr is the TCP address to listen on or to dial.
	Addr string
	// MaxFrameSize bounds the size of a single frame in bytes.
	MaxFrameSize uint32
	// Timeout bounds the time a connection may take from accept or
	// dial until the response is written or read.
	Timeout time.Duration
	// DataDir is the directory cipher file references are resolved
	// against. File references are refused if it is empty.
	DataDir string
}

// DefaultConfig returns the configuration of the reference deployment.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:5000",
		MaxFrameSize: 64 << 20,
		Timeout:      30 * time.Second,
	}
}
