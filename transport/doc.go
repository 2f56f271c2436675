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

// Package transport carries the SPADE protocol over TCP.
//
// Every message is a frame: a 4 byte big-endian length followed by a
// JSON document of that length. A connection carries exactly one
// request frame and one response frame. Requests are tagged by their
// action and carry a protocol version; unknown fields are rejected.
//
// Server serves an authority.Service to many concurrent connections,
// Client is the single implementation of the caller side used by data
// owners and analysts.
package transport
