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

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// frameHeaderLen is the size of the length prefix of a frame.
const frameHeaderLen = 4

// WriteFrame writes payload prefixed by its length.
func WriteFrame(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return errors.Wrapf(ErrFrameTooLarge, "payload of %d bytes", len(payload))
	}

	buf := make([]byte, frameHeaderLen+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[frameHeaderLen:], payload)

	_, err := w.Write(buf)
	return errors.Wrap(err, "cannot write frame")
}

// ReadFrame reads one frame and returns its payload. Frames announcing
// more than maxSize bytes are rejected before anything is allocated;
// maxSize 0 means no limit.
func ReadFrame(r io.Reader, maxSize uint32) ([]byte, error) {
	var header [frameHeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, frameReadError(err, "length header")
	}

	size := binary.BigEndian.Uint32(header[:])
	if maxSize > 0 && size > maxSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "frame of %d bytes, limit %d", size, maxSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, frameReadError(err, "payload")
	}

	return payload, nil
}

func frameReadError(err error, part string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrMalformedFrame, "connection closed while reading %s", part)
	}
	return errors.Wrapf(err, "cannot read %s", part)
}
