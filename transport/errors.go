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
	"errors"
	"fmt"

	"github.com/fentec-project/spade/authority"
	"github.com/fentec-project/spade/equality"
)

// ErrMalformedFrame is returned for frames that end early or cannot be
// decoded. The connection is closed without a response.
var ErrMalformedFrame = errors.New("malformed frame")

// ErrFrameTooLarge is returned for frames whose announced length
// exceeds the configured limit.
var ErrFrameTooLarge = fmt.Errorf("%w: frame exceeds size limit", ErrMalformedFrame)

// ErrUnknownAction is returned for requests with an unknown action tag.
var ErrUnknownAction = errors.New("unknown action")

// ErrUnsupportedVersion is returned for requests of another protocol
// version.
var ErrUnsupportedVersion = errors.New("unsupported protocol version")

// ErrInternal is reported to clients when a request failed for a
// reason that is not their fault.
var ErrInternal = errors.New("internal error")

// Error codes of error responses.
const (
	CodeUserNotFound       = "user_not_found"
	CodeNoStoredData       = "no_stored_data"
	CodeLengthMismatch     = "length_mismatch"
	CodeInvalidParameter   = "invalid_parameter"
	CodeUnknownAction      = "unknown_action"
	CodeUnsupportedVersion = "unsupported_version"
	CodeInternal           = "internal"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{authority.ErrUserNotFound, CodeUserNotFound},
	{authority.ErrNoStoredData, CodeNoStoredData},
	{equality.ErrLengthMismatch, CodeLengthMismatch},
	{equality.ErrInvalidParameter, CodeInvalidParameter},
	{ErrUnknownAction, CodeUnknownAction},
	{ErrUnsupportedVersion, CodeUnsupportedVersion},
}

// newErrorBody maps err to the error part of a response. Errors that
// are not part of the protocol are reported as internal without
// details.
func newErrorBody(err error) *ErrorBody {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return &ErrorBody{Code: c.code, Message: err.Error()}
		}
	}
	return &ErrorBody{Code: CodeInternal, Message: ErrInternal.Error()}
}

// RemoteError is an error reported by the server. It unwraps to the
// sentinel error of its code, so errors.Is works on both ends.
type RemoteError struct {
	Code    string
	Message string
	cause   error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.cause
}

// Err converts the error part of a response back into an error.
func (b *ErrorBody) Err() error {
	cause := ErrInternal
	for _, c := range errorCodes {
		if c.code == b.Code {
			cause = c.err
			break
		}
	}
	return &RemoteError{Code: b.Code, Message: b.Message, cause: cause}
}
