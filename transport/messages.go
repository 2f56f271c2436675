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
	"bytes"
	"encoding/json"
	"io"
	"math/big"

	"github.com/fentec-project/spade/data"
	"github.com/fentec-project/spade/equality"
	"github.com/pkg/errors"
)

// ProtocolVersion is the version of the request schema.
const ProtocolVersion = 1

// Request actions.
const (
	ActionRegisterUser        = "register_user"
	ActionGetPublicParameters = "get_public_parameters"
	ActionStoreData           = "store_data"
	ActionDeriveKey           = "derive_key"
)

// EncryptedData is a ciphertext sent inline as H and C, or a reference
// to a cipher file readable by the server.
type EncryptedData struct {
	H    data.Vector `json:"h,omitempty"`
	C    data.Vector `json:"c,omitempty"`
	File string      `json:"file,omitempty"`
}

// Request is a protocol request. Which of the optional fields must be
// set depends on Action; see Validate.
type Request struct {
	Version       int            `json:"version"`
	Action        string         `json:"action"`
	N             *int           `json:"n,omitempty"`
	ID            *int64         `json:"id,omitempty"`
	UserID        *int64         `json:"user_id,omitempty"`
	V             *big.Int       `json:"v,omitempty"`
	EncryptedData *EncryptedData `json:"encrypted_data,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is a protocol response. Exactly the fields belonging to the
// request's action are set, or only Error.
type Response struct {
	Version int `json:"version"`

	// register_user
	UserID      *int64   `json:"user_id,omitempty"`
	Alpha       *big.Int `json:"alpha_j,omitempty"`
	PublicValue *big.Int `json:"g_alpha_j,omitempty"`

	// get_public_parameters
	Q   *big.Int    `json:"q,omitempty"`
	G   *big.Int    `json:"g,omitempty"`
	MPK data.Vector `json:"mpk,omitempty"`

	// derive_key
	DK            data.Vector    `json:"dk,omitempty"`
	EncryptedData *EncryptedData `json:"encrypted_data,omitempty"`
	N             *int           `json:"n,omitempty"`

	Error *ErrorBody `json:"error,omitempty"`
}

// Ciphertext returns the inline ciphertext of d.
func (d *EncryptedData) Ciphertext() *equality.Ciphertext {
	return &equality.Ciphertext{H: d.H, C: d.C}
}

func (d *EncryptedData) validate() error {
	if d.File != "" {
		if len(d.H) > 0 || len(d.C) > 0 {
			return errors.Wrap(equality.ErrInvalidParameter, "encrypted_data holds both a file and values")
		}
		return nil
	}
	if len(d.H) == 0 || len(d.C) == 0 {
		return errors.Wrap(equality.ErrInvalidParameter, "encrypted_data is empty")
	}
	return nil
}

// Validate checks the version of r and that exactly the fields of its
// action are present.
func (r *Request) Validate() error {
	if r.Version != ProtocolVersion {
		return errors.Wrapf(ErrUnsupportedVersion, "version %d", r.Version)
	}

	present := map[string]bool{
		"n":              r.N != nil,
		"id":             r.ID != nil,
		"user_id":        r.UserID != nil,
		"v":              r.V != nil,
		"encrypted_data": r.EncryptedData != nil,
	}

	var fields []string
	switch r.Action {
	case ActionRegisterUser:
	case ActionGetPublicParameters:
		fields = []string{"n"}
	case ActionStoreData:
		fields = []string{"id", "encrypted_data", "n"}
	case ActionDeriveKey:
		fields = []string{"user_id", "v"}
	default:
		return errors.Wrapf(ErrUnknownAction, "%q", r.Action)
	}

	for _, f := range fields {
		if !present[f] {
			return errors.Wrapf(equality.ErrInvalidParameter, "%s requires field %s", r.Action, f)
		}
		delete(present, f)
	}
	for f, ok := range present {
		if ok {
			return errors.Wrapf(equality.ErrInvalidParameter, "%s does not take field %s", r.Action, f)
		}
	}

	if r.EncryptedData != nil {
		return r.EncryptedData.validate()
	}
	return nil
}

// DecodeRequest parses a request payload. Unknown fields and trailing
// data are rejected as ErrMalformedFrame; the request is not validated.
func DecodeRequest(payload []byte) (*Request, error) {
	req := &Request{}
	if err := decodeStrict(payload, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeResponse parses a response payload.
func DecodeResponse(payload []byte) (*Response, error) {
	resp := &Response{}
	if err := decodeStrict(payload, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func decodeStrict(payload []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(ErrMalformedFrame, err.Error())
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.Wrap(ErrMalformedFrame, "trailing data after message")
	}
	return nil
}
