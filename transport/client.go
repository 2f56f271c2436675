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
	"context"
	"encoding/json"
	"math/big"
	"net"
	"time"

	"github.com/fentec-project/spade/authority"
	"github.com/fentec-project/spade/equality"
	"github.com/pkg/errors"
)

// Client sends protocol requests to a Server, one connection per
// request.
type Client struct {
	cfg    Config
	dialer net.Dialer
}

// NewClient returns a client for the server at cfg.Addr.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Do sends req and returns the response. Error responses are returned
// as a *RemoteError, which matches the protocol's sentinel errors with
// errors.Is.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Version == 0 {
		req.Version = ProtocolVersion
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode request")
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to %s", c.cfg.Addr)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := closeOnDone(ctx, conn)
	defer stop()

	if err := WriteFrame(conn, payload); err != nil {
		return nil, err
	}
	out, err := ReadFrame(conn, c.cfg.MaxFrameSize)
	if err != nil {
		return nil, err
	}
	resp, err := DecodeResponse(out)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error.Err()
	}

	return resp, nil
}

// closeOnDone closes conn when ctx is cancelled before stop is called.
func closeOnDone(ctx context.Context, conn net.Conn) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.SetDeadline(time.Now())
		case <-done:
		}
	}()

	return func() { close(done) }
}

func incomplete(action string) error {
	return errors.Wrapf(ErrMalformedFrame, "incomplete %s response", action)
}

// Register registers a new data owner.
func (c *Client) Register(ctx context.Context) (*authority.UserIdentity, error) {
	resp, err := c.Do(ctx, &Request{Action: ActionRegisterUser})
	if err != nil {
		return nil, err
	}
	if resp.UserID == nil || resp.Alpha == nil || resp.PublicValue == nil {
		return nil, incomplete(ActionRegisterUser)
	}

	return &authority.UserIdentity{
		ID:          *resp.UserID,
		Alpha:       resp.Alpha,
		PublicValue: resp.PublicValue,
	}, nil
}

// PublicParameters fetches the group parameters and the master public
// key for vectors of length n.
func (c *Client) PublicParameters(ctx context.Context, n int) (*authority.PublicParameters, error) {
	resp, err := c.Do(ctx, &Request{Action: ActionGetPublicParameters, N: &n})
	if err != nil {
		return nil, err
	}
	if resp.Q == nil || resp.G == nil || len(resp.MPK) != n {
		return nil, incomplete(ActionGetPublicParameters)
	}

	return &authority.PublicParameters{Q: resp.Q, G: resp.G, MPK: resp.MPK}, nil
}

// StoreData submits ct as the data of user userID.
func (c *Client) StoreData(ctx context.Context, userID int64, ct *equality.Ciphertext) error {
	n, err := ct.Len()
	if err != nil {
		return err
	}
	_, err = c.Do(ctx, &Request{
		Action:        ActionStoreData,
		ID:            &userID,
		N:             &n,
		EncryptedData: &EncryptedData{H: ct.H, C: ct.C},
	})

	return err
}

// StoreDataFile submits a reference to a cipher file holding n values,
// to be read by the server from its data directory.
func (c *Client) StoreDataFile(ctx context.Context, userID int64, n int, file string) error {
	_, err := c.Do(ctx, &Request{
		Action:        ActionStoreData,
		ID:            &userID,
		N:             &n,
		EncryptedData: &EncryptedData{File: file},
	})

	return err
}

// DeriveKey requests the functional key for value v on the data of
// user userID, together with that data.
func (c *Client) DeriveKey(ctx context.Context, userID int64, v *big.Int) (*authority.DerivedKey, error) {
	resp, err := c.Do(ctx, &Request{Action: ActionDeriveKey, UserID: &userID, V: v})
	if err != nil {
		return nil, err
	}
	if resp.N == nil || resp.EncryptedData == nil || len(resp.DK) != *resp.N {
		return nil, incomplete(ActionDeriveKey)
	}

	return &authority.DerivedKey{
		UserID: userID,
		V:      v,
		DK:     resp.DK,
		Record: &authority.EncryptedRecord{
			UserID:     userID,
			N:          *resp.N,
			Ciphertext: resp.EncryptedData.Ciphertext(),
		},
	}, nil
}
