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
	"fmt"
	"io"
	"log"
	"math/big"
	"net"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fentec-project/spade/authority"
	"github.com/fentec-project/spade/codec"
	"github.com/fentec-project/spade/equality"
	"github.com/pkg/errors"
)

// fileRefPrefix is accepted in front of cipher file references.
const fileRefPrefix = "file:"

// Server answers protocol requests for an authority.Service.
type Server struct {
	service *authority.Service
	cfg     Config
	log     *log.Logger

	wg sync.WaitGroup
}

// NewServer returns a server for service. A nil logger discards all
// log output.
func NewServer(service *authority.Service, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Server{
		service: service,
		cfg:     cfg,
		log:     logger,
	}
}

// ListenAndServe listens on the configured address and serves until
// ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "cannot listen on %s", s.cfg.Addr)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and handles each of them in its own
// goroutine. When ctx is done the listener is closed and Serve returns
// after all open connections are handled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Printf("listening on %s", ln.Addr())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-done:
		}
	}()

	defer s.wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			ln.Close()
			return errors.Wrap(err, "accept failed")
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	remote := conn.RemoteAddr()
	if s.cfg.Timeout > 0 {
		conn.SetDeadline(start.Add(s.cfg.Timeout))
	}

	payload, err := ReadFrame(conn, s.cfg.MaxFrameSize)
	if err != nil {
		s.log.Printf("%s: %v", remote, err)
		return
	}
	req, err := DecodeRequest(payload)
	if err != nil {
		s.log.Printf("%s: %v", remote, err)
		return
	}

	resp := s.Handle(req)
	out, err := json.Marshal(resp)
	if err != nil {
		s.log.Printf("%s: cannot encode response: %v", remote, err)
		return
	}
	if err := WriteFrame(conn, out); err != nil {
		s.log.Printf("%s: %v", remote, err)
		return
	}

	status := "ok"
	if resp.Error != nil {
		status = resp.Error.Code
	}
	s.log.Printf("%s: %s %s, received %d bytes, sent %d bytes in %s",
		remote, req.Action, status, len(payload), len(out), time.Since(start))
}

// Handle validates and executes a single request. Failures are
// reported in the Error field of the response; a panic while handling
// the request is reported as an internal error.
func (s *Server) Handle(req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Printf("panic while handling %s: %v", req.Action, r)
			resp = errorResponse(fmt.Errorf("panic: %v", r))
		}
	}()

	if err := req.Validate(); err != nil {
		return errorResponse(err)
	}

	var err error
	switch req.Action {
	case ActionRegisterUser:
		resp, err = s.registerUser()
	case ActionGetPublicParameters:
		resp, err = s.publicParameters(*req.N)
	case ActionStoreData:
		resp, err = s.storeData(*req.ID, *req.N, req.EncryptedData)
	case ActionDeriveKey:
		resp, err = s.deriveKey(*req.UserID, req.V)
	default:
		err = errors.Wrapf(ErrUnknownAction, "%q", req.Action)
	}
	if err != nil {
		if errors.Is(err, authority.ErrUserNotFound) || errors.Is(err, authority.ErrNoStoredData) {
			s.log.Printf("%s rejected: %v", req.Action, err)
		}
		return errorResponse(err)
	}

	resp.Version = ProtocolVersion
	return resp
}

func errorResponse(err error) *Response {
	return &Response{
		Version: ProtocolVersion,
		Error:   newErrorBody(err),
	}
}

func (s *Server) registerUser() (*Response, error) {
	u, err := s.service.RegisterUser()
	if err != nil {
		return nil, err
	}
	s.log.Printf("registered user %d", u.ID)

	return &Response{
		UserID:      &u.ID,
		Alpha:       u.Alpha,
		PublicValue: u.PublicValue,
	}, nil
}

func (s *Server) publicParameters(n int) (*Response, error) {
	p, err := s.service.PublicParameters(n)
	if err != nil {
		return nil, err
	}

	return &Response{Q: p.Q, G: p.G, MPK: p.MPK}, nil
}

func (s *Server) storeData(userID int64, n int, d *EncryptedData) (*Response, error) {
	ct, err := s.resolve(d)
	if err != nil {
		return nil, err
	}
	if err := s.service.StoreData(userID, n, ct); err != nil {
		return nil, err
	}
	s.log.Printf("stored %d values for user %d", n, userID)

	return &Response{}, nil
}

func (s *Server) deriveKey(userID int64, v *big.Int) (*Response, error) {
	k, err := s.service.DeriveKey(userID, v)
	if err != nil {
		return nil, err
	}
	n := k.Record.N

	return &Response{
		DK: k.DK,
		EncryptedData: &EncryptedData{
			H: k.Record.Ciphertext.H,
			C: k.Record.Ciphertext.C,
		},
		N: &n,
	}, nil
}

// resolve returns the ciphertext of d, reading referenced cipher files
// from the data directory.
func (s *Server) resolve(d *EncryptedData) (*equality.Ciphertext, error) {
	if d.File == "" {
		return d.Ciphertext(), nil
	}
	if s.cfg.DataDir == "" {
		return nil, errors.Wrap(equality.ErrInvalidParameter, "file references are disabled")
	}

	// cleaning the reference as an absolute path keeps it below DataDir
	ref := strings.TrimPrefix(d.File, fileRefPrefix)
	full := filepath.Join(s.cfg.DataDir, filepath.FromSlash(path.Clean("/"+ref)))

	ct, err := codec.LoadCipherFile(full)
	if err != nil {
		return nil, errors.Wrapf(equality.ErrInvalidParameter, "cannot load %s: %v", ref, err)
	}
	return ct, nil
}
