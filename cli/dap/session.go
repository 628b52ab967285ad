//
// Copyright (c) 2014-2019 Cesanta Software Limited
// All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
package dap

// Package dap presents a tiled chip's rshim-attached debug bus as an
// ARM-style two-level debug port: a DP with an APB-AP behind it. The DP
// and most AP registers are emulated from session state; only the AP
// transfer registers (DRW, BD0..BD3) reach the hardware, through the
// CoreSight control register.

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"
	flock "github.com/theckman/go-flock"

	"github.com/mongoose-os/memdap/cli/dap/coresight"
	"github.com/mongoose-os/memdap/cli/dap/rshim"
)

// Opts configures a Session.
type Opts struct {
	// Device is the rshim device node to drive.
	Device string
	// ADIVersion is the debug interface generation the caller speaks.
	// Only generation 5 is supported; 0 means 5.
	ADIVersion int
	// PollTimeout bounds the completion wait of one debug-bus
	// transaction. 0 waits forever.
	PollTimeout time.Duration
}

// Session is one debugger's view of the chip. It owns the emulated
// register file and the connection to the device node. Not safe for
// concurrent use.
type Session struct {
	opts Opts
	io   rshim.RegisterIO
	eng  *coresight.Engine
	lock *flock.Flock

	// Debug-port state.
	dpIDCode   uint32 // reset value; nothing programs it today
	dpCtrlStat uint32
	apSel      uint32
	apBank     uint32

	// Access-port state (bank 0).
	apCSW    uint32
	apTAR    uint32
	apTARInc uint32

	// Most recent operation failure, surfaced and reset by Run.
	fault error
	// The unsupported-generation complaint is logged once per session.
	adiv6Flagged bool
}

// NewSession returns an unconnected session.
func NewSession(opts Opts) *Session {
	if opts.ADIVersion == 0 {
		opts.ADIVersion = 5
	}
	return &Session{opts: opts}
}

// LockPath is where the advisory lock for a device node lives. Locking a
// sibling file keeps /dev itself untouched and also covers nodes that
// only exist behind control requests.
func LockPath(device string) string {
	name := "memdap" + strings.Replace(device, "/", "-", -1) + ".lock"
	return filepath.Join(os.TempDir(), name)
}

// Connect locks and opens the configured device node and resets the
// emulated register file. The lock guards the one control register
// against a second debugger on the same node.
func (s *Session) Connect(ctx context.Context) error {
	if s.io != nil {
		return errors.Errorf("already connected to %s", s.opts.Device)
	}
	lock := flock.NewFlock(LockPath(s.opts.Device))
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Annotatef(err, "failed to lock %s", s.opts.Device)
	}
	if !locked {
		return errors.Errorf("%s is in use by another process", s.opts.Device)
	}
	io, err := rshim.Open(s.opts.Device)
	if err != nil {
		lock.Unlock()
		return errors.Trace(err)
	}
	s.Attach(io)
	s.lock = lock
	glog.Infof("connected to %s", s.opts.Device)
	return nil
}

// Attach installs an already-open backend and resets the emulated
// register file. Connect does this with a freshly opened device node;
// Attach is the seam for backends created elsewhere (tests, remote
// transports).
func (s *Session) Attach(io rshim.RegisterIO) {
	s.io = io
	s.eng = coresight.NewEngine(io, s.opts.PollTimeout)
	s.dpIDCode = 0
	s.dpCtrlStat = 0
	s.apSel = 0
	s.apBank = 0
	s.apCSW = 0
	s.apTAR = 0
	s.apTARInc = 0
	s.fault = nil
	s.adiv6Flagged = false
}

// Disconnect closes the backend and releases the device lock. Register
// state keeps its last values until the next Connect or Attach.
func (s *Session) Disconnect() {
	if s.io != nil {
		if err := s.io.Close(); err != nil {
			glog.Errorf("error closing %s: %v", s.opts.Device, err)
		}
		s.io = nil
		s.eng = nil
	}
	if s.lock != nil {
		s.lock.Unlock()
		s.lock = nil
	}
}

// Connected reports whether a backend is attached.
func (s *Session) Connected() bool {
	return s.io != nil
}

// Run reports the most recent register operation failure since the last
// Run and resets it. There is no queue behind this: operations execute
// as they are issued, Run only surfaces what already happened.
func (s *Session) Run() error {
	err := s.fault
	s.fault = nil
	return err
}

// Abort acknowledges the request. Transactions complete synchronously,
// so there is never anything in flight to cancel.
func (s *Session) Abort(ctx context.Context) error {
	return nil
}

// The control-register protocol runs at whatever pace the rshim serves
// it, so the usual adapter speed knobs have nothing to adjust and the
// reset lines do not exist. The hooks accept and echo.

func (s *Session) Reset(trst, srst bool) error {
	return nil
}

func (s *Session) Speed(hz int) error {
	return nil
}

func (s *Session) KHz(khz int) (int, error) {
	return khz, nil
}

func (s *Session) SpeedDiv(speed int) (int, error) {
	return speed, nil
}
