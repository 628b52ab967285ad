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
package coresight

// This package drives the CoreSight control register of the rshim: a
// single 64-bit register through which 32-bit debug-bus transactions are
// issued one at a time. A transaction is started by writing a control
// word with the go bit set and is finished when a readback shows the go
// bit clear.

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/mongoose-os/memdap/cli/dap/rshim"
)

// Engine issues debug-bus transactions through the control register.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	io          rshim.RegisterIO
	pollTimeout time.Duration
}

// NewEngine returns an engine over io. pollTimeout bounds how long one
// transaction may stay in flight; 0 polls forever.
func NewEngine(io rshim.RegisterIO, pollTimeout time.Duration) *Engine {
	return &Engine{io: io, pollTimeout: pollTimeout}
}

// ReadWord reads one 32-bit word at offset within tile.
func (e *Engine) ReadWord(ctx context.Context, tile int, offset uint32) (uint32, error) {
	w := CtlWord(0).WithAddr(BusAddr(tile, offset)).WithAction(ActionRead).WithGo(true)
	res, err := e.transact(ctx, w)
	if err != nil {
		return 0, errors.Trace(err)
	}
	glog.V(4).Infof("cs read  t%d +0x%07x == 0x%08x", tile, offset, res.Data())
	return res.Data(), nil
}

// WriteWord writes one 32-bit word at offset within tile.
func (e *Engine) WriteWord(ctx context.Context, tile int, offset uint32, data uint32) error {
	w := CtlWord(0).WithAddr(BusAddr(tile, offset)).WithAction(ActionWrite).WithData(data).WithGo(true)
	glog.V(4).Infof("cs write t%d +0x%07x = 0x%08x", tile, offset, data)
	_, err := e.transact(ctx, w)
	return errors.Trace(err)
}

// transact starts one transaction and polls until the hardware clears the
// go bit. It returns the final control word, whose data field holds the
// result of a read.
func (e *Engine) transact(ctx context.Context, w CtlWord) (CtlWord, error) {
	if e == nil || e.io == nil {
		return 0, errors.New("no backend attached")
	}
	if err := e.io.WriteRegister(rshim.ChannelRshim, rshim.RegCoresightCtl, uint64(w)); err != nil {
		return 0, errors.Annotatef(err, "failed to start transaction %s", w)
	}
	var deadline time.Time
	if e.pollTimeout > 0 {
		deadline = time.Now().Add(e.pollTimeout)
	}
	for {
		v, err := e.io.ReadRegister(rshim.ChannelRshim, rshim.RegCoresightCtl)
		if err != nil {
			return 0, errors.Annotatef(err, "failed to poll transaction %s", w)
		}
		res := CtlWord(v)
		if !res.Go() {
			return res, nil
		}
		select {
		case <-ctx.Done():
			return 0, errors.Annotatef(ctx.Err(), "transaction %s aborted", w)
		default:
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return 0, errors.Timeoutf("transaction %s still in flight after %s", w, e.pollTimeout)
		}
	}
}
