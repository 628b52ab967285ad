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
package memap

// Package memap moves target memory through the MEM-AP register protocol:
// TAR holds the address, DRW transfers words with auto-increment, BD0..BD3
// expose a 16-byte window. It routes DP SELECT the way an ADIv5 debugger
// core does, pointing it at the register's bank before each access.

import (
	"context"

	"github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/mongoose-os/memdap/cli/dap"
)

// Client drives one access port of a session.
type Client struct {
	sess  *dap.Session
	apSel uint8

	selectValue uint32
	selectKnown bool
}

func NewClient(sess *dap.Session, apSel uint8) *Client {
	return &Client{sess: sess, apSel: apSel}
}

// selectAP points DP SELECT at our AP and the bank reg lives in. The last
// written value is cached, repeat selections are skipped.
func (c *Client) selectAP(ctx context.Context, reg dap.APReg) error {
	sv := uint32(c.apSel)<<24 | uint32(reg.Bank())<<4
	if c.selectKnown && sv == c.selectValue {
		return nil
	}
	if err := c.sess.WriteDPReg(ctx, dap.DPSelect, sv); err != nil {
		return errors.Annotatef(err, "failed to select AP %d bank %d", c.apSel, reg.Bank())
	}
	c.selectValue = sv
	c.selectKnown = true
	return nil
}

// ReadReg reads an access-port register, routing SELECT first.
func (c *Client) ReadReg(ctx context.Context, reg dap.APReg) (uint32, error) {
	if err := c.selectAP(ctx, reg); err != nil {
		return 0, errors.Trace(err)
	}
	v, err := c.sess.ReadAPReg(ctx, int(c.apSel), reg)
	return v, errors.Trace(err)
}

// WriteReg writes an access-port register, routing SELECT first.
func (c *Client) WriteReg(ctx context.Context, reg dap.APReg, value uint32) error {
	if err := c.selectAP(ctx, reg); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.sess.WriteAPReg(ctx, int(c.apSel), reg, value))
}

// Init checks the port's identity and configures word transfers with
// auto-increment. Ports other than 0 do not identify themselves, so only
// AP 0 is verified.
func (c *Client) Init(ctx context.Context) error {
	idr, err := c.ReadReg(ctx, dap.APIDR)
	if err != nil {
		return errors.Annotatef(err, "failed to read AP%d IDR", c.apSel)
	}
	if c.apSel == 0 && idr != dap.APBAPIDR {
		return errors.Errorf("AP%d is not an APB-AP (IDR 0x%08x, want 0x%08x)", c.apSel, idr, dap.APBAPIDR)
	}
	glog.V(3).Infof("AP%d IDR 0x%08x", c.apSel, idr)
	return errors.Trace(c.WriteReg(ctx, dap.APCSW, dap.CSWAddrIncSingle|dap.CSWSize32))
}

// ReadWord reads the 32-bit word at addr.
func (c *Client) ReadWord(ctx context.Context, addr uint32) (uint32, error) {
	if err := c.WriteReg(ctx, dap.APTAR, addr); err != nil {
		return 0, errors.Trace(err)
	}
	v, err := c.ReadReg(ctx, dap.APDRW)
	return v, errors.Trace(err)
}

// WriteWord writes the 32-bit word at addr.
func (c *Client) WriteWord(ctx context.Context, addr uint32, value uint32) error {
	if err := c.WriteReg(ctx, dap.APTAR, addr); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.WriteReg(ctx, dap.APDRW, value))
}

// ReadWords reads n consecutive words starting at the word-aligned addr,
// letting the port's auto-increment advance the address.
func (c *Client) ReadWords(ctx context.Context, addr uint32, n int) ([]uint32, error) {
	if addr%4 != 0 {
		return nil, errors.Errorf("address 0x%08x is not word-aligned", addr)
	}
	if err := c.WriteReg(ctx, dap.APTAR, addr); err != nil {
		return nil, errors.Trace(err)
	}
	words := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		v, err := c.ReadReg(ctx, dap.APDRW)
		if err != nil {
			return nil, errors.Annotatef(err, "read failed at word %d (0x%08x)", i, addr+uint32(4*i))
		}
		words = append(words, v)
	}
	glog.V(3).Infof("ReadWords(0x%08x, %d)", addr, n)
	return words, nil
}

// WriteWords writes consecutive words starting at the word-aligned addr.
func (c *Client) WriteWords(ctx context.Context, addr uint32, data []uint32) error {
	if addr%4 != 0 {
		return errors.Errorf("address 0x%08x is not word-aligned", addr)
	}
	if err := c.WriteReg(ctx, dap.APTAR, addr); err != nil {
		return errors.Trace(err)
	}
	for i, v := range data {
		if err := c.WriteReg(ctx, dap.APDRW, v); err != nil {
			return errors.Annotatef(err, "write failed at word %d (0x%08x)", i, addr+uint32(4*i))
		}
	}
	glog.V(3).Infof("WriteWords(0x%08x, %d)", addr, len(data))
	return nil
}

// ReadQuad reads the four words of the 16-byte window containing addr
// through the banked transfer registers. The window is read in one TAR
// setting and does not touch the auto-increment state.
func (c *Client) ReadQuad(ctx context.Context, addr uint32) ([4]uint32, error) {
	var quad [4]uint32
	if err := c.WriteReg(ctx, dap.APTAR, addr); err != nil {
		return quad, errors.Trace(err)
	}
	for i, reg := range []dap.APReg{dap.APBD0, dap.APBD1, dap.APBD2, dap.APBD3} {
		v, err := c.ReadReg(ctx, reg)
		if err != nil {
			return quad, errors.Annotatef(err, "failed to read %s", reg)
		}
		quad[i] = v
	}
	return quad, nil
}
