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
package rshim

// This package talks to the rshim register file of a tiled multi-core chip
// through its device node. Registers are 64 bits wide and addressed by a
// (channel, register address) pair; the node is either a seekable file
// (pread/pwrite at an encoded offset) or a control-request-only device
// (ioctl with an explicit address/data message). Which one we got is
// detected once, when the node is opened.

import (
	"encoding/binary"

	"github.com/golang/glog"
	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

const (
	// ChannelRshim is the management-bus channel of the register file.
	// It carries, among others, the CoreSight control register.
	ChannelRshim = 0x1

	// RegCoresightCtl is the address of the 64-bit CoreSight control
	// register within ChannelRshim.
	RegCoresightCtl = 0x0e00
)

// RegisterIO is the capability needed to reach rshim registers. Both the
// positioned-I/O and the control-request implementations below satisfy it,
// and so can transports created elsewhere (a remote rshim over a socket,
// a fake for tests).
type RegisterIO interface {
	ReadRegister(channel, addr int) (uint64, error)
	WriteRegister(channel, addr int, value uint64) error
	Close() error
}

// fileOffset maps a (channel, register address) pair onto the byte offset
// understood by the rshim device node.
func fileOffset(channel, addr int) int64 {
	return int64((addr & 0xffff) | (channel << 16))
}

// needsCtl reports whether a probe failure means the node only accepts
// control requests.
func needsCtl(err error) bool {
	return errors.Cause(err) == unix.ENOSYS
}

// Open opens the rshim device node and picks an I/O strategy for it: a
// probe read of the CoreSight control register tells positioned I/O and
// control-request-only nodes apart. The probe is a plain status read and
// has no effect on the hardware.
func Open(path string) (RegisterIO, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, errors.Annotatef(err, "unable to open %s", path)
	}
	dio := &devIO{node: node{fd: fd, path: path}}
	if _, err := dio.ReadRegister(ChannelRshim, RegCoresightCtl); needsCtl(err) {
		glog.Infof("%s does not support positioned I/O, using control requests", path)
		return &ctlIO{node: node{fd: fd, path: path}}, nil
	}
	// Any other probe outcome keeps positioned I/O; per-operation errors
	// propagate unchanged.
	return dio, nil
}

type node struct {
	fd   int
	path string
}

func (n *node) Close() error {
	return unix.Close(n.fd)
}

// devIO reaches registers with positioned reads/writes on the device node.
type devIO struct {
	node
}

func (d *devIO) ReadRegister(channel, addr int) (uint64, error) {
	var buf [8]byte
	rc, err := unix.Pread(d.fd, buf[:], fileOffset(channel, addr))
	if err != nil {
		return 0, errors.Annotatef(err, "%s: read of register 0x%x failed", d.path, addr)
	}
	if rc != len(buf) {
		return 0, errors.Errorf("%s: short read of register 0x%x (%d of %d)", d.path, addr, rc, len(buf))
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (d *devIO) WriteRegister(channel, addr int, value uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	rc, err := unix.Pwrite(d.fd, buf[:], fileOffset(channel, addr))
	if err != nil {
		return errors.Annotatef(err, "%s: write of register 0x%x failed", d.path, addr)
	}
	if rc != len(buf) {
		return errors.Errorf("%s: short write of register 0x%x (%d of %d)", d.path, addr, rc, len(buf))
	}
	return nil
}
