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

import (
	"encoding/binary"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

// The rshim driver's control requests exchange a packed 12-byte message:
// a 32-bit register address followed immediately by a 64-bit value, both
// little-endian, with no padding between them.
const ctlMsgSize = 12

// Linux ioctl request encoding: dir(2)<<30 | size<<16 | type<<8 | nr,
// with dir = read|write for _IOWR requests.
const (
	iocWrite = 0x1
	iocRead  = 0x2

	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	reqReadReg  = (iocRead|iocWrite)<<iocDirShift | ctlMsgSize<<iocSizeShift | 'R'<<iocTypeShift | 0<<iocNrShift
	reqWriteReg = (iocRead|iocWrite)<<iocDirShift | ctlMsgSize<<iocSizeShift | 'R'<<iocTypeShift | 1<<iocNrShift
)

// ctlIO reaches registers with the rshim driver's control requests.
// Some deployments of the driver expose only this interface and fail
// positioned I/O with ENOSYS.
type ctlIO struct {
	node
}

func (c *ctlIO) ioctl(req uint32, msg []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(c.fd), uintptr(req), uintptr(unsafe.Pointer(&msg[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

func (c *ctlIO) ReadRegister(channel, addr int) (uint64, error) {
	var msg [ctlMsgSize]byte
	binary.LittleEndian.PutUint32(msg[0:4], uint32(fileOffset(channel, addr)))
	if err := c.ioctl(reqReadReg, msg[:]); err != nil {
		return 0, errors.Annotatef(err, "%s: read request for register 0x%x failed", c.path, addr)
	}
	return binary.LittleEndian.Uint64(msg[4:12]), nil
}

func (c *ctlIO) WriteRegister(channel, addr int, value uint64) error {
	var msg [ctlMsgSize]byte
	binary.LittleEndian.PutUint32(msg[0:4], uint32(fileOffset(channel, addr)))
	binary.LittleEndian.PutUint64(msg[4:12], value)
	if err := c.ioctl(reqWriteReg, msg[:]); err != nil {
		return errors.Annotatef(err, "%s: write request for register 0x%x failed", c.path, addr)
	}
	return nil
}
