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

import (
	"fmt"
)

// Action selects the direction of a control-word transaction.
type Action uint8

const (
	ActionWrite Action = 0
	ActionRead  Action = 1
)

func (a Action) String() string {
	switch a {
	case ActionWrite:
		return "write"
	case ActionRead:
		return "read"
	}
	return fmt.Sprintf("?(%d)", int(a))
}

// CtlWord is the 64-bit CoreSight control register value. The low half
// carries the request (go bit, direction, word address), the high half
// the 32-bit data payload. The hardware clears the go bit when it is done
// with the request.
type CtlWord uint64

const (
	ctlGoMask     uint64 = 0x00000001
	ctlGoShift           = 0
	ctlActionMask uint64 = 0x00000002
	ctlActionShift       = 1
	ctlAddrMask   uint64 = 0x7ffffffc
	ctlAddrShift         = 2
	ctlErrMask    uint64 = 0x80000000
	ctlErrShift          = 31
	ctlDataMask   uint64 = 0xffffffff00000000
	ctlDataShift         = 32
)

func (w CtlWord) get(mask uint64, shift uint) uint64 {
	return (uint64(w) & mask) >> shift
}

func (w CtlWord) with(mask uint64, shift uint, v uint64) CtlWord {
	return CtlWord((uint64(w) &^ mask) | ((v << shift) & mask))
}

// Go reports whether a transaction is (still) in flight.
func (w CtlWord) Go() bool { return w.get(ctlGoMask, ctlGoShift) != 0 }

func (w CtlWord) Action() Action { return Action(w.get(ctlActionMask, ctlActionShift)) }

// Addr is the word-granular bus address of the transaction.
func (w CtlWord) Addr() uint32 { return uint32(w.get(ctlAddrMask, ctlAddrShift)) }

// Err is a status bit the hardware may raise on a failed transaction.
// Nothing reads it today: the register file gives no well-defined way to
// clear it, so completion is judged by the go bit alone.
func (w CtlWord) Err() bool { return w.get(ctlErrMask, ctlErrShift) != 0 }

func (w CtlWord) Data() uint32 { return uint32(w.get(ctlDataMask, ctlDataShift)) }

func (w CtlWord) WithGo(v bool) CtlWord {
	var b uint64
	if v {
		b = 1
	}
	return w.with(ctlGoMask, ctlGoShift, b)
}

func (w CtlWord) WithAction(a Action) CtlWord {
	return w.with(ctlActionMask, ctlActionShift, uint64(a))
}

func (w CtlWord) WithAddr(a uint32) CtlWord {
	return w.with(ctlAddrMask, ctlAddrShift, uint64(a))
}

func (w CtlWord) WithData(d uint32) CtlWord {
	return w.with(ctlDataMask, ctlDataShift, uint64(d))
}

func (w CtlWord) String() string {
	gb := 0
	if w.Go() {
		gb = 1
	}
	eb := 0
	if w.Err() {
		eb = 1
	}
	return fmt.Sprintf("{go=%d %s addr=0x%08x err=%d data=0x%08x}", gb, w.Action(), w.Addr(), eb, w.Data())
}
