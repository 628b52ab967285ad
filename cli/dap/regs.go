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

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// DPReg is a debug-port register address.
type DPReg uint8

const (
	DPIDR      DPReg = 0x0
	DPCtrlStat DPReg = 0x4
	DPSelect   DPReg = 0x8
	DPRDBuff   DPReg = 0xC
)

func (r DPReg) String() string {
	switch r {
	case DPIDR:
		return "DPIDR"
	case DPCtrlStat:
		return "CTRL/STAT"
	case DPSelect:
		return "SELECT"
	case DPRDBuff:
		return "RDBUFF"
	}
	return fmt.Sprintf("DP?(0x%x)", int(r))
}

// APReg is an access-port register address (the full byte offset; the
// bank half travels separately, in DP SELECT).
type APReg uint8

const (
	APCSW  APReg = 0x00
	APTAR  APReg = 0x04
	APDRW  APReg = 0x0C
	APBD0  APReg = 0x10
	APBD1  APReg = 0x14
	APBD2  APReg = 0x18
	APBD3  APReg = 0x1C
	APCFG  APReg = 0xF4
	APBASE APReg = 0xF8
	APIDR  APReg = 0xFC
)

func (r APReg) String() string {
	switch r {
	case APCSW:
		return "CSW"
	case APTAR:
		return "TAR"
	case APDRW:
		return "DRW"
	case APBD0:
		return "BD0"
	case APBD1:
		return "BD1"
	case APBD2:
		return "BD2"
	case APBD3:
		return "BD3"
	case APCFG:
		return "CFG"
	case APBASE:
		return "BASE"
	case APIDR:
		return "IDR"
	}
	return fmt.Sprintf("AP?(0x%x)", int(r))
}

// Bank is the SELECT bank nibble a register lives in.
func (r APReg) Bank() uint8 {
	return uint8(r) >> 4
}

// APBAPIDR identifies AP 0: a CoreSight APB-AP, the only port the bridge
// implements.
const APBAPIDR uint32 = 0x44770002

// CTRL/STAT bits of interest. Both power domains behind the bridge are
// always up, so reads acknowledge unconditionally.
const (
	CtrlStatCDbgPwrUpAck uint32 = 1 << 29
	CtrlStatCSysPwrUpAck uint32 = 1 << 31
)

// SELECT fields.
const (
	selectAPSelMask   uint32 = 0xff000000
	selectAPSelShift         = 24
	selectAPBankMask  uint32 = 0x000000f0
	selectAPBankShift        = 4
)

// CSW fields: transfer size in the low bits, auto-increment mode above
// them. The increment step is the transfer size in half-words.
const (
	CSWSizeMask      uint32 = 0x03
	CSWSize16        uint32 = 0x01
	CSWSize32        uint32 = 0x02
	CSWAddrIncMask   uint32 = 0x30
	CSWAddrIncSingle uint32 = 0x10
)

// ParseDPReg resolves a register name or numeric address.
func ParseDPReg(s string) (DPReg, error) {
	switch strings.ToUpper(s) {
	case "DPIDR", "IDR":
		return DPIDR, nil
	case "CTRLSTAT", "CTRL/STAT", "STAT":
		return DPCtrlStat, nil
	case "SELECT":
		return DPSelect, nil
	case "RDBUFF":
		return DPRDBuff, nil
	}
	if v, err := strconv.ParseUint(s, 0, 8); err == nil {
		return DPReg(v), nil
	}
	return 0, errors.Errorf("unknown DP register %q", s)
}

// ParseAPReg resolves a register name or numeric address.
func ParseAPReg(s string) (APReg, error) {
	switch strings.ToUpper(s) {
	case "CSW":
		return APCSW, nil
	case "TAR":
		return APTAR, nil
	case "DRW":
		return APDRW, nil
	case "BD0":
		return APBD0, nil
	case "BD1":
		return APBD1, nil
	case "BD2":
		return APBD2, nil
	case "BD3":
		return APBD3, nil
	case "CFG":
		return APCFG, nil
	case "BASE":
		return APBASE, nil
	case "IDR":
		return APIDR, nil
	}
	if v, err := strconv.ParseUint(s, 0, 8); err == nil {
		return APReg(v), nil
	}
	return 0, errors.Errorf("unknown AP register %q", s)
}
