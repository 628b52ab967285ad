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
	"context"

	"github.com/golang/glog"
)

// ReadDPReg reads a debug-port register. The DP is emulated entirely from
// session state, so reads never touch the hardware and never fail;
// registers without backing state read as zero.
func (s *Session) ReadDPReg(ctx context.Context, reg DPReg) (uint32, error) {
	var value uint32
	switch reg {
	case DPIDR:
		value = s.dpIDCode
	case DPCtrlStat:
		value = CtrlStatCDbgPwrUpAck | CtrlStatCSysPwrUpAck
	}
	glog.V(4).Infof("%s == 0x%08x", reg, value)
	return value, nil
}

// WriteDPReg writes a debug-port register. SELECT routes subsequent AP
// accesses; CTRL/STAT is stored as written. Writes to anything else are
// accepted and dropped.
func (s *Session) WriteDPReg(ctx context.Context, reg DPReg, value uint32) error {
	glog.V(4).Infof("%s = 0x%08x", reg, value)
	switch reg {
	case DPCtrlStat:
		s.dpCtrlStat = value
	case DPSelect:
		s.apSel = (value & selectAPSelMask) >> selectAPSelShift
		s.apBank = (value & selectAPBankMask) >> selectAPBankShift
	default:
		glog.Infof("%s has no backing state, write ignored", reg)
	}
	return nil
}
