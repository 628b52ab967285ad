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
	"github.com/juju/errors"

	"github.com/mongoose-os/memdap/cli/dap/coresight"
)

// hwRead resolves a linear debug-space address into tile coordinates and
// reads it through the transaction engine.
func (s *Session) hwRead(ctx context.Context, addr uint32) (uint32, error) {
	if s.eng == nil {
		return 0, errors.New("not connected")
	}
	tile, offset := coresight.TileAddr(addr)
	v, err := s.eng.ReadWord(ctx, tile, offset)
	return v, errors.Trace(err)
}

func (s *Session) hwWrite(ctx context.Context, addr uint32, value uint32) error {
	if s.eng == nil {
		return errors.New("not connected")
	}
	tile, offset := coresight.TileAddr(addr)
	return errors.Trace(s.eng.WriteWord(ctx, tile, offset, value))
}

// bdAddr is the target address of a banked transfer register: the 16-byte
// window at TAR plus the register's slot.
func bdAddr(tar uint32, reg APReg) uint32 {
	return (tar &^ 0xf) + (uint32(reg) & 0xc)
}

// drwAddr is the target address of a DRW transfer: word-aligned TAR plus
// the accumulated auto-increment.
func drwAddr(tar, inc uint32) uint32 {
	return (tar &^ 0x3) + inc
}

// advanceTAR applies the CSW-controlled auto-increment after a DRW
// transfer. The step is the configured transfer size in half-words.
func (s *Session) advanceTAR() {
	if s.apCSW&CSWAddrIncMask != 0 {
		s.apTARInc += (s.apCSW & CSWSizeMask) * 2
	}
}

// checkADIv6 refuses the six-register AP addressing variant. The bridge
// knows only the classic four-bit-bank layout; the refusal is logged once
// per session, then kept quiet.
func (s *Session) checkADIv6() error {
	if s.opts.ADIVersion != 6 {
		return nil
	}
	if !s.adiv6Flagged {
		glog.Errorf("ADIv6 (six-register AP addressing) is not supported")
		s.adiv6Flagged = true
	}
	return errors.NotSupportedf("ADIv6 DAP")
}

// ReadAPReg reads an access-port register. The transfer registers (DRW,
// BD0..BD3) reach through to the debug bus; CSW, CFG, BASE and IDR are
// served from session state; anything else fails. A failing read is also
// latched as the session fault for the next Run.
func (s *Session) ReadAPReg(ctx context.Context, apNum int, reg APReg) (uint32, error) {
	if err := s.checkADIv6(); err != nil {
		return 0, errors.Trace(err)
	}
	var value uint32
	var err error
	switch reg {
	case APCSW:
		value = s.apCSW
	case APCFG:
		// Little-endian, no large physical addresses.
		value = 0
	case APBASE:
		value = coresight.ROMBase
	case APIDR:
		if apNum == 0 {
			value = APBAPIDR
		}
	case APBD0, APBD1, APBD2, APBD3:
		value, err = s.hwRead(ctx, bdAddr(s.apTAR, reg))
	case APDRW:
		value, err = s.hwRead(ctx, drwAddr(s.apTAR, s.apTARInc))
		if err == nil {
			s.advanceTAR()
		}
	default:
		glog.Infof("%s has no read path", reg)
		err = errors.Errorf("read of unimplemented AP register %s", reg)
	}
	if err != nil {
		s.fault = err
		return 0, errors.Trace(err)
	}
	glog.V(4).Infof("AP%d %s == 0x%08x", apNum, reg, value)
	return value, nil
}

// WriteAPReg writes an access-port register. Only bank 0 is implemented:
// with any other bank selected the write is refused before the dispatch,
// without touching the hardware. A failing write is also latched as the
// session fault for the next Run.
func (s *Session) WriteAPReg(ctx context.Context, apNum int, reg APReg, value uint32) error {
	if err := s.checkADIv6(); err != nil {
		return errors.Trace(err)
	}
	if s.apBank != 0 {
		err := errors.NotValidf("write of %s with AP bank %d selected", reg, s.apBank)
		s.fault = err
		return err
	}
	glog.V(4).Infof("AP%d %s = 0x%08x", apNum, reg, value)
	var err error
	switch reg {
	case APCSW:
		s.apCSW = value
	case APTAR:
		s.apTAR = value
		s.apTARInc = 0
	case APBD0, APBD1, APBD2, APBD3:
		err = s.hwWrite(ctx, bdAddr(s.apTAR, reg), value)
	case APDRW:
		err = s.hwWrite(ctx, drwAddr(s.apTAR, s.apTARInc), value)
		if err == nil {
			s.advanceTAR()
		}
	default:
		err = errors.NotImplementedf("write of AP register %s", reg)
	}
	if err != nil {
		s.fault = err
		return errors.Trace(err)
	}
	return nil
}
