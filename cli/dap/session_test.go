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
	"fmt"
	"testing"

	"github.com/juju/errors"

	"github.com/mongoose-os/memdap/cli/dap/coresight"
	"github.com/mongoose-os/memdap/cli/dap/rshim"
)

// fakeHW emulates the control register and the debug bus behind it: a
// control word written with the go bit set executes immediately, and the
// next readback shows the go bit clear. Bus words live in mem, keyed by
// the control word's address field.
type fakeHW struct {
	ctl      uint64
	mem      map[uint32]uint32
	writes   int
	failAddr uint32 // bus address whose transactions fail
	failing  bool
	closed   int
}

func newFakeHW() *fakeHW {
	return &fakeHW{mem: map[uint32]uint32{}}
}

func (f *fakeHW) WriteRegister(channel, addr int, value uint64) error {
	if channel != rshim.ChannelRshim || addr != rshim.RegCoresightCtl {
		return fmt.Errorf("unexpected register write: channel %d addr 0x%x", channel, addr)
	}
	f.writes++
	w := coresight.CtlWord(value)
	if w.Go() {
		if f.failing && w.Addr() == f.failAddr {
			return fmt.Errorf("bus fault at 0x%08x", w.Addr())
		}
		switch w.Action() {
		case coresight.ActionWrite:
			f.mem[w.Addr()] = w.Data()
		case coresight.ActionRead:
			w = w.WithData(f.mem[w.Addr()])
		}
		w = w.WithGo(false)
	}
	f.ctl = uint64(w)
	return nil
}

func (f *fakeHW) ReadRegister(channel, addr int) (uint64, error) {
	if channel != rshim.ChannelRshim || addr != rshim.RegCoresightCtl {
		return 0, fmt.Errorf("unexpected register read: channel %d addr 0x%x", channel, addr)
	}
	return f.ctl, nil
}

func (f *fakeHW) Close() error {
	f.closed++
	return nil
}

func newTestSession(opts Opts) (*Session, *fakeHW) {
	hw := newFakeHW()
	s := NewSession(opts)
	s.Attach(hw)
	return s, hw
}

func TestDPRegs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(Opts{})

	if v, err := s.ReadDPReg(ctx, DPIDR); err != nil || v != 0 {
		t.Errorf("DPIDR: 0x%08x, %v; want 0, nil", v, err)
	}
	v, err := s.ReadDPReg(ctx, DPCtrlStat)
	if err != nil {
		t.Fatalf("CTRL/STAT read: %v", err)
	}
	if v&CtrlStatCDbgPwrUpAck == 0 || v&CtrlStatCSysPwrUpAck == 0 {
		t.Errorf("CTRL/STAT 0x%08x: power-up acks missing", v)
	}
	if err := s.WriteDPReg(ctx, DPCtrlStat, 0x50000000); err != nil {
		t.Fatalf("CTRL/STAT write: %v", err)
	}
	if s.dpCtrlStat != 0x50000000 {
		t.Errorf("stored CTRL/STAT: 0x%08x", s.dpCtrlStat)
	}
	if err := s.WriteDPReg(ctx, DPSelect, 3<<24|5<<4); err != nil {
		t.Fatalf("SELECT write: %v", err)
	}
	if s.apSel != 3 || s.apBank != 5 {
		t.Errorf("SELECT decode: apSel %d apBank %d, want 3 5", s.apSel, s.apBank)
	}
	// Registers without backing state accept writes and read as zero.
	if err := s.WriteDPReg(ctx, DPRDBuff, 0xffffffff); err != nil {
		t.Errorf("RDBUFF write: %v", err)
	}
	if v, err := s.ReadDPReg(ctx, DPRDBuff); err != nil || v != 0 {
		t.Errorf("RDBUFF: 0x%08x, %v; want 0, nil", v, err)
	}
}

func TestAPStateRegs(t *testing.T) {
	ctx := context.Background()
	s, hw := newTestSession(Opts{})

	cases := []struct {
		reg  APReg
		want uint32
	}{
		{APCSW, 0},
		{APCFG, 0},
		{APBASE, coresight.ROMBase},
		{APIDR, APBAPIDR},
	}
	for i, c := range cases {
		v, err := s.ReadAPReg(ctx, 0, c.reg)
		if err != nil {
			t.Fatalf("%d %s read: %v", i, c.reg, err)
		}
		if v != c.want {
			t.Errorf("%d %s: 0x%08x, want 0x%08x", i, c.reg, v, c.want)
		}
	}
	// Only AP 0 identifies itself.
	if v, err := s.ReadAPReg(ctx, 1, APIDR); err != nil || v != 0 {
		t.Errorf("AP1 IDR: 0x%08x, %v; want 0, nil", v, err)
	}
	// None of the above may touch the hardware.
	if hw.writes != 0 {
		t.Errorf("state register reads issued %d transactions", hw.writes)
	}
	if err := s.WriteAPReg(ctx, 0, APCSW, CSWAddrIncSingle|CSWSize32); err != nil {
		t.Fatalf("CSW write: %v", err)
	}
	if v, _ := s.ReadAPReg(ctx, 0, APCSW); v != CSWAddrIncSingle|CSWSize32 {
		t.Errorf("CSW readback: 0x%08x", v)
	}
}

func TestAPTARReadFails(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(Opts{})

	if err := s.WriteAPReg(ctx, 0, APTAR, coresight.ROMBase); err != nil {
		t.Fatalf("TAR write: %v", err)
	}
	if _, err := s.ReadAPReg(ctx, 0, APTAR); err == nil {
		t.Fatalf("TAR read succeeded; it has no read path")
	}
	if err := s.Run(); err == nil {
		t.Errorf("failed read did not latch the session fault")
	}

	// Anything outside the register map takes the same path.
	if _, err := s.ReadAPReg(ctx, 0, APReg(0x28)); err == nil {
		t.Fatalf("read of an unmapped register succeeded")
	}
	if err := s.Run(); err == nil {
		t.Errorf("unmapped read did not latch the session fault")
	}
}

func TestDRWAutoInc(t *testing.T) {
	ctx := context.Background()
	s, hw := newTestSession(Opts{})
	base := coresight.ROMBase + coresight.TileBase + 0x100 // tile 1

	if err := s.WriteAPReg(ctx, 0, APCSW, CSWAddrIncSingle|CSWSize32); err != nil {
		t.Fatalf("CSW write: %v", err)
	}
	if err := s.WriteAPReg(ctx, 0, APTAR, base); err != nil {
		t.Fatalf("TAR write: %v", err)
	}
	for i, v := range []uint32{0x11111111, 0x22222222, 0x33333333} {
		if err := s.WriteAPReg(ctx, 0, APDRW, v); err != nil {
			t.Fatalf("DRW write %d: %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		busAddr := coresight.BusAddr(1, 0x100+uint32(4*i))
		want := uint32(0x11111111 * (i + 1))
		if got := hw.mem[busAddr]; got != want {
			t.Errorf("word %d at bus 0x%08x: 0x%08x, want 0x%08x", i, busAddr, got, want)
		}
	}

	// Rewriting TAR resets the accumulated increment.
	if err := s.WriteAPReg(ctx, 0, APTAR, base); err != nil {
		t.Fatalf("TAR rewrite: %v", err)
	}
	if s.apTARInc != 0 {
		t.Fatalf("TAR write left increment at %d", s.apTARInc)
	}
	for i, want := range []uint32{0x11111111, 0x22222222, 0x33333333} {
		v, err := s.ReadAPReg(ctx, 0, APDRW)
		if err != nil {
			t.Fatalf("DRW read %d: %v", i, err)
		}
		if v != want {
			t.Errorf("DRW read %d: 0x%08x, want 0x%08x", i, v, want)
		}
	}
}

func TestDRWIncrementStep(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(Opts{})

	// 16-bit transfers advance by 2 per access.
	if err := s.WriteAPReg(ctx, 0, APCSW, CSWAddrIncSingle|CSWSize16); err != nil {
		t.Fatalf("CSW write: %v", err)
	}
	if err := s.WriteAPReg(ctx, 0, APTAR, coresight.ROMBase); err != nil {
		t.Fatalf("TAR write: %v", err)
	}
	for i, want := range []uint32{0, 2, 4} {
		if s.apTARInc != want {
			t.Fatalf("increment before access %d: %d, want %d", i, s.apTARInc, want)
		}
		if _, err := s.ReadAPReg(ctx, 0, APDRW); err != nil {
			t.Fatalf("DRW read %d: %v", i, err)
		}
	}

	// With auto-increment off the address stays put.
	if err := s.WriteAPReg(ctx, 0, APCSW, CSWSize32); err != nil {
		t.Fatalf("CSW write: %v", err)
	}
	if err := s.WriteAPReg(ctx, 0, APTAR, coresight.ROMBase); err != nil {
		t.Fatalf("TAR write: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.ReadAPReg(ctx, 0, APDRW); err != nil {
			t.Fatalf("DRW read %d: %v", i, err)
		}
	}
	if s.apTARInc != 0 {
		t.Errorf("increment moved to %d with auto-increment off", s.apTARInc)
	}
}

func TestBDWindow(t *testing.T) {
	ctx := context.Background()
	s, hw := newTestSession(Opts{})

	// TAR may point anywhere inside the 16-byte window.
	if err := s.WriteAPReg(ctx, 0, APTAR, coresight.ROMBase+0x1008); err != nil {
		t.Fatalf("TAR write: %v", err)
	}
	regs := []APReg{APBD0, APBD1, APBD2, APBD3}
	for i, reg := range regs {
		if err := s.WriteAPReg(ctx, 0, reg, uint32(0xb0+i)); err != nil {
			t.Fatalf("%s write: %v", reg, err)
		}
	}
	for i := range regs {
		busAddr := coresight.BusAddr(0, 0x1000+uint32(4*i))
		if got := hw.mem[busAddr]; got != uint32(0xb0+i) {
			t.Errorf("window word %d: 0x%08x, want 0x%08x", i, got, 0xb0+i)
		}
	}
	for i, reg := range regs {
		v, err := s.ReadAPReg(ctx, 0, reg)
		if err != nil {
			t.Fatalf("%s read: %v", reg, err)
		}
		if v != uint32(0xb0+i) {
			t.Errorf("%s: 0x%08x, want 0x%08x", reg, v, 0xb0+i)
		}
	}
	// Banked transfers leave the DRW increment alone.
	if s.apTARInc != 0 {
		t.Errorf("BD access moved the increment to %d", s.apTARInc)
	}
}

func TestBankRefusal(t *testing.T) {
	ctx := context.Background()
	s, hw := newTestSession(Opts{})

	if err := s.WriteDPReg(ctx, DPSelect, 1<<selectAPBankShift); err != nil {
		t.Fatalf("SELECT write: %v", err)
	}
	err := s.WriteAPReg(ctx, 0, APTAR, coresight.ROMBase)
	if err == nil {
		t.Fatalf("AP write with bank 1 selected succeeded")
	}
	if !errors.IsNotValid(errors.Cause(err)) {
		t.Errorf("refusal is not a NotValid error: %v", err)
	}
	if hw.writes != 0 {
		t.Errorf("refused write reached the hardware (%d transactions)", hw.writes)
	}
	if got := s.Run(); got == nil {
		t.Errorf("refusal did not latch the session fault")
	}
	if got := s.Run(); got != nil {
		t.Errorf("second Run: %v, want nil", got)
	}

	// Back on bank 0 writes work again.
	if err := s.WriteDPReg(ctx, DPSelect, 0); err != nil {
		t.Fatalf("SELECT write: %v", err)
	}
	if err := s.WriteAPReg(ctx, 0, APTAR, coresight.ROMBase); err != nil {
		t.Errorf("TAR write after bank reset: %v", err)
	}
}

func TestStickyFault(t *testing.T) {
	ctx := context.Background()
	s, hw := newTestSession(Opts{})
	hw.failing = true
	hw.failAddr = coresight.BusAddr(0, 0)

	if err := s.WriteAPReg(ctx, 0, APTAR, coresight.ROMBase); err != nil {
		t.Fatalf("TAR write: %v", err)
	}
	if err := s.WriteAPReg(ctx, 0, APDRW, 1); err == nil {
		t.Fatalf("DRW write at the failing address succeeded")
	}
	// A later success must not clear the latched fault.
	if err := s.WriteAPReg(ctx, 0, APTAR, coresight.ROMBase+0x100); err != nil {
		t.Fatalf("TAR write: %v", err)
	}
	if err := s.WriteAPReg(ctx, 0, APDRW, 2); err != nil {
		t.Fatalf("DRW write: %v", err)
	}
	if err := s.Run(); err == nil {
		t.Errorf("Run lost the latched fault")
	}
	if err := s.Run(); err != nil {
		t.Errorf("Run after Run: %v, want nil", err)
	}
}

func TestADIv6Refused(t *testing.T) {
	ctx := context.Background()
	s, hw := newTestSession(Opts{ADIVersion: 6})

	for i := 0; i < 3; i++ {
		if _, err := s.ReadAPReg(ctx, 0, APIDR); !errors.IsNotSupported(errors.Cause(err)) {
			t.Fatalf("AP read %d: %v, want a NotSupported error", i, err)
		}
	}
	if err := s.WriteAPReg(ctx, 0, APCSW, 0); !errors.IsNotSupported(errors.Cause(err)) {
		t.Fatalf("AP write: %v, want a NotSupported error", err)
	}
	if !s.adiv6Flagged {
		t.Errorf("refusal was never flagged")
	}
	if hw.writes != 0 {
		t.Errorf("refused accesses reached the hardware (%d transactions)", hw.writes)
	}
	// The generation refusal is not a transfer fault.
	if err := s.Run(); err != nil {
		t.Errorf("Run: %v, want nil", err)
	}
	// The DP is generation-agnostic and keeps working.
	if _, err := s.ReadDPReg(ctx, DPIDR); err != nil {
		t.Errorf("DPIDR read: %v", err)
	}
}

func TestNotConnected(t *testing.T) {
	ctx := context.Background()
	s := NewSession(Opts{})

	if _, err := s.ReadAPReg(ctx, 0, APDRW); err == nil {
		t.Fatalf("DRW read succeeded without a backend")
	}
	if err := s.Run(); err == nil {
		t.Errorf("failed read did not latch the session fault")
	}
}

func TestDisconnect(t *testing.T) {
	ctx := context.Background()
	s, hw := newTestSession(Opts{})

	if err := s.WriteAPReg(ctx, 0, APCSW, CSWSize32); err != nil {
		t.Fatalf("CSW write: %v", err)
	}
	s.Disconnect()
	if hw.closed != 1 {
		t.Errorf("backend closed %d times, want 1", hw.closed)
	}
	if s.Connected() {
		t.Errorf("still connected after Disconnect")
	}
	// State survives the disconnect but resets on the next attach.
	if s.apCSW != CSWSize32 {
		t.Errorf("CSW lost on disconnect: 0x%08x", s.apCSW)
	}
	s.Attach(newFakeHW())
	if s.apCSW != 0 {
		t.Errorf("CSW not reset on attach: 0x%08x", s.apCSW)
	}
}

func TestLifecycleHooks(t *testing.T) {
	s, _ := newTestSession(Opts{})
	if err := s.Reset(true, false); err != nil {
		t.Errorf("Reset: %v", err)
	}
	if err := s.Speed(1000000); err != nil {
		t.Errorf("Speed: %v", err)
	}
	if khz, err := s.KHz(4000); err != nil || khz != 4000 {
		t.Errorf("KHz: %d, %v; want 4000, nil", khz, err)
	}
	if div, err := s.SpeedDiv(7); err != nil || div != 7 {
		t.Errorf("SpeedDiv: %d, %v; want 7, nil", div, err)
	}
	if err := s.Abort(context.Background()); err != nil {
		t.Errorf("Abort: %v", err)
	}
}
