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
package main

import (
	"context"

	"github.com/juju/errors"

	"github.com/mongoose-os/memdap/cli/dap"
	"github.com/mongoose-os/memdap/cli/dap/memap"
	"github.com/mongoose-os/memdap/cli/devutil"
)

func memdapInfo(ctx context.Context) error {
	return runWithTimeout(ctx, func(ctx context.Context) error {
		apSel, err := devutil.GetAPSel()
		if err != nil {
			return errors.Trace(err)
		}
		sess, err := connectedSession(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		defer sess.Disconnect()

		dpidr, err := sess.ReadDPReg(ctx, dap.DPIDR)
		if err != nil {
			return errors.Trace(err)
		}
		stat, err := sess.ReadDPReg(ctx, dap.DPCtrlStat)
		if err != nil {
			return errors.Trace(err)
		}
		reportf("DP:")
		reportf("  DPIDR:     0x%08x", dpidr)
		reportf("  CTRL/STAT: 0x%08x (debug power %s, system power %s)",
			stat, ackState(stat&dap.CtrlStatCDbgPwrUpAck), ackState(stat&dap.CtrlStatCSysPwrUpAck))

		mc := memap.NewClient(sess, apSel)
		if err := mc.Init(ctx); err != nil {
			return errors.Annotatef(err, "failed to init AP %d", apSel)
		}
		idr, err := mc.ReadReg(ctx, dap.APIDR)
		if err != nil {
			return errors.Trace(err)
		}
		base, err := mc.ReadReg(ctx, dap.APBASE)
		if err != nil {
			return errors.Trace(err)
		}
		cfg, err := mc.ReadReg(ctx, dap.APCFG)
		if err != nil {
			return errors.Trace(err)
		}
		csw, err := mc.ReadReg(ctx, dap.APCSW)
		if err != nil {
			return errors.Trace(err)
		}
		reportf("AP %d:", apSel)
		reportf("  IDR:  0x%08x", idr)
		reportf("  BASE: 0x%08x", base)
		reportf("  CFG:  0x%08x", cfg)
		reportf("  CSW:  0x%08x", csw)

		// The first four words of the ROM table, through the banked window.
		romBase := base &^ 0xfff
		q, err := mc.ReadQuad(ctx, romBase)
		if err != nil {
			return errors.Annotatef(err, "failed to read ROM table at 0x%08x", romBase)
		}
		reportf("ROM table @ 0x%08x:", romBase)
		for i, w := range q {
			reportf("  [%d] 0x%08x", i, w)
		}

		return errors.Trace(sess.Run())
	})
}

func ackState(bit uint32) string {
	if bit != 0 {
		return "up"
	}
	return "down"
}
