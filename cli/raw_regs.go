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
// Raw DP and AP register access, for bring-up and debugging the bridge
// itself. AP access goes through the same SELECT bookkeeping the memory
// commands use but leaves CSW alone.
package main

import (
	"context"
	"os"

	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"github.com/mongoose-os/memdap/cli/dap"
	"github.com/mongoose-os/memdap/cli/dap/memap"
	"github.com/mongoose-os/memdap/cli/devutil"
)

func dpRead(ctx context.Context) error {
	args := flag.Args()
	if len(args) != 2 {
		return errors.Errorf("usage: %s dp-read <reg>", os.Args[0])
	}
	reg, err := dap.ParseDPReg(args[1])
	if err != nil {
		return errors.Trace(err)
	}
	return runWithTimeout(ctx, func(ctx context.Context) error {
		sess, err := connectedSession(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		defer sess.Disconnect()
		v, err := sess.ReadDPReg(ctx, reg)
		if err != nil {
			return errors.Trace(err)
		}
		reportf("%s == 0x%08x", reg, v)
		return errors.Trace(sess.Run())
	})
}

func dpWrite(ctx context.Context) error {
	args := flag.Args()
	if len(args) != 3 {
		return errors.Errorf("usage: %s dp-write <reg> <value>", os.Args[0])
	}
	reg, err := dap.ParseDPReg(args[1])
	if err != nil {
		return errors.Trace(err)
	}
	value, err := parseWord(args[2])
	if err != nil {
		return errors.Trace(err)
	}
	return runWithTimeout(ctx, func(ctx context.Context) error {
		sess, err := connectedSession(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		defer sess.Disconnect()
		if err := sess.WriteDPReg(ctx, reg, value); err != nil {
			return errors.Trace(err)
		}
		if err := sess.Run(); err != nil {
			return errors.Trace(err)
		}
		freportf(logWriter, "%s = 0x%08x", reg, value)
		return nil
	})
}

func apRead(ctx context.Context) error {
	args := flag.Args()
	if len(args) != 2 {
		return errors.Errorf("usage: %s ap-read <reg>", os.Args[0])
	}
	reg, err := dap.ParseAPReg(args[1])
	if err != nil {
		return errors.Trace(err)
	}
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
		mc := memap.NewClient(sess, apSel)
		v, err := mc.ReadReg(ctx, reg)
		if err != nil {
			return errors.Trace(err)
		}
		reportf("%s == 0x%08x", reg, v)
		return errors.Trace(sess.Run())
	})
}

func apWrite(ctx context.Context) error {
	args := flag.Args()
	if len(args) != 3 {
		return errors.Errorf("usage: %s ap-write <reg> <value>", os.Args[0])
	}
	reg, err := dap.ParseAPReg(args[1])
	if err != nil {
		return errors.Trace(err)
	}
	value, err := parseWord(args[2])
	if err != nil {
		return errors.Trace(err)
	}
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
		mc := memap.NewClient(sess, apSel)
		if err := mc.WriteReg(ctx, reg, value); err != nil {
			return errors.Trace(err)
		}
		if err := sess.Run(); err != nil {
			return errors.Trace(err)
		}
		freportf(logWriter, "%s = 0x%08x", reg, value)
		return nil
	})
}
