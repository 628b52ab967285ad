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
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/juju/errors"
	shellwords "github.com/mattn/go-shellwords"

	"github.com/mongoose-os/memdap/cli/dap"
	"github.com/mongoose-os/memdap/cli/dap/memap"
	"github.com/mongoose-os/memdap/cli/ourutil"
)

const shellHelp = `Commands:
  read <addr> [count]      read words from target memory
  write <addr> <word>...   write words to target memory
  quad <addr>              read 4 words through the banked window
  dp-read <reg>            read a DP register (DPIDR, CTRL/STAT, SELECT, RDBUFF)
  dp-write <reg> <value>   write a DP register
  ap-read <reg>            read an AP register (CSW, TAR, DRW, BD0-3, CFG, BASE, IDR)
  ap-write <reg> <value>   write an AP register
  run                      report and clear the last deferred error
  help                     this text
  quit                     leave the shell
Addresses, values and registers accept 0x-prefixed hex.`

// shell keeps one session open and runs register and memory commands
// against it interactively. Errors are reported and the loop goes on,
// like the one-shot commands would after a sticky fault.
func shell(ctx context.Context) error {
	mc, sess, err := memClient(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	defer sess.Disconnect()

	parser := shellwords.NewParser()
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprintf(os.Stderr, "memdap> ")
		if !sc.Scan() {
			fmt.Fprintf(os.Stderr, "\n")
			break
		}
		args, err := parser.Parse(sc.Text())
		if err != nil {
			reportf("Error: %s", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			break
		}
		err = runWithTimeout(ctx, func(ctx context.Context) error {
			return shellCommand(ctx, sess, mc, args)
		})
		if err != nil {
			reportf("Error: %s", err)
		}
	}
	return errors.Trace(sess.Run())
}

func shellCommand(ctx context.Context, sess *dap.Session, mc *memap.Client, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(os.Stderr, shellHelp)
		return nil

	case "read":
		if len(args) < 2 || len(args) > 3 {
			return errors.Errorf("usage: read <addr> [count]")
		}
		addr, err := parseWord(args[1])
		if err != nil {
			return errors.Trace(err)
		}
		count := 1
		if len(args) == 3 {
			n, err := strconv.ParseUint(args[2], 0, 24)
			if err != nil || n == 0 {
				return errors.Errorf("invalid word count %q", args[2])
			}
			count = int(n)
		}
		words, err := mc.ReadWords(ctx, addr, count)
		if err != nil {
			return errors.Trace(err)
		}
		ourutil.DumpWords(os.Stdout, addr, words)
		return nil

	case "write":
		if len(args) < 3 {
			return errors.Errorf("usage: write <addr> <word>...")
		}
		addr, err := parseWord(args[1])
		if err != nil {
			return errors.Trace(err)
		}
		var words []uint32
		for _, a := range args[2:] {
			w, err := parseWord(a)
			if err != nil {
				return errors.Trace(err)
			}
			words = append(words, w)
		}
		if err := mc.WriteWords(ctx, addr, words); err != nil {
			return errors.Trace(err)
		}
		freportf(logWriter, "Wrote %d words at 0x%08x", len(words), addr)
		return nil

	case "quad":
		if len(args) != 2 {
			return errors.Errorf("usage: quad <addr>")
		}
		addr, err := parseWord(args[1])
		if err != nil {
			return errors.Trace(err)
		}
		q, err := mc.ReadQuad(ctx, addr)
		if err != nil {
			return errors.Trace(err)
		}
		ourutil.DumpWords(os.Stdout, addr&^0xf, q[:])
		return nil

	case "dp-read":
		if len(args) != 2 {
			return errors.Errorf("usage: dp-read <reg>")
		}
		reg, err := dap.ParseDPReg(args[1])
		if err != nil {
			return errors.Trace(err)
		}
		v, err := sess.ReadDPReg(ctx, reg)
		if err != nil {
			return errors.Trace(err)
		}
		reportf("%s == 0x%08x", reg, v)
		return nil

	case "dp-write":
		if len(args) != 3 {
			return errors.Errorf("usage: dp-write <reg> <value>")
		}
		reg, err := dap.ParseDPReg(args[1])
		if err != nil {
			return errors.Trace(err)
		}
		value, err := parseWord(args[2])
		if err != nil {
			return errors.Trace(err)
		}
		if err := sess.WriteDPReg(ctx, reg, value); err != nil {
			return errors.Trace(err)
		}
		freportf(logWriter, "%s = 0x%08x", reg, value)
		return nil

	case "ap-read":
		if len(args) != 2 {
			return errors.Errorf("usage: ap-read <reg>")
		}
		reg, err := dap.ParseAPReg(args[1])
		if err != nil {
			return errors.Trace(err)
		}
		v, err := mc.ReadReg(ctx, reg)
		if err != nil {
			return errors.Trace(err)
		}
		reportf("%s == 0x%08x", reg, v)
		return nil

	case "ap-write":
		if len(args) != 3 {
			return errors.Errorf("usage: ap-write <reg> <value>")
		}
		reg, err := dap.ParseAPReg(args[1])
		if err != nil {
			return errors.Trace(err)
		}
		value, err := parseWord(args[2])
		if err != nil {
			return errors.Trace(err)
		}
		if err := mc.WriteReg(ctx, reg, value); err != nil {
			return errors.Trace(err)
		}
		freportf(logWriter, "%s = 0x%08x", reg, value)
		return nil

	case "run":
		if err := sess.Run(); err != nil {
			return errors.Trace(err)
		}
		reportf("OK")
		return nil
	}
	return errors.Errorf("unknown command %q, try help", args[0])
}
