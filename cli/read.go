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
	"os"
	"strconv"

	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"github.com/mongoose-os/memdap/cli/ourutil"
)

func memRead(ctx context.Context) error {
	args := flag.Args()
	if len(args) < 2 || len(args) > 3 {
		return errors.Errorf("usage: %s read <addr> [count]", os.Args[0])
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
	return runWithTimeout(ctx, func(ctx context.Context) error {
		mc, sess, err := memClient(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		defer sess.Disconnect()
		words, err := mc.ReadWords(ctx, addr, count)
		if err != nil {
			return errors.Trace(err)
		}
		ourutil.DumpWords(os.Stdout, addr, words)
		if err := sess.Run(); err != nil {
			return errors.Trace(err)
		}
		freportf(logWriter, "Read %d words at 0x%08x", len(words), addr)
		return nil
	})
}
