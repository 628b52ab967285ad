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
	"encoding/binary"
	"io"
	"os"
	"strconv"

	"github.com/juju/errors"
	flag "github.com/spf13/pflag"
)

func memDump(ctx context.Context) error {
	args := flag.Args()
	if len(args) != 4 {
		return errors.Errorf("usage: %s dump <addr> <count> <file>", os.Args[0])
	}
	addr, err := parseWord(args[1])
	if err != nil {
		return errors.Trace(err)
	}
	n, err := strconv.ParseUint(args[2], 0, 24)
	if err != nil || n == 0 {
		return errors.Errorf("invalid word count %q", args[2])
	}
	fname := args[3]
	return runWithTimeout(ctx, func(ctx context.Context) error {
		mc, sess, err := memClient(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		defer sess.Disconnect()
		words, err := mc.ReadWords(ctx, addr, int(n))
		if err != nil {
			return errors.Trace(err)
		}
		if err := sess.Run(); err != nil {
			return errors.Trace(err)
		}
		var w io.Writer
		if fname == "-" {
			w = os.Stdout
		} else {
			f, err := os.Create(fname)
			if err != nil {
				return errors.Trace(err)
			}
			defer f.Close()
			w = f
		}
		// Words go out in target byte order, which is little-endian.
		if err := binary.Write(w, binary.LittleEndian, words); err != nil {
			return errors.Annotatef(err, "failed to write %s", fname)
		}
		if fname != "-" {
			reportf("Wrote %d bytes from 0x%08x to %s", len(words)*4, addr, fname)
		}
		return nil
	})
}
