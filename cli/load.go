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
	"bytes"
	"context"
	"encoding/binary"
	"io/ioutil"
	"os"

	"github.com/juju/errors"
	flag "github.com/spf13/pflag"
)

func memLoad(ctx context.Context) error {
	args := flag.Args()
	if len(args) != 3 {
		return errors.Errorf("usage: %s load <file> <addr>", os.Args[0])
	}
	fname := args[1]
	addr, err := parseWord(args[2])
	if err != nil {
		return errors.Trace(err)
	}
	data, err := ioutil.ReadFile(fname)
	if err != nil {
		return errors.Trace(err)
	}
	if len(data) == 0 {
		return errors.Errorf("%s is empty", fname)
	}
	if pad := len(data) % 4; pad != 0 {
		reportf("%s is not a multiple of 4 bytes, padding with %d zero bytes", fname, 4-pad)
		data = append(data, make([]byte, 4-pad)...)
	}
	words := make([]uint32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, words); err != nil {
		return errors.Trace(err)
	}
	return runWithTimeout(ctx, func(ctx context.Context) error {
		mc, sess, err := memClient(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		defer sess.Disconnect()
		if err := mc.WriteWords(ctx, addr, words); err != nil {
			return errors.Trace(err)
		}
		if err := sess.Run(); err != nil {
			return errors.Trace(err)
		}
		reportf("Loaded %s (%d words) at 0x%08x", fname, len(words), addr)
		return nil
	})
}
