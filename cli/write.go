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

	"github.com/juju/errors"
	flag "github.com/spf13/pflag"
)

func memWrite(ctx context.Context) error {
	args := flag.Args()
	if len(args) < 3 {
		return errors.Errorf("usage: %s write <addr> <word>...", os.Args[0])
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
		reportf("Wrote %d words at 0x%08x", len(words), addr)
		return nil
	})
}
