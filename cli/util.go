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
	"io"
	"os"
	"strconv"

	"github.com/juju/errors"

	"github.com/mongoose-os/memdap/cli/dap"
	"github.com/mongoose-os/memdap/cli/dap/memap"
	"github.com/mongoose-os/memdap/cli/devutil"
	"github.com/mongoose-os/memdap/cli/flags"
	"github.com/mongoose-os/memdap/cli/ourutil"
)

var (
	// Log writer which always writes to os.Stderr
	logWriterStderr io.Writer = os.Stderr

	// The same as logWriterStderr, but skips os.Stderr unless --verbose is given
	logWriter io.Writer = logWriterStderr
)

// initLogWriters picks where detail output goes: to the user with
// --verbose, into a throwaway buffer without.
func initLogWriters() {
	if *flags.Verbose {
		logWriter = logWriterStderr
	} else {
		logWriter = &bytes.Buffer{}
	}
}

func reportf(f string, args ...interface{}) {
	ourutil.Reportf(f, args...)
}

func freportf(logFile io.Writer, f string, args ...interface{}) {
	ourutil.Freportf(logFile, f, args...)
}

// connectedSession builds a session from the flags and connects it.
// The caller owns the session and must Disconnect it.
func connectedSession(ctx context.Context) (*dap.Session, error) {
	sess, err := devutil.SessionFromFlags()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := sess.Connect(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	return sess, nil
}

// memClient connects a session and sets up a MEM-AP client on the selected
// AP, ready for memory traffic. On failure the session is torn down.
func memClient(ctx context.Context) (*memap.Client, *dap.Session, error) {
	apSel, err := devutil.GetAPSel()
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	sess, err := connectedSession(ctx)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	mc := memap.NewClient(sess, apSel)
	if err := mc.Init(ctx); err != nil {
		sess.Disconnect()
		return nil, nil, errors.Annotatef(err, "failed to init AP %d", apSel)
	}
	freportf(logWriter, "Using AP %d", apSel)
	return mc, sess, nil
}

func parseWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Errorf("invalid 32-bit value %q", s)
	}
	return uint32(v), nil
}

// runWithTimeout applies the global --timeout to an operation.
func runWithTimeout(ctx context.Context, f func(context.Context) error) error {
	if *flags.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *flags.Timeout)
		defer cancel()
	}
	return errors.Trace(f(ctx))
}
