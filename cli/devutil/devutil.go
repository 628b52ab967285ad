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
package devutil

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"github.com/mongoose-os/memdap/cli/dap"
	"github.com/mongoose-os/memdap/cli/flags"
	"github.com/mongoose-os/memdap/cli/ourutil"
)

const devMem = "/dev/mem"

var defaultDevice string

// GetDevice resolves the device node to use: an explicit --device wins,
// then the target profile, then enumeration. The rshim driver exposes one
// directory per chip, /dev/rshim<N>, with the register file at
// /dev/rshim<N>/rshim; without a driver there is still /dev/mem.
func GetDevice() (string, error) {
	if *flags.Device != "auto" {
		return *flags.Device, nil
	}
	t, err := GetTarget()
	if err != nil {
		return "", errors.Trace(err)
	}
	if t != nil && t.Device != "" {
		return t.Device, nil
	}
	if defaultDevice == "" {
		defaultDevice = findDefaultDevice()
		if defaultDevice == "" {
			return "", errors.Errorf("--device not specified and no rshim device node was found")
		}
		ourutil.Reportf("Using device %s", defaultDevice)
	}
	return defaultDevice, nil
}

func findDefaultDevice() string {
	nodes, _ := filepath.Glob("/dev/rshim*/rshim")
	if len(nodes) > 0 {
		sort.Strings(nodes)
		return nodes[0]
	}
	if _, err := os.Stat(devMem); err == nil {
		return devMem
	}
	return ""
}

// GetAPSel resolves the access port to use. An explicitly changed --apsel
// wins over the target profile.
func GetAPSel() (uint8, error) {
	t, err := GetTarget()
	if err != nil {
		return 0, errors.Trace(err)
	}
	apSel := *flags.APSel
	if t != nil && t.APSel != 0 && !flag.CommandLine.Changed("apsel") {
		apSel = t.APSel
	}
	if apSel < 0 || apSel > 255 {
		return 0, errors.Errorf("--apsel must be 0..255, not %d", apSel)
	}
	return uint8(apSel), nil
}

// SessionFromFlags assembles an unconnected session from the command line
// and, when --target names one, a target profile. Explicitly changed
// flags win over profile values.
func SessionFromFlags() (*dap.Session, error) {
	t, err := GetTarget()
	if err != nil {
		return nil, errors.Trace(err)
	}
	opts := dap.Opts{
		ADIVersion:  *flags.ADIVersion,
		PollTimeout: *flags.PollTimeout,
	}
	if t != nil {
		if t.ADIVersion != 0 && !flag.CommandLine.Changed("adi-version") {
			opts.ADIVersion = t.ADIVersion
		}
		if t.PollTimeout != "" && !flag.CommandLine.Changed("poll-timeout") {
			opts.PollTimeout = t.PollTimeoutDuration()
		}
	}
	opts.Device, err = GetDevice()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return dap.NewSession(opts), nil
}
