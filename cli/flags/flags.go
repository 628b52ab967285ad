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
package flags

import (
	"time"

	flag "github.com/spf13/pflag"
)

var (
	Device = flag.String("device", "auto", "Rshim device node carrying the CoreSight control register. "+
		"If set to 'auto', /dev/rshim*/rshim nodes are enumerated and the first one is used, "+
		"falling back to /dev/mem.")
	TargetsFile = flag.String("targets-file", "~/.memdap/targets.yml", "File with named target profiles")
	Target      = flag.String("target", "", "Named target profile from --targets-file")

	APSel      = flag.Int("apsel", 0, "Access port to use for memory operations")
	ADIVersion = flag.Int("adi-version", 5, "Debug interface generation of the target DAP. Only 5 is supported; "+
		"6 is accepted and refused at access time, like the hardware would")
	PollTimeout = flag.Duration("poll-timeout", 10*time.Second, "Give up on a debug-bus transaction if the hardware "+
		"has not completed it after this long. 0 polls forever.")

	Timeout = flag.Duration("timeout", 20*time.Second, "Timeout for one command's hardware phase")
	Verbose = flag.Bool("verbose", false, "Verbose output")
)
