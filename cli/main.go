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
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"github.com/mongoose-os/memdap/common/pflagenv"
	"github.com/mongoose-os/memdap/version"
)

const (
	envPrefix = "MEMDAP_"
)

var (
	versionFlag = flag.Bool("version", false, "Print version and exit")
	helpFull    = flag.Bool("helpfull", false, "Show full help, including advanced flags")

	extendedMode = false
)

var (
	commands = []command{
		{"info", memdapInfo, `Identify the DAP and the target behind it`, nil, []string{"device", "target", "apsel"}, false},
		{"read", memRead, `Read words from target memory: read <addr> [count]`, nil, []string{"device", "target", "apsel"}, false},
		{"write", memWrite, `Write words to target memory: write <addr> <word>...`, nil, []string{"device", "target", "apsel"}, false},
		{"dump", memDump, `Save a memory range to a file: dump <addr> <count> <file>`, nil, []string{"device", "target", "apsel"}, false},
		{"load", memLoad, `Load a file into target memory: load <file> <addr>`, nil, []string{"device", "target", "apsel"}, false},
		{"targets", targetsList, `List target profiles`, nil, []string{"targets-file"}, false},
		{"shell", shell, `Interactive register and memory shell`, nil, []string{"device", "target", "apsel"}, false},
		// Raw register plumbing, for bring-up. Needs -X.
		{"dp-read", dpRead, `Read a DP register: dp-read <reg>`, nil, []string{"device", "target"}, true},
		{"dp-write", dpWrite, `Write a DP register: dp-write <reg> <value>`, nil, []string{"device", "target"}, true},
		{"ap-read", apRead, `Read an AP register: ap-read <reg>`, nil, []string{"device", "target", "apsel"}, true},
		{"ap-write", apWrite, `Write an AP register: ap-write <reg> <value>`, nil, []string{"device", "target", "apsel"}, true},
	}
)

type command struct {
	name     string
	handler  handler
	short    string
	required []string
	optional []string
	extended bool
}

type handler func(ctx context.Context) error

func run(ctx context.Context) error {
	for _, c := range commands {
		if c.name != flag.Arg(0) {
			continue
		}
		if c.extended && !extendedMode {
			continue
		}
		// check required flags
		if err := checkFlags(c.required); err != nil {
			return errors.Trace(err)
		}
		// run the handler
		return errors.Trace(c.handler(ctx))
	}
	// not found
	usage()
	return nil
}

func main() {
	// -X, if given, must be the first arg.
	if len(os.Args) > 1 && os.Args[1] == "-X" {
		os.Args = append(os.Args[:1], os.Args[2:]...)
		extendedMode = true
	}
	initFlags()
	flag.Parse()
	pflagenv.Parse(envPrefix)
	initLogWriters()

	if *helpFull {
		unhideFlags()
		usage()
		return
	} else if *versionFlag {
		fmt.Printf(
			"%s\nVersion: %s\nBuild ID: %s\n",
			"The memdap debug bridge tool", version.Version, version.BuildId,
		)
		return
	}

	if err := run(context.Background()); err != nil {
		glog.Infof("Error: %+v", err)
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
