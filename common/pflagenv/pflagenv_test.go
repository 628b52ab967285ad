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
package pflagenv

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
)

func TestParseFlagSet(t *testing.T) {
	cases := []struct {
		flag        string
		def         string
		cli         string // command-line argument, if given
		envVar      string // environment variable, if set
		envVal      string
		want        string
		wantChanged bool
	}{
		// 0: an untouched flag keeps its default.
		{flag: "device", def: "auto", want: "auto"},
		// 1: the environment fills in a flag the command line left alone.
		{flag: "target", envVar: "MEMDAP_TARGET", envVal: "bf2", want: "bf2", wantChanged: true},
		// 2: dashes become underscores in the variable name.
		{flag: "poll-timeout", def: "10s", envVar: "MEMDAP_POLL_TIMEOUT", envVal: "5s", want: "5s", wantChanged: true},
		// 3: a flag given on the command line is not overridden.
		{flag: "apsel", def: "0", cli: "--apsel=1", envVar: "MEMDAP_APSEL", envVal: "2", want: "1", wantChanged: true},
		// 4: not even one given an explicitly empty value.
		{flag: "targets-file", def: "targets.yml", cli: "--targets-file=", envVar: "MEMDAP_TARGETS_FILE", envVal: "other.yml", want: "", wantChanged: true},
	}

	fs := pflag.NewFlagSet("memdap", pflag.ContinueOnError)
	var args []string
	for _, c := range cases {
		fs.String(c.flag, c.def, "")
		if c.cli != "" {
			args = append(args, c.cli)
		}
		if c.envVar != "" {
			os.Setenv(c.envVar, c.envVal)
			defer os.Unsetenv(c.envVar)
		}
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	ParseFlagSet(fs, "MEMDAP_")

	for i, c := range cases {
		got, err := fs.GetString(c.flag)
		if err != nil {
			t.Fatalf("%d GetString(%s): %v", i, c.flag, err)
		}
		if got != c.want {
			t.Errorf("%d --%s: %q, want %q", i, c.flag, got, c.want)
		}
		// Profile and flag precedence downstream keys off the changed bit,
		// so an environment fill must set it like a real argument would.
		if changed := fs.Lookup(c.flag).Changed; changed != c.wantChanged {
			t.Errorf("%d --%s changed: %v, want %v", i, c.flag, changed, c.wantChanged)
		}
	}
}

func TestEnvName(t *testing.T) {
	cases := []struct {
		flag string
		want string
	}{
		{"device", "MEMDAP_DEVICE"},
		{"poll-timeout", "MEMDAP_POLL_TIMEOUT"},
		{"targets-file", "MEMDAP_TARGETS_FILE"},
	}
	for i, c := range cases {
		if got := envName(c.flag, "MEMDAP_"); got != c.want {
			t.Errorf("%d envName(%q): %q, want %q", i, c.flag, got, c.want)
		}
	}
}
