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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/juju/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/mongoose-os/memdap/cli/flags"
	"github.com/mongoose-os/memdap/common/multierror"
)

// Target is a named profile from the targets file: everything needed to
// talk to one particular board without repeating flags.
//
//   targets:
//     - name: bf2
//       device: /dev/rshim0/rshim
//       poll_timeout: 5s
type Target struct {
	Name        string `yaml:"name"`
	Device      string `yaml:"device,omitempty"`
	ADIVersion  int    `yaml:"adi_version,omitempty"`
	APSel       int    `yaml:"apsel,omitempty"`
	PollTimeout string `yaml:"poll_timeout,omitempty"` // Go duration string, e.g. "10s"
}

func (t *Target) Validate() error {
	if t.Name == "" {
		return errors.Errorf("target name is required")
	}
	if t.ADIVersion != 0 && t.ADIVersion != 5 && t.ADIVersion != 6 {
		return errors.Errorf("adi_version must be 5 or 6, not %d", t.ADIVersion)
	}
	if t.APSel < 0 || t.APSel > 255 {
		return errors.Errorf("apsel must be 0..255, not %d", t.APSel)
	}
	if t.PollTimeout != "" {
		if _, err := time.ParseDuration(t.PollTimeout); err != nil {
			return errors.Annotatef(err, "invalid poll_timeout")
		}
	}
	return nil
}

// PollTimeoutDuration returns the parsed poll_timeout. Call Validate
// first; an unparseable value reads as 0 here.
func (t *Target) PollTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(t.PollTimeout)
	return d
}

type targetsFile struct {
	Targets []*Target `yaml:"targets"`
}

// LoadTargets reads and validates a targets file. All validation
// failures are reported, not just the first one.
func LoadTargets(path string) ([]*Target, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var tf targetsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, errors.Annotatef(err, "failed to parse %s", path)
	}
	var errs error
	seen := map[string]bool{}
	for i, t := range tf.Targets {
		if err := t.Validate(); err != nil {
			errs = multierror.Append(errs, errors.Annotatef(err, "target %d (%s)", i, t.Name))
			continue
		}
		if seen[t.Name] {
			errs = multierror.Append(errs, errors.Errorf("duplicate target %q", t.Name))
		}
		seen[t.Name] = true
	}
	if errs != nil {
		return nil, errors.Trace(errs)
	}
	return tf.Targets, nil
}

var (
	cachedTarget *Target
	targetLoaded bool
)

// TargetsFilePath is --targets-file with ~ expanded.
func TargetsFilePath() string {
	return expandHome(*flags.TargetsFile)
}

// GetTarget returns the profile named by --target, or nil without error
// when no target is requested. The profile is loaded once per run.
func GetTarget() (*Target, error) {
	if *flags.Target == "" {
		return nil, nil
	}
	if targetLoaded {
		return cachedTarget, nil
	}
	path := TargetsFilePath()
	targets, err := LoadTargets(path)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to load targets from %s", path)
	}
	for _, t := range targets {
		if t.Name == *flags.Target {
			cachedTarget = t
			targetLoaded = true
			return t, nil
		}
	}
	return nil, errors.Errorf("target %q is not defined in %s", *flags.Target, path)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
