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
	"text/tabwriter"

	"github.com/juju/errors"

	"github.com/mongoose-os/memdap/cli/devutil"
)

func targetsList(ctx context.Context) error {
	path := devutil.TargetsFilePath()
	targets, err := devutil.LoadTargets(path)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			reportf("No targets file at %s.", path)
			reportf("Create one to give boards names, e.g.:")
			reportf("  targets:")
			reportf("    - name: bf2")
			reportf("      device: /dev/rshim0/rshim")
			return nil
		}
		return errors.Trace(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tDEVICE\tADI\tAPSEL\tPOLL TIMEOUT\n")
	for _, t := range targets {
		adi := t.ADIVersion
		if adi == 0 {
			adi = 5
		}
		pt := t.PollTimeout
		if pt == "" {
			pt = "-"
		}
		dev := t.Device
		if dev == "" {
			dev = "auto"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", t.Name, dev, adi, t.APSel, pt)
	}
	return errors.Trace(w.Flush())
}
