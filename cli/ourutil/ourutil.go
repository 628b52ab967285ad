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
package ourutil

import (
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
)

func Reportf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	glog.Infof(f, args...)
}

func Freportf(logFile io.Writer, f string, args ...interface{}) {
	fmt.Fprintf(logFile, f+"\n", args...)
	glog.Infof(f, args...)
}

// DumpWords prints words as a hex dump, four words per line, each line
// prefixed with the address of its first word.
func DumpWords(w io.Writer, addr uint32, words []uint32) {
	for i := 0; i < len(words); i += 4 {
		fmt.Fprintf(w, "0x%08x:", addr+uint32(4*i))
		for j := i; j < i+4 && j < len(words); j++ {
			fmt.Fprintf(w, " %08x", words[j])
		}
		fmt.Fprintf(w, "\n")
	}
}
