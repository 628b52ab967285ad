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
package coresight

import (
	"testing"
)

func TestTileAddr(t *testing.T) {
	cases := []struct {
		addr   uint32
		tile   int
		offset uint32
	}{
		{ROMBase, 0, 0},
		{ROMBase + 0x1000, 0, 0x1000},
		{ROMBase + TileBase - 4, 0, TileBase - 4},
		{ROMBase + TileBase, 1, 0},
		{ROMBase + TileBase + 0x10, 1, 0x10},
		{ROMBase + TileBase + TileSize - 4, 1, TileSize - 4},
		{ROMBase + TileBase + TileSize + 0x20, 2, 0x20},
		{ROMBase + TileBase + 7*TileSize + 0xe000, 8, 0xe000},
	}
	for i, c := range cases {
		tile, offset := TileAddr(c.addr)
		if tile != c.tile || offset != c.offset {
			t.Errorf("%d TileAddr(0x%08x): (%d, 0x%x), want (%d, 0x%x)", i, c.addr, tile, offset, c.tile, c.offset)
		}
		if back := LinearAddr(tile, offset); back != c.addr {
			t.Errorf("%d LinearAddr(%d, 0x%x): 0x%08x, want 0x%08x", i, tile, offset, back, c.addr)
		}
	}
}

func TestBusAddr(t *testing.T) {
	cases := []struct {
		tile   int
		offset uint32
		want   uint32
	}{
		{0, 0, 0},
		{0, 0x100, 0x40},
		{0, 0xe000, 0x3800},
		{1, 0, 0x11000000},
		{1, 0x10, 0x11000004},
		{2, 0x20, 0x12000008},
		{8, 0xe000, 0x18003800},
	}
	for i, c := range cases {
		if got := BusAddr(c.tile, c.offset); got != c.want {
			t.Errorf("%d BusAddr(%d, 0x%x): 0x%08x, want 0x%08x", i, c.tile, c.offset, got, c.want)
		}
	}
}
