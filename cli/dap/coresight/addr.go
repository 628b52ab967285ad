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

// The debug components of the chip live in one linear APB address space,
// but the control register wants them addressed by tile. The ROM tables
// and the chip-level components sit at the bottom of the space (tile 0);
// per-tile components follow, one fixed-size window per tile, starting at
// tile 1.
const (
	// ROMBase is the APB address of the chip's top-level ROM table. It is
	// also the base of the whole debug address space.
	ROMBase uint32 = 0x80000000
	// TileBase is the offset of the first per-tile window from ROMBase.
	TileBase uint32 = 0x44000000
	// TileSize is the size of one per-tile window.
	TileSize uint32 = 0x04000000
)

// TileAddr translates a linear debug-space address into a (tile, offset)
// pair. Addresses below the first tile window belong to tile 0.
func TileAddr(addr uint32) (tile int, offset uint32) {
	addr -= ROMBase
	if addr < TileBase {
		return 0, addr
	}
	addr -= TileBase
	return int(addr/TileSize) + 1, addr % TileSize
}

// LinearAddr is the inverse of TileAddr.
func LinearAddr(tile int, offset uint32) uint32 {
	if tile == 0 {
		return ROMBase + offset
	}
	return ROMBase + TileBase + uint32(tile-1)*TileSize + offset
}

// BusAddr encodes a (tile, offset) pair into the control word's address
// field: the word index within the tile, the tile number, and, for
// anything but tile 0, a discriminator bit telling the bridge to route
// the transaction to a tile.
func BusAddr(tile int, offset uint32) uint32 {
	a := offset>>2 | uint32(tile)<<24
	if tile != 0 {
		a |= 1 << 28
	}
	return a
}
