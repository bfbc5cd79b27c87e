// Copyright (C) 2022-2024 Algorand, Inc.
// This file is part of netprobe
//
// netprobe is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// netprobe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with netprobe.  If not, see <https://www.gnu.org/licenses/>.

package basics

// Round represents a protocol round index, a monotonically increasing ledger
// checkpoint used to key block and vote messages.
type Round uint64

// MicroAlgos is the unit of currency. It appears on the wire as a plain
// unsigned integer; the harness has no need for the node's overflow-checked
// arithmetic wrapper.
type MicroAlgos uint64
