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

// Package agreement models the consensus messages that cross the gossip
// network: votes, proposal payloads and certificates. The harness only
// carries these structures; it never validates them.
package agreement

// Period is the number of elapsed attempts at reaching consensus within a
// given round.
type Period uint64

// Step is a sequence number describing the phase of the agreement protocol
// within a period.
type Step uint64
