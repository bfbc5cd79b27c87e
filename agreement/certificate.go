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

package agreement

import (
	"github.com/algorand/netprobe/data/basics"
)

// A Certificate contains a cryptographic proof that agreement was reached on
// a given block in a given round.
//
// When a client first joins the network or has fallen behind and needs to
// catch up, certificates allow the client to verify that a block someone
// gives them is the real one. The harness reads only the proposal triplet
// out of it; the vote set is ignored on decode.
type Certificate struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Round    basics.Round  `codec:"rnd"`
	Period   Period        `codec:"per"`
	Step     Step          `codec:"step"`
	Proposal ProposalValue `codec:"prop"`
}
