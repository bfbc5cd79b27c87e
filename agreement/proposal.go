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
	"github.com/algorand/netprobe/crypto"
	"github.com/algorand/netprobe/data/basics"
	"github.com/algorand/netprobe/data/bookkeeping"
)

// A TransmittedPayload is the representation of a proposal payload on the
// wire, under the ProposalPayload tag. The embedded block header stands in
// for the node's full block; the payset is irrelevant to the harness and is
// ignored on decode.
type TransmittedPayload struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	bookkeeping.BlockHeader

	// Seed proof
	SeedProof crypto.VrfProof `codec:"sdpf"`

	OriginalPeriod   Period         `codec:"oper"`
	OriginalProposer basics.Address `codec:"oprop"`

	PriorVote UnauthenticatedVote `codec:"pv"`
}
