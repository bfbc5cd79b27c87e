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
)

// A ProposalValue is a triplet of a block hashes (the contents themselves and the encoding of the block),
// its proposer, and the period in which it was proposed.
type ProposalValue struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	OriginalPeriod   Period         `codec:"oper"`
	OriginalProposer basics.Address `codec:"oprop"`
	BlockDigest      crypto.Digest  `codec:"dig"`
	EncodingDigest   crypto.Digest  `codec:"encdig"`
}

// A RawVote is the inner struct which is authenticated with keys.
type RawVote struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Sender   basics.Address `codec:"snd"`
	Round    basics.Round   `codec:"rnd"`
	Period   Period         `codec:"per"`
	Step     Step           `codec:"step"`
	Proposal ProposalValue  `codec:"prop"`
}

// An UnauthenticatedCredential is a Credential which has not yet been
// authenticated.
type UnauthenticatedCredential struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Proof crypto.VrfProof `codec:"pf"`
}

// An UnauthenticatedVote is a vote which has not been verified. This is the
// form in which votes cross the wire under the AgreementVote tag.
type UnauthenticatedVote struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	R    RawVote                   `codec:"r"`
	Cred UnauthenticatedCredential `codec:"cred"`
	Sig  crypto.OneTimeSignature   `codec:"sig"`
}
