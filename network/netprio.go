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

package network

import (
	"github.com/algorand/netprobe/crypto"
	"github.com/algorand/netprobe/data/basics"
	"github.com/algorand/netprobe/protocol"
)

type netPrioResponse struct {
	Nonce string
}

// NetPrioResponse answers a priority challenge offered by the responder
// during the handshake. The nonce is echoed inside a signed envelope; the
// signature may be blank when the sender holds no participation key.
type NetPrioResponse struct {
	Response netPrioResponse
	Round    basics.Round
	Sender   basics.Address
	Sig      crypto.OneTimeSignature
}

// Tag implements Payload.
func (*NetPrioResponse) Tag() protocol.Tag {
	return protocol.NetPrioResponseTag
}

// MakePrioResponse builds an unsigned response echoing the challenge.
func MakePrioResponse(challenge string) *NetPrioResponse {
	return &NetPrioResponse{Response: netPrioResponse{Nonce: challenge}}
}

// Nonce returns the echoed challenge nonce.
func (npr *NetPrioResponse) Nonce() string {
	return npr.Response.Nonce
}
