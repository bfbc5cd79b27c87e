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
	"github.com/algorand/netprobe/protocol"
)

// AlgoMsg is one fully decoded gossip message. Raw keeps the exact bytes
// as they arrived, so a test can replay a captured message without
// re-encoding it.
type AlgoMsg struct {
	Raw     []byte
	Payload Payload
}

// DecodeMessage splits off the two-byte tag and decodes the body
// accordingly. raw must be a complete message as carried by one websocket
// binary message.
func DecodeMessage(raw []byte) (*AlgoMsg, error) {
	if len(raw) < protocol.TagLength {
		return nil, invalidDataf("message of %d bytes is too short for a tag", len(raw))
	}
	tag, err := protocol.DecodeTag(raw[:protocol.TagLength])
	if err != nil {
		return nil, invalidDataf("%v", err)
	}
	payload, err := decodePayload(tag, raw[protocol.TagLength:])
	if err != nil {
		return nil, err
	}
	return &AlgoMsg{Raw: raw, Payload: payload}, nil
}

// EncodeMessage produces the wire form of p: its tag followed by its
// encoded body.
func EncodeMessage(p Payload) []byte {
	tag := p.Tag()
	body := encodePayload(p)
	out := make([]byte, 0, len(tag)+len(body))
	out = append(out, tag...)
	return append(out, body...)
}
