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
	"encoding/binary"

	"github.com/algorand/netprobe/crypto"
)

// Websocket opcodes (RFC 6455 section 5.2).
const (
	opContinuation = 0x0
	opText         = 0x1
	opBinary       = 0x2
	opClose        = 0x8
	opPing         = 0x9
	opPong         = 0xa
)

const maxFrameHeaderSize = 14

// frameHeader is a parsed websocket frame header.
type frameHeader struct {
	fin        bool
	rsv        byte
	opcode     byte
	masked     bool
	maskKey    [4]byte
	length     uint64
	headerSize int
}

// parseFrameHeader reads a frame header from the front of buf. A nil
// header with nil error means more bytes are needed.
func parseFrameHeader(buf []byte) (*frameHeader, error) {
	if len(buf) < 2 {
		return nil, nil
	}
	hdr := &frameHeader{
		fin:    buf[0]&0x80 != 0,
		rsv:    buf[0] & 0x70,
		opcode: buf[0] & 0x0f,
		masked: buf[1]&0x80 != 0,
	}
	if hdr.rsv != 0 {
		return nil, invalidDataf("websocket frame with reserved bits %#x set", hdr.rsv>>4)
	}

	size := 2
	switch l := buf[1] & 0x7f; l {
	case 126:
		size += 2
		if len(buf) < size {
			return nil, nil
		}
		hdr.length = uint64(binary.BigEndian.Uint16(buf[2:4]))
	case 127:
		size += 8
		if len(buf) < size {
			return nil, nil
		}
		hdr.length = binary.BigEndian.Uint64(buf[2:10])
		if hdr.length&0x8000000000000000 != 0 {
			return nil, invalidDataf("websocket frame length has the high bit set")
		}
	default:
		hdr.length = uint64(l)
	}

	if hdr.masked {
		if len(buf) < size+4 {
			return nil, nil
		}
		copy(hdr.maskKey[:], buf[size:size+4])
		size += 4
	}
	hdr.headerSize = size
	return hdr, nil
}

// maskBytes applies the websocket masking transform in place; masking and
// unmasking are the same xor.
func maskBytes(key [4]byte, data []byte) {
	for i := range data {
		data[i] ^= key[i%4]
	}
}

// appendFrame appends one websocket frame carrying payload to dst. When
// mask is set a fresh random mask key is used and the payload copy is
// masked; payload itself is not modified.
func appendFrame(dst []byte, fin bool, opcode byte, payload []byte, mask bool) []byte {
	b0 := opcode
	if fin {
		b0 |= 0x80
	}
	dst = append(dst, b0)

	var b1 byte
	if mask {
		b1 = 0x80
	}
	switch {
	case len(payload) < 126:
		dst = append(dst, b1|byte(len(payload)))
	case len(payload) <= 0xffff:
		dst = append(dst, b1|126, byte(len(payload)>>8), byte(len(payload)))
	default:
		dst = append(dst, b1|127)
		var l [8]byte
		binary.BigEndian.PutUint64(l[:], uint64(len(payload)))
		dst = append(dst, l[:]...)
	}

	if !mask {
		return append(dst, payload...)
	}
	var key [4]byte
	crypto.RandBytes(key[:])
	dst = append(dst, key[:]...)
	start := len(dst)
	dst = append(dst, payload...)
	maskBytes(key, dst[start:])
	return dst
}

// MessageCodec turns a websocket byte stream into AlgoMsgs and back. It
// holds per-connection state only: the receive buffer, fragment
// reassembly, and which side of the connection we are (the initiator
// masks outgoing frames, the responder does not).
type MessageCodec struct {
	clientSide bool

	buf []byte

	// fragment reassembly across continuation frames
	fragActive bool
	fragData   []byte
}

// NewMessageCodec returns a codec for one connection. clientSide selects
// RFC 6455 masking of outgoing frames.
func NewMessageCodec(clientSide bool) *MessageCodec {
	return &MessageCodec{clientSide: clientSide}
}

// Feed appends newly received bytes to the codec's buffer.
func (c *MessageCodec) Feed(p []byte) {
	c.buf = append(c.buf, p...)
}

// Next returns the next complete message from the buffered stream.
// (nil, nil) means the buffer holds only an incomplete frame and more
// bytes are needed. Text and control frames are a protocol violation on
// the gossip channel and fail with InvalidDataError, as does a binary
// message that the tag or payload layer rejects.
func (c *MessageCodec) Next() (*AlgoMsg, error) {
	for {
		hdr, err := parseFrameHeader(c.buf)
		if err != nil {
			return nil, err
		}
		if hdr == nil {
			return nil, nil
		}
		total := uint64(hdr.headerSize) + hdr.length
		if uint64(len(c.buf)) < total {
			return nil, nil
		}

		payload := make([]byte, hdr.length)
		copy(payload, c.buf[hdr.headerSize:total])
		c.buf = c.buf[total:]
		if hdr.masked {
			maskBytes(hdr.maskKey, payload)
		}

		switch hdr.opcode {
		case opBinary:
			if c.fragActive {
				return nil, invalidDataf("websocket binary frame interleaved with an unfinished fragmented message")
			}
			if !hdr.fin {
				c.fragActive = true
				c.fragData = payload
				continue
			}
			return DecodeMessage(payload)
		case opContinuation:
			if !c.fragActive {
				return nil, invalidDataf("websocket continuation frame without a preceding fragment")
			}
			c.fragData = append(c.fragData, payload...)
			if !hdr.fin {
				continue
			}
			data := c.fragData
			c.fragActive = false
			c.fragData = nil
			return DecodeMessage(data)
		default:
			return nil, invalidDataf("unexpected websocket opcode %#x", hdr.opcode)
		}
	}
}

// EncodeMessage frames the wire form of p as a single binary websocket
// message, masked according to the codec's side.
func (c *MessageCodec) EncodeMessage(p Payload) []byte {
	return c.EncodeFrame(EncodeMessage(p))
}

// EncodeFrame frames an already-encoded message body.
func (c *MessageCodec) EncodeFrame(msg []byte) []byte {
	return appendFrame(make([]byte, 0, maxFrameHeaderSize+len(msg)), true, opBinary, msg, c.clientSide)
}
