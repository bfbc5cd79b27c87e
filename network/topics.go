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
	"unicode/utf8"
)

// Topic keys used by the topic-based request/response messages.
const (
	// requestHashKey is the hash of the topic-encoded request body, echoed
	// back on every response so the requester can match it up.
	requestHashKey = "RequestHash"

	// errorKey carries a human-readable error string on a TopicMsgResp.
	errorKey = "Error"

	// roundKey is the round number being requested, as 8 little-endian bytes.
	roundKey = "roundKey"

	// requestDataTypeKey selects which parts of a block to return.
	requestDataTypeKey = "requestDataType"

	// nonceKey deduplicates otherwise-identical requests.
	nonceKey = "nonce"

	// blockDataKey and certDataKey carry the msgpack-encoded block and
	// certificate on a successful block response.
	blockDataKey = "blockData"
	certDataKey  = "certData"

	// tagsKey carries the comma-separated tag list of a MsgOfInterest.
	tagsKey = "tags"
)

// maxTopicValueLength is the largest value length representable by the
// two-byte form of the length prefix (14 significant bits).
const maxTopicValueLength = 0x3fff

// Topic is a single key/value pair inside a topic list.
type Topic struct {
	key  string
	data []byte
}

// MakeTopic constructs a Topic with the given key and value.
func MakeTopic(key string, data []byte) Topic {
	return Topic{key: key, data: data}
}

// Key returns the topic key.
func (t Topic) Key() string {
	return t.key
}

// Data returns the topic value bytes.
func (t Topic) Data() []byte {
	return t.data
}

// Topics is an ordered list of key/value pairs. Order is preserved by the
// codec but carries no meaning; lookups go through GetValue.
type Topics []Topic

// GetValue returns the value of the first topic with the given key.
func (ts Topics) GetValue(key string) ([]byte, bool) {
	for _, t := range ts {
		if t.key == key {
			return t.data, true
		}
	}
	return nil, false
}

// MarshallTopics serializes a topic list: a one-byte topic count, then for
// each topic a one-byte key length, the key, a one- or two-byte value
// length and the value.
func (ts Topics) MarshallTopics() []byte {
	n := 1
	for _, t := range ts {
		n += 1 + len(t.key) + 2 + len(t.data)
	}
	buf := make([]byte, 0, n)
	buf = append(buf, byte(len(ts)))
	for _, t := range ts {
		buf = append(buf, byte(len(t.key)))
		buf = append(buf, t.key...)
		buf = append(buf, encodeTopicValueLength(len(t.data))...)
		buf = append(buf, t.data...)
	}
	return buf
}

// UnmarshallTopics parses a serialized topic list. Truncated keys or
// values and keys that are not valid UTF-8 fail with InvalidDataError.
// Bytes past the declared topic count are ignored.
func UnmarshallTopics(buffer []byte) (Topics, error) {
	if len(buffer) == 0 {
		return nil, invalidDataf("empty topic list")
	}
	numTopics := int(buffer[0])
	buffer = buffer[1:]

	topics := make(Topics, 0, numTopics)
	for i := 0; i < numTopics; i++ {
		if len(buffer) == 0 {
			return nil, invalidDataf("truncated topic %d: missing key length", i)
		}
		keyLen := int(buffer[0])
		buffer = buffer[1:]
		if keyLen > len(buffer) {
			return nil, invalidDataf("truncated topic %d: key length %d exceeds remaining %d bytes", i, keyLen, len(buffer))
		}
		key := buffer[:keyLen]
		buffer = buffer[keyLen:]
		if !utf8.Valid(key) {
			return nil, invalidDataf("topic %d: key is not valid UTF-8", i)
		}

		valLen, consumed, err := decodeTopicValueLength(buffer)
		if err != nil {
			return nil, err
		}
		buffer = buffer[consumed:]
		if valLen > len(buffer) {
			return nil, invalidDataf("truncated topic %d: value length %d exceeds remaining %d bytes", i, valLen, len(buffer))
		}
		data := make([]byte, valLen)
		copy(data, buffer[:valLen])
		buffer = buffer[valLen:]

		topics = append(topics, Topic{key: string(key), data: data})
	}
	return topics, nil
}

// decodeTopicValueLength reads a value-length prefix from the front of buf.
// A byte with the high bit clear is the whole length (0..127). Otherwise a
// second byte follows; with tmp the two bytes read little-endian, the
// length is ((tmp & 0x7f00) >> 1) | (tmp & 0x7f).
func decodeTopicValueLength(buf []byte) (length int, consumed int, err error) {
	if len(buf) == 0 {
		return 0, 0, invalidDataf("truncated topic: missing value length")
	}
	if buf[0]&0x80 == 0 {
		return int(buf[0]), 1, nil
	}
	if len(buf) < 2 {
		return 0, 0, invalidDataf("truncated topic: value length continuation byte missing")
	}
	tmp := uint16(buf[0]) | uint16(buf[1])<<8
	return int((tmp&0x7f00)>>1 | tmp&0x7f), 2, nil
}

// encodeTopicValueLength is the inverse of decodeTopicValueLength. Lengths
// up to 127 take one byte; up to maxTopicValueLength, two. Larger values
// are a caller bug.
func encodeTopicValueLength(length int) []byte {
	if length < 0x80 {
		return []byte{byte(length)}
	}
	if length > maxTopicValueLength {
		panic("topic value too long to encode")
	}
	return []byte{byte(length&0x7f) | 0x80, byte(length >> 7)}
}
