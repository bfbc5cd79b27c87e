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
	"sort"
	"strings"

	"github.com/algorand/netprobe/protocol"
)

// MsgOfInterest tells the remote peer which message tags we want to
// receive. On the wire it is a single topic, keyed "tags", whose value is
// a comma-separated list of tag codes.
type MsgOfInterest struct {
	Tags map[protocol.Tag]bool
}

// Tag implements Payload.
func (MsgOfInterest) Tag() protocol.Tag {
	return protocol.MsgOfInterestTag
}

// MakeMsgOfInterest builds a MsgOfInterest subscribing to the given tags.
func MakeMsgOfInterest(tags ...protocol.Tag) MsgOfInterest {
	m := MsgOfInterest{Tags: make(map[protocol.Tag]bool, len(tags))}
	for _, tag := range tags {
		m.Tags[tag] = true
	}
	return m
}

// marshallMessageOfInterest encodes the tag set as its topic-list wire form.
// Tags are emitted in sorted order so the encoding is deterministic.
func marshallMessageOfInterest(messageTags map[protocol.Tag]bool) []byte {
	tags := make([]string, 0, len(messageTags))
	for tag := range messageTags {
		tags = append(tags, string(tag))
	}
	sort.Strings(tags)
	topics := Topics{MakeTopic(tagsKey, []byte(strings.Join(tags, ",")))}
	return topics.MarshallTopics()
}

// unmarshallMessageOfInterest decodes a MsgOfInterest body. The topic list
// must contain exactly one "tags" topic, and every listed tag must be a
// known wire tag.
func unmarshallMessageOfInterest(data []byte) (map[protocol.Tag]bool, error) {
	topics, err := UnmarshallTopics(data)
	if err != nil {
		return nil, err
	}
	if len(topics) != 1 {
		return nil, invalidDataf("MsgOfInterest: expected 1 topic, got %d", len(topics))
	}
	if topics[0].key != tagsKey {
		return nil, invalidDataf("MsgOfInterest: unexpected topic key %q", topics[0].key)
	}
	tagList := strings.Split(string(topics[0].data), ",")
	msgTagsMap := make(map[protocol.Tag]bool, len(tagList))
	for _, t := range tagList {
		tag, err := protocol.DecodeTag([]byte(t))
		if err != nil {
			return nil, invalidDataf("MsgOfInterest: %v", err)
		}
		msgTagsMap[tag] = true
	}
	return msgTagsMap, nil
}
