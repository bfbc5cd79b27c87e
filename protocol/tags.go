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

package protocol

import (
	"fmt"
)

// Tag represents a message type identifier. Every gossip message carries a
// two-character ASCII tag ahead of its payload; the tag selects the payload
// decoder.
type Tag string

// Tags, in lexicographic sort order of tag values to avoid duplicates.
// These tags must not contain a comma character because lists of tags
// are encoded using a comma separator (see network/msgOfInterest.go).
const (
	UnknownMsgTag      Tag = "??"
	AgreementVoteTag   Tag = "AV"
	MsgOfInterestTag   Tag = "MI"
	MsgDigestSkipTag   Tag = "MS"
	NetPrioResponseTag Tag = "NP"
	PingTag            Tag = "pi"
	PingReplyTag       Tag = "pj"
	ProposalPayloadTag Tag = "PP"
	StateProofSigTag   Tag = "SP"
	TopicMsgRespTag    Tag = "TS"
	TxnTag             Tag = "TX"
	UniCatchupReqTag   Tag = "UC"
	UniEnsBlockReqTag  Tag = "UE"
	VoteBundleTag      Tag = "VB"
)

// TagLength is the number of bytes a tag occupies on the wire.
const TagLength = 2

// WireTags lists every tag that has a wire encoding, including the "??"
// placeholder the node itself uses for unclassified traffic.
var WireTags = []Tag{
	UnknownMsgTag,
	AgreementVoteTag,
	MsgOfInterestTag,
	MsgDigestSkipTag,
	NetPrioResponseTag,
	PingTag,
	PingReplyTag,
	ProposalPayloadTag,
	StateProofSigTag,
	TopicMsgRespTag,
	TxnTag,
	UniCatchupReqTag,
	UniEnsBlockReqTag,
	VoteBundleTag,
}

var wireTagSet map[Tag]bool

func init() {
	wireTagSet = make(map[Tag]bool, len(WireTags))
	for _, tag := range WireTags {
		wireTagSet[tag] = true
	}
}

// DecodeTag maps the leading bytes of a gossip message back to a Tag. Exactly
// the two-character codes listed in WireTags decode successfully; any other
// byte pair (including non-UTF-8 input) is a hard error rather than a silent
// fallback, so that the harness never misattributes traffic.
func DecodeTag(b []byte) (Tag, error) {
	if len(b) != TagLength {
		return "", fmt.Errorf("protocol: tag must be %d bytes, got %d", TagLength, len(b))
	}
	tag := Tag(b)
	if !wireTagSet[tag] {
		return "", fmt.Errorf("protocol: unrecognized tag %q", string(b))
	}
	return tag, nil
}
