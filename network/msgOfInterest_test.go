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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/netprobe/protocol"
	"github.com/algorand/netprobe/testpartitioning"
)

func TestUnmarshallMessageOfInterestErrors(t *testing.T) {
	testpartitioning.PartitionTest(t)

	// not a topic list at all
	tags, err := unmarshallMessageOfInterest([]byte{0x88})
	require.Error(t, err)
	require.Len(t, tags, 0)

	// wrong topic key
	invalidTopics := Topics{MakeTopic("something-else", []byte{})}
	tags, err = unmarshallMessageOfInterest(invalidTopics.MarshallTopics())
	require.Error(t, err)
	require.Len(t, tags, 0)

	// more than one topic
	twoTopics := Topics{MakeTopic(tagsKey, []byte("TX")), MakeTopic(tagsKey, []byte("AV"))}
	tags, err = unmarshallMessageOfInterest(twoTopics.MarshallTopics())
	require.Error(t, err)
	require.Len(t, tags, 0)

	// unknown tag in the list
	unknownTag := Topics{MakeTopic(tagsKey, []byte("TX,XQ"))}
	tags, err = unmarshallMessageOfInterest(unknownTag.MarshallTopics())
	require.Error(t, err)
	require.True(t, IsInvalidData(err))
	require.Len(t, tags, 0)
}

func TestMarshallMessageOfInterest(t *testing.T) {
	testpartitioning.PartitionTest(t)

	bytes := marshallMessageOfInterest(map[protocol.Tag]bool{protocol.AgreementVoteTag: true})
	tags, err := unmarshallMessageOfInterest(bytes)
	require.NoError(t, err)
	require.True(t, tags[protocol.AgreementVoteTag])
	require.Len(t, tags, 1)

	moi := MakeMsgOfInterest(protocol.AgreementVoteTag, protocol.NetPrioResponseTag)
	tags, err = unmarshallMessageOfInterest(marshallMessageOfInterest(moi.Tags))
	require.NoError(t, err)
	require.True(t, tags[protocol.AgreementVoteTag])
	require.True(t, tags[protocol.NetPrioResponseTag])
	require.Len(t, tags, 2)

	// duplicates collapse
	moi = MakeMsgOfInterest(protocol.TxnTag, protocol.TxnTag)
	tags, err = unmarshallMessageOfInterest(marshallMessageOfInterest(moi.Tags))
	require.NoError(t, err)
	require.Len(t, tags, 1)
}

func TestMarshallMessageOfInterestDeterministic(t *testing.T) {
	testpartitioning.PartitionTest(t)

	moi := MakeMsgOfInterest(protocol.WireTags...)
	first := marshallMessageOfInterest(moi.Tags)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, marshallMessageOfInterest(moi.Tags))
	}

	tags, err := unmarshallMessageOfInterest(first)
	require.NoError(t, err)
	require.Len(t, tags, len(protocol.WireTags))
}
