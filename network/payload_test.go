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
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/netprobe/agreement"
	"github.com/algorand/netprobe/data/basics"
	"github.com/algorand/netprobe/data/bookkeeping"
	"github.com/algorand/netprobe/protocol"
	"github.com/algorand/netprobe/testpartitioning"
)

func TestPingRoundTrip(t *testing.T) {
	testpartitioning.PartitionTest(t)

	ping := Ping{Nonce: [8]byte{0, 1, 2, 3, 4, 5, 6, 7}}
	raw := EncodeMessage(ping)
	require.Equal(t, []byte("pi"), raw[:2])

	msg, err := DecodeMessage(raw)
	require.NoError(t, err)
	require.Equal(t, raw, msg.Raw)
	decoded, ok := msg.Payload.(Ping)
	require.True(t, ok)
	require.Equal(t, ping.Nonce, decoded.Nonce)
}

func TestPingBadLength(t *testing.T) {
	testpartitioning.PartitionTest(t)

	_, err := DecodeMessage(append([]byte("pi"), 1, 2, 3))
	require.Error(t, err)
	require.True(t, IsInvalidData(err))

	_, err = DecodeMessage(append([]byte("pj"), make([]byte, 9)...))
	require.Error(t, err)
	require.True(t, IsInvalidData(err))
}

func TestMsgDigestSkipLength(t *testing.T) {
	testpartitioning.PartitionTest(t)

	body := make([]byte, 32)
	for i := range body {
		body[i] = byte(i)
	}
	msg, err := DecodeMessage(append([]byte("MS"), body...))
	require.NoError(t, err)
	skip, ok := msg.Payload.(MsgDigestSkip)
	require.True(t, ok)
	require.Equal(t, body, skip.Digest[:])

	for _, n := range []int{31, 33} {
		_, err := DecodeMessage(append([]byte("MS"), make([]byte, n)...))
		require.Error(t, err)
		require.True(t, IsInvalidData(err))
	}
}

func TestDecodeMessageBadTag(t *testing.T) {
	testpartitioning.PartitionTest(t)

	_, err := DecodeMessage([]byte("X"))
	require.Error(t, err)
	_, err = DecodeMessage([]byte("XQ but not a real tag"))
	require.Error(t, err)
	require.True(t, IsInvalidData(err))
}

func TestDecodeNotImplemented(t *testing.T) {
	testpartitioning.PartitionTest(t)

	body := []byte{0xde, 0xad, 0xbe, 0xef}
	msg, err := DecodeMessage(append([]byte("SP"), body...))
	require.NoError(t, err)
	ni, ok := msg.Payload.(NotImplemented)
	require.True(t, ok)
	require.Equal(t, protocol.StateProofSigTag, ni.Tag())
	require.Equal(t, body, ni.Body)
}

func TestRawBytesEncoding(t *testing.T) {
	testpartitioning.PartitionTest(t)

	// raw bytes go out verbatim, tag included in the caller's data
	raw := RawBytes(append([]byte("PP"), 0xff, 0x00, 0x01))
	require.Equal(t, []byte(raw), EncodeMessage(raw))
}

func TestUniEnsBlockReqTopics(t *testing.T) {
	testpartitioning.PartitionTest(t)

	req := UniEnsBlockReq{DataType: BlockAndCertReq, RoundKey: 7312, Nonce: 123}
	raw := EncodeMessage(req)
	require.Equal(t, []byte("UE"), raw[:2])

	topics, err := UnmarshallTopics(raw[2:])
	require.NoError(t, err)
	require.Len(t, topics, 3)

	round, ok := topics.GetValue(roundKey)
	require.True(t, ok)
	require.Equal(t, uint64(7312), binary.LittleEndian.Uint64(round))

	dataType, ok := topics.GetValue(requestDataTypeKey)
	require.True(t, ok)
	require.Equal(t, "blockAndCert", string(dataType))

	nonce, ok := topics.GetValue(nonceKey)
	require.True(t, ok)
	require.Equal(t, uint64(123), binary.LittleEndian.Uint64(nonce))

	// the catchup variant shares the body format under its own tag
	catchup := EncodeMessage(UniCatchupReq{DataType: CertReq, RoundKey: 1, Nonce: 2})
	require.Equal(t, []byte("UC"), catchup[:2])
}

func TestTopicMsgRespErrorRsp(t *testing.T) {
	testpartitioning.PartitionTest(t)

	hash := []byte("01234567890123456789012345678901")
	// topic order must not matter
	for _, topics := range []Topics{
		{MakeTopic(errorKey, []byte("requested round is not available")), MakeTopic(requestHashKey, hash)},
		{MakeTopic(requestHashKey, hash), MakeTopic(errorKey, []byte("requested round is not available"))},
	} {
		msg, err := DecodeMessage(append([]byte("TS"), topics.MarshallTopics()...))
		require.NoError(t, err)
		rsp, ok := msg.Payload.(*ErrorRsp)
		require.True(t, ok)
		require.Equal(t, "requested round is not available", rsp.Error)
		require.Equal(t, hash, rsp.RequestHash)
	}
}

func TestTopicMsgRespBlockRsp(t *testing.T) {
	testpartitioning.PartitionTest(t)

	hdr := bookkeeping.BlockHeader{
		Round:     basics.Round(7312),
		GenesisID: "private-v1",
		TimeStamp: 1717000000,
	}
	cert := agreement.Certificate{Round: basics.Round(7312), Step: 2}
	hash := []byte("abcdabcdabcdabcdabcdabcdabcdabcd")

	topics := Topics{
		MakeTopic(certDataKey, protocol.EncodeReflect(&cert)),
		MakeTopic(requestHashKey, hash),
		MakeTopic(blockDataKey, protocol.EncodeReflect(&hdr)),
	}
	msg, err := DecodeMessage(append([]byte("TS"), topics.MarshallTopics()...))
	require.NoError(t, err)
	rsp, ok := msg.Payload.(*UniEnsBlockRsp)
	require.True(t, ok)
	require.NotNil(t, rsp.Block)
	require.NotNil(t, rsp.Cert)
	require.Equal(t, hdr.Round, rsp.Block.Round)
	require.Equal(t, hdr.GenesisID, rsp.Block.GenesisID)
	require.Equal(t, cert.Round, rsp.Cert.Round)
	require.Equal(t, hash, rsp.RequestHash)
}

func TestTopicMsgRespBadTopicCount(t *testing.T) {
	testpartitioning.PartitionTest(t)

	for _, topics := range []Topics{
		{MakeTopic(errorKey, []byte("e"))},
		{MakeTopic(errorKey, []byte("e")), MakeTopic(requestHashKey, nil),
			MakeTopic(blockDataKey, nil), MakeTopic(certDataKey, nil)},
	} {
		_, err := DecodeMessage(append([]byte("TS"), topics.MarshallTopics()...))
		require.Error(t, err)
		require.True(t, IsInvalidData(err))
	}
}

func TestTopicMsgRespRoundTrip(t *testing.T) {
	testpartitioning.PartitionTest(t)

	req := UniEnsBlockReq{DataType: BlockReq, RoundKey: 1, Nonce: 9}
	reqHash := HashTopics(encodePayload(req))

	hdr := bookkeeping.BlockHeader{Round: 1}
	cert := agreement.Certificate{Round: 1}
	sent := &UniEnsBlockRsp{Block: &hdr, Cert: &cert, RequestHash: reqHash[:]}

	msg, err := DecodeMessage(EncodeMessage(sent))
	require.NoError(t, err)
	rsp, ok := msg.Payload.(*UniEnsBlockRsp)
	require.True(t, ok)
	require.Equal(t, sent.RequestHash, rsp.RequestHash)
	require.Equal(t, hdr.Round, rsp.Block.Round)
}

func TestNetPrioResponseRoundTrip(t *testing.T) {
	testpartitioning.PartitionTest(t)

	npr := MakePrioResponse("challenge-nonce")
	msg, err := DecodeMessage(EncodeMessage(npr))
	require.NoError(t, err)
	decoded, ok := msg.Payload.(*NetPrioResponse)
	require.True(t, ok)
	require.Equal(t, "challenge-nonce", decoded.Nonce())
	require.True(t, decoded.Sig.Sig.Blank())
}

func TestAgreementVoteRoundTrip(t *testing.T) {
	testpartitioning.PartitionTest(t)

	vote := &AgreementVote{}
	vote.R.Round = basics.Round(42)
	vote.R.Period = agreement.Period(1)
	vote.R.Step = agreement.Step(2)

	msg, err := DecodeMessage(EncodeMessage(vote))
	require.NoError(t, err)
	decoded, ok := msg.Payload.(*AgreementVote)
	require.True(t, ok)
	require.Equal(t, vote.R.Round, decoded.R.Round)
	require.Equal(t, vote.R.Step, decoded.R.Step)
}

func TestProposalPayloadBadBody(t *testing.T) {
	testpartitioning.PartitionTest(t)

	_, err := DecodeMessage(append([]byte("PP"), 0xc1)) // 0xc1 is never valid msgpack
	require.Error(t, err)
	require.True(t, IsInvalidData(err))
}

func TestEncodeUnencodablePanics(t *testing.T) {
	testpartitioning.PartitionTest(t)

	ni := NotImplemented{TagCode: protocol.VoteBundleTag, Body: []byte{1}}
	require.Panics(t, func() { EncodeMessage(ni) })
}

func TestMsgOfInterestMessageRoundTrip(t *testing.T) {
	testpartitioning.PartitionTest(t)

	moi := MakeMsgOfInterest(protocol.TxnTag, protocol.AgreementVoteTag, protocol.ProposalPayloadTag)
	raw := EncodeMessage(moi)
	require.True(t, bytes.HasPrefix(raw, []byte("MI")))

	msg, err := DecodeMessage(raw)
	require.NoError(t, err)
	decoded, ok := msg.Payload.(MsgOfInterest)
	require.True(t, ok)
	require.Equal(t, moi.Tags, decoded.Tags)
}
