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
	"fmt"
	"io"

	"github.com/algorand/netprobe/agreement"
	"github.com/algorand/netprobe/crypto"
	"github.com/algorand/netprobe/data/transactions"
	"github.com/algorand/netprobe/protocol"
)

// Payload is a decoded message body. The tag is a pure function of the
// concrete type, so a payload can never disagree with the tag it is sent
// under.
type Payload interface {
	Tag() protocol.Tag
}

// Ping carries an 8-byte nonce the peer echoes back in a PingReply.
type Ping struct {
	Nonce [8]byte
}

// Tag implements Payload.
func (Ping) Tag() protocol.Tag {
	return protocol.PingTag
}

// PingReply echoes the nonce of a Ping.
type PingReply struct {
	Nonce [8]byte
}

// Tag implements Payload.
func (PingReply) Tag() protocol.Tag {
	return protocol.PingReplyTag
}

// MsgDigestSkip announces the hash of a proposal payload the sender is
// about to relay, letting the receiver skip the duplicate.
type MsgDigestSkip struct {
	Digest crypto.Digest
}

// Tag implements Payload.
func (MsgDigestSkip) Tag() protocol.Tag {
	return protocol.MsgDigestSkipTag
}

// ProposalPayload is a relayed block proposal.
type ProposalPayload struct {
	agreement.TransmittedPayload
}

// Tag implements Payload.
func (*ProposalPayload) Tag() protocol.Tag {
	return protocol.ProposalPayloadTag
}

// AgreementVote is a relayed consensus vote.
type AgreementVote struct {
	agreement.UnauthenticatedVote
}

// Tag implements Payload.
func (*AgreementVote) Tag() protocol.Tag {
	return protocol.AgreementVoteTag
}

// Txn carries one or more msgpack-encoded signed transactions,
// concatenated back to back.
type Txn struct {
	SignedTxns []transactions.SignedTxn
}

// Tag implements Payload.
func (*Txn) Tag() protocol.Tag {
	return protocol.TxnTag
}

// RawBytes is an arbitrary message sent verbatim, tag bytes included.
// It never comes out of a decode; it exists so malformed or unmodeled
// content can be injected deliberately. Its own tag is empty, so the
// encoder prepends nothing.
type RawBytes []byte

// Tag implements Payload.
func (RawBytes) Tag() protocol.Tag {
	return ""
}

// NotImplemented is the decode result for tags whose body format is not
// modeled. The body is kept unconsumed.
type NotImplemented struct {
	TagCode protocol.Tag
	Body    []byte
}

// Tag implements Payload.
func (n NotImplemented) Tag() protocol.Tag {
	return n.TagCode
}

// decodePayload interprets body according to tag. The tag is an explicit
// argument for exactly the duration of the call; nothing stashes it
// between messages.
func decodePayload(tag protocol.Tag, body []byte) (Payload, error) {
	switch tag {
	case protocol.MsgOfInterestTag:
		tags, err := unmarshallMessageOfInterest(body)
		if err != nil {
			return nil, err
		}
		return MsgOfInterest{Tags: tags}, nil

	case protocol.TopicMsgRespTag:
		topics, err := UnmarshallTopics(body)
		if err != nil {
			return nil, err
		}
		return decodeTopicMsgResp(topics)

	case protocol.ProposalPayloadTag:
		pp := &ProposalPayload{}
		if err := protocol.DecodeReflect(body, &pp.TransmittedPayload); err != nil {
			return nil, invalidDataf("ProposalPayload: %v", err)
		}
		return pp, nil

	case protocol.AgreementVoteTag:
		av := &AgreementVote{}
		if err := protocol.DecodeReflect(body, &av.UnauthenticatedVote); err != nil {
			return nil, invalidDataf("AgreementVote: %v", err)
		}
		return av, nil

	case protocol.NetPrioResponseTag:
		npr := &NetPrioResponse{}
		if err := protocol.DecodeReflect(body, npr); err != nil {
			return nil, invalidDataf("NetPrioResponse: %v", err)
		}
		return npr, nil

	case protocol.TxnTag:
		txn := &Txn{}
		dec := protocol.NewDecoderBytes(body)
		for {
			var stx transactions.SignedTxn
			err := dec.Decode(&stx)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, invalidDataf("Txn: %v", err)
			}
			txn.SignedTxns = append(txn.SignedTxns, stx)
		}
		if len(txn.SignedTxns) == 0 {
			return nil, invalidDataf("Txn: empty transaction group")
		}
		return txn, nil

	case protocol.MsgDigestSkipTag:
		if len(body) != crypto.DigestSize {
			return nil, invalidDataf("MsgDigestSkip: expected %d bytes, got %d", crypto.DigestSize, len(body))
		}
		var msg MsgDigestSkip
		copy(msg.Digest[:], body)
		return msg, nil

	case protocol.PingTag:
		var msg Ping
		if len(body) != len(msg.Nonce) {
			return nil, invalidDataf("Ping: expected %d bytes, got %d", len(msg.Nonce), len(body))
		}
		copy(msg.Nonce[:], body)
		return msg, nil

	case protocol.PingReplyTag:
		var msg PingReply
		if len(body) != len(msg.Nonce) {
			return nil, invalidDataf("PingReply: expected %d bytes, got %d", len(msg.Nonce), len(body))
		}
		copy(msg.Nonce[:], body)
		return msg, nil

	default:
		return NotImplemented{TagCode: tag, Body: body}, nil
	}
}

// encodePayload returns the wire body of p, without the tag prefix.
// Payloads with no outbound form indicate a harness bug and panic.
func encodePayload(p Payload) []byte {
	switch msg := p.(type) {
	case MsgOfInterest:
		return marshallMessageOfInterest(msg.Tags)
	case UniEnsBlockReq:
		return blockReqTopics(msg.DataType, msg.RoundKey, msg.Nonce).MarshallTopics()
	case UniCatchupReq:
		return blockReqTopics(msg.DataType, msg.RoundKey, msg.Nonce).MarshallTopics()
	case *ErrorRsp:
		return marshallErrorRsp(msg).MarshallTopics()
	case *UniEnsBlockRsp:
		return marshallBlockRsp(msg).MarshallTopics()
	case *ProposalPayload:
		return protocol.EncodeReflect(&msg.TransmittedPayload)
	case *AgreementVote:
		return protocol.EncodeReflect(&msg.UnauthenticatedVote)
	case *NetPrioResponse:
		return protocol.EncodeReflect(msg)
	case *Txn:
		var out []byte
		for i := range msg.SignedTxns {
			out = append(out, protocol.EncodeReflect(&msg.SignedTxns[i])...)
		}
		return out
	case MsgDigestSkip:
		return msg.Digest[:]
	case Ping:
		return append([]byte(nil), msg.Nonce[:]...)
	case PingReply:
		return append([]byte(nil), msg.Nonce[:]...)
	case RawBytes:
		return msg
	default:
		panic(fmt.Sprintf("payload %T has no outbound encoding", p))
	}
}
