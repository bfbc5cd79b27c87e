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

	"github.com/algorand/netprobe/agreement"
	"github.com/algorand/netprobe/crypto"
	"github.com/algorand/netprobe/data/basics"
	"github.com/algorand/netprobe/data/bookkeeping"
	"github.com/algorand/netprobe/protocol"
)

// UniEnsBlockReqType selects which parts of a block a request asks for.
type UniEnsBlockReqType int

const (
	// BlockReq requests the block data only.
	BlockReq UniEnsBlockReqType = iota
	// CertReq requests the certificate only.
	CertReq
	// BlockAndCertReq requests both.
	BlockAndCertReq
)

// String returns the canonical wire encoding of the request type.
func (t UniEnsBlockReqType) String() string {
	switch t {
	case BlockReq:
		return blockDataKey
	case CertReq:
		return certDataKey
	case BlockAndCertReq:
		return "blockAndCert"
	default:
		return "unknown"
	}
}

// UniEnsBlockReq asks the peer for the block of a given round over the
// gossip connection. Nonce lets the requester tell concurrent responses
// apart.
type UniEnsBlockReq struct {
	DataType UniEnsBlockReqType
	RoundKey basics.Round
	Nonce    uint64
}

// Tag implements Payload.
func (UniEnsBlockReq) Tag() protocol.Tag {
	return protocol.UniEnsBlockReqTag
}

// UniCatchupReq is the legacy catchup variant of UniEnsBlockReq; same
// shape, different wire tag.
type UniCatchupReq struct {
	DataType UniEnsBlockReqType
	RoundKey basics.Round
	Nonce    uint64
}

// Tag implements Payload.
func (UniCatchupReq) Tag() protocol.Tag {
	return protocol.UniCatchupReqTag
}

func blockReqTopics(dataType UniEnsBlockReqType, round basics.Round, nonce uint64) Topics {
	u64le := func(v uint64) []byte {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, v)
		return b
	}
	return Topics{
		MakeTopic(roundKey, u64le(uint64(round))),
		MakeTopic(requestDataTypeKey, []byte(dataType.String())),
		MakeTopic(nonceKey, u64le(nonce)),
	}
}

// HashTopics returns the digest a responder echoes back as the
// RequestHash topic: the hash of the marshalled request topics.
func HashTopics(marshalled []byte) crypto.Digest {
	return crypto.Hash(marshalled)
}

// ErrorRsp is the error form of a TopicMsgResp: an error string plus the
// hash of the request it answers.
type ErrorRsp struct {
	Error       string
	RequestHash []byte
}

// Tag implements Payload.
func (*ErrorRsp) Tag() protocol.Tag {
	return protocol.TopicMsgRespTag
}

// UniEnsBlockRsp is the success form of a TopicMsgResp: the requested
// block header and certificate plus the hash of the request it answers.
// Block or Cert may be nil when the corresponding topic failed to arrive.
type UniEnsBlockRsp struct {
	Block       *bookkeeping.BlockHeader
	Cert        *agreement.Certificate
	RequestHash []byte
}

// Tag implements Payload.
func (*UniEnsBlockRsp) Tag() protocol.Tag {
	return protocol.TopicMsgRespTag
}

// decodeTopicMsgResp discriminates the two response forms structurally:
// the wire carries no type marker, so exactly 2 topics means an error
// response and exactly 3 means a block response.
func decodeTopicMsgResp(topics Topics) (Payload, error) {
	switch len(topics) {
	case 2:
		return decodeErrorRsp(topics)
	case 3:
		return decodeUniEnsBlockRsp(topics)
	default:
		return nil, invalidDataf("TopicMsgResp: unexpected number of topics %d", len(topics))
	}
}

func decodeErrorRsp(topics Topics) (*ErrorRsp, error) {
	rsp := &ErrorRsp{}
	for _, topic := range topics {
		switch topic.key {
		case errorKey:
			rsp.Error = string(topic.data)
		case requestHashKey:
			rsp.RequestHash = topic.data
		default:
			return nil, invalidDataf("TopicMsgResp: unexpected topic %q in error response", topic.key)
		}
	}
	return rsp, nil
}

func decodeUniEnsBlockRsp(topics Topics) (*UniEnsBlockRsp, error) {
	rsp := &UniEnsBlockRsp{}
	for _, topic := range topics {
		switch topic.key {
		case blockDataKey:
			var hdr bookkeeping.BlockHeader
			if err := protocol.DecodeReflect(topic.data, &hdr); err != nil {
				return nil, invalidDataf("TopicMsgResp: bad block data: %v", err)
			}
			rsp.Block = &hdr
		case certDataKey:
			var cert agreement.Certificate
			if err := protocol.DecodeReflect(topic.data, &cert); err != nil {
				return nil, invalidDataf("TopicMsgResp: bad cert data: %v", err)
			}
			rsp.Cert = &cert
		case requestHashKey:
			rsp.RequestHash = topic.data
		default:
			return nil, invalidDataf("TopicMsgResp: unexpected topic %q in block response", topic.key)
		}
	}
	return rsp, nil
}

// marshallBlockRsp encodes a UniEnsBlockRsp to topics, for responder use.
func marshallBlockRsp(rsp *UniEnsBlockRsp) Topics {
	topics := Topics{}
	if rsp.Block != nil {
		topics = append(topics, MakeTopic(blockDataKey, protocol.EncodeReflect(rsp.Block)))
	}
	if rsp.Cert != nil {
		topics = append(topics, MakeTopic(certDataKey, protocol.EncodeReflect(rsp.Cert)))
	}
	topics = append(topics, MakeTopic(requestHashKey, rsp.RequestHash))
	return topics
}

// marshallErrorRsp encodes an ErrorRsp to topics, for responder use.
func marshallErrorRsp(rsp *ErrorRsp) Topics {
	return Topics{
		MakeTopic(errorKey, []byte(rsp.Error)),
		MakeTopic(requestHashKey, rsp.RequestHash),
	}
}
