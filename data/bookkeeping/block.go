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

// Package bookkeeping models the slice of the node's block structures the
// harness needs to read block responses off the wire. Field names and codec
// tags mirror the node; fields the harness never looks at are omitted, which
// the tolerant msgpack handle permits.
package bookkeeping

import (
	"github.com/algorand/netprobe/crypto"
	"github.com/algorand/netprobe/data/basics"
)

// BlockHash represents the hash of a block
type BlockHash crypto.Digest

// TxnCommitments represents the commitments computed from the transactions in the block.
// It contains multiple commitments based on different algorithms and hash functions, to support different use cases.
type TxnCommitments struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// Root of transaction merkle tree using SHA512_256 hash function.
	// This commitment is computed based on the PaysetCommit type specified in the block's consensus protocol.
	NativeSha512_256Commitment crypto.Digest `codec:"txn"`

	// Root of transaction vector commitment merkle tree using SHA256 hash function
	Sha256Commitment crypto.Digest `codec:"txn256"`
}

// RewardsState represents the global parameters controlling the rate
// at which accounts accrue rewards.
type RewardsState struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// The FeeSink accepts transaction fees. It can only spend to
	// the incentive pool.
	FeeSink basics.Address `codec:"fees"`

	// The RewardsPool accepts periodic injections from the
	// FeeSink and continually redistributes them to addresses as
	// rewards.
	RewardsPool basics.Address `codec:"rwd"`

	// RewardsLevel specifies how many rewards, in MicroAlgos,
	// have been distributed to each config.Protocol.RewardUnit
	// of MicroAlgos since genesis.
	RewardsLevel uint64 `codec:"earn"`

	// The number of new MicroAlgos added to the participation stake from rewards at the next round.
	RewardsRate uint64 `codec:"rate"`

	// The number of leftover MicroAlgos after the distribution of RewardsRate/rewardUnits
	// MicroAlgos for every reward unit in the next round.
	RewardsResidue uint64 `codec:"frac"`

	// The round at which the RewardsRate will be recalculated.
	RewardsRecalculationRound basics.Round `codec:"rwcalr"`
}

// UpgradeState tracks the protocol upgrade state machine. The harness only
// reads the current protocol out of it.
type UpgradeState struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	CurrentProtocol string `codec:"proto"`
}

// BlockHeader represents the metadata and commitments to the state of a Block.
type BlockHeader struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// Round represents a protocol round index
	Round basics.Round `codec:"rnd"`

	// The hash of the previous block
	Branch BlockHash `codec:"prev"`

	// Sortition seed
	Seed crypto.Seed `codec:"seed"`

	TxnCommitments

	// TimeStamp in seconds since epoch
	TimeStamp int64 `codec:"ts"`

	// Genesis ID to which this block belongs.
	GenesisID string `codec:"gen"`

	// Genesis hash to which this block belongs.
	GenesisHash crypto.Digest `codec:"gh"`

	RewardsState
	UpgradeState
}
