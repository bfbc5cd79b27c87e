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

package synthnode

import (
	"fmt"
	"os"
	"time"

	"github.com/algorand/netprobe/network"
	"github.com/algorand/netprobe/protocol"
)

// Config controls one synthetic node.
type Config struct {
	// ListenAddress is the local address Listen binds to; the empty port
	// picks a free one.
	ListenAddress string

	// DialTimeout bounds the TCP connect plus handshake of Connect.
	DialTimeout time.Duration

	// InboundQueueSize is the capacity of the received-message queue.
	// Reads stall once it fills, applying backpressure to the peer.
	InboundQueueSize int

	// ReadBufferSize is the per-connection read chunk size.
	ReadBufferSize int

	// RespondToChallenge answers a handshake priority challenge with an
	// unsigned NetPrioResponse automatically.
	RespondToChallenge bool

	// SubscribeTags, when non-empty, is sent as a MsgOfInterest right
	// after each outbound handshake completes.
	SubscribeTags []protocol.Tag

	// Handshake carries everything the node says about itself during the
	// HTTP upgrade.
	Handshake network.HandshakeConfig
}

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() Config {
	return Config{
		ListenAddress:      "127.0.0.1:0",
		DialTimeout:        10 * time.Second,
		InboundQueueSize:   256,
		ReadBufferSize:     4096,
		RespondToChallenge: true,
		Handshake:          network.DefaultHandshakeConfig(),
	}
}

// LoadConfigFromFile reads a JSON config file over the defaults, so a
// partial file only overrides what it names.
func LoadConfigFromFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := protocol.DecodeJSON(data, &cfg); err != nil {
		return cfg, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfigToFile writes cfg as JSON, for generating a template to edit.
func (cfg Config) SaveConfigToFile(path string) error {
	return os.WriteFile(path, protocol.EncodeJSON(&cfg), 0600)
}
