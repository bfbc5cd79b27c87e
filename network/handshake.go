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
	"bufio"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/algorand/netprobe/crypto"
)

// ProtocolVersionHeader is the version of the gossip protocol the sender speaks.
const ProtocolVersionHeader = "X-Algorand-Version"

// ProtocolAcceptVersionHeader lists versions the sender is willing to accept.
const ProtocolAcceptVersionHeader = "X-Algorand-Accept-Version"

// TelemetryIDHeader is the sender's telemetry GUID.
const TelemetryIDHeader = "X-Algorand-TelId"

// GenesisHeader is the network genesis ID; both sides must agree on it.
const GenesisHeader = "X-Algorand-Genesis"

// NodeRandomHeader is a random string used to detect self-connections.
const NodeRandomHeader = "X-Algorand-NodeRandom"

// AddressHeader is the sender's advertised public address, possibly empty.
const AddressHeader = "X-Algorand-Location"

// InstanceNameHeader distinguishes multiple nodes on one host.
const InstanceNameHeader = "X-Algorand-InstanceName"

// PriorityChallengeHeader carries the responder's priority challenge; the
// initiator answers it with a NetPrioResponse message after the upgrade.
const PriorityChallengeHeader = "X-Algorand-PriorityChallenge"

// UserAgentHeader is the HTTP User-Agent header.
const UserAgentHeader = "User-Agent"

// GossipNetworkPath is the URL path to connect to the websocket gossip endpoint at.
const GossipNetworkPath = "/v1/{genesisID}/gossip"

// ProtocolVersion is the gossip protocol version spoken and accepted by default.
const ProtocolVersion = "2.1"

// websocketAcceptMagic is the fixed GUID of RFC 6455 section 4.2.2.
const websocketAcceptMagic = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// DeriveAcceptKey computes the Sec-WebSocket-Accept value for a
// Sec-WebSocket-Key per RFC 6455: base64 of the SHA-1 of the key
// concatenated with the protocol GUID.
func DeriveAcceptKey(key string) string {
	sum := sha1.Sum([]byte(key + websocketAcceptMagic))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// GenerateWebsocketKey returns a fresh base64-encoded 16-byte nonce for
// the Sec-WebSocket-Key header.
func GenerateWebsocketKey() string {
	var nonce [16]byte
	crypto.RandBytes(nonce[:])
	return base64.StdEncoding.EncodeToString(nonce[:])
}

// HandshakeConfig is everything a handshake sends about ourselves. Every
// field is overridable so tests can send degenerate values; the zero
// value is not useful, start from DefaultHandshakeConfig.
type HandshakeConfig struct {
	GenesisID       string
	ProtocolVersion string
	AcceptVersions  []string
	InstanceName    string
	NodeRandom      string
	TelemetryID     string
	PublicAddress   string
	UserAgent       string

	// PriorityChallenge, when non-empty, is offered by the responder side.
	PriorityChallenge string

	// WebsocketKey overrides the random Sec-WebSocket-Key on the
	// initiator side, for deterministic tests.
	WebsocketKey string

	// AcceptKeyOverride, when non-empty, is sent as Sec-WebSocket-Accept
	// by the responder instead of the derived value. Only resistance
	// tests that deliberately break the handshake set this.
	AcceptKeyOverride string

	// ExtraHeaders are applied last and may override any header above,
	// including with empty or oversized values.
	ExtraHeaders map[string]string
}

// DefaultHandshakeConfig returns a config that passes a stock node's
// header checks on a private network.
func DefaultHandshakeConfig() HandshakeConfig {
	return HandshakeConfig{
		GenesisID:       "private-v1",
		ProtocolVersion: ProtocolVersion,
		AcceptVersions:  []string{ProtocolVersion},
		InstanceName:    "netprobe",
		NodeRandom:      GenerateWebsocketKey(),
		TelemetryID:     uuid.New().String(),
		UserAgent:       "algod/3.22 (netprobe)",
	}
}

// HandshakeResult captures what the remote side said during the upgrade.
type HandshakeResult struct {
	Version           string
	GenesisID         string
	InstanceName      string
	NodeRandom        string
	PriorityChallenge string
	Header            http.Header
}

// RequestPath returns the gossip URL path for the configured genesis.
func (hc HandshakeConfig) RequestPath() string {
	return strings.Replace(GossipNetworkPath, "{genesisID}", hc.GenesisID, 1)
}

func (hc HandshakeConfig) headers() http.Header {
	h := http.Header{}
	h.Set(ProtocolVersionHeader, hc.ProtocolVersion)
	for _, v := range hc.AcceptVersions {
		h.Add(ProtocolAcceptVersionHeader, v)
	}
	h.Set(InstanceNameHeader, hc.InstanceName)
	h.Set(NodeRandomHeader, hc.NodeRandom)
	h.Set(GenesisHeader, hc.GenesisID)
	h.Set(AddressHeader, hc.PublicAddress)
	if hc.TelemetryID != "" {
		h.Set(TelemetryIDHeader, hc.TelemetryID)
	}
	if hc.UserAgent != "" {
		h.Set(UserAgentHeader, hc.UserAgent)
	}
	for name, value := range hc.ExtraHeaders {
		h.Set(name, value)
	}
	return h
}

func resultFromHeader(h http.Header) *HandshakeResult {
	return &HandshakeResult{
		Version:           h.Get(ProtocolVersionHeader),
		GenesisID:         h.Get(GenesisHeader),
		InstanceName:      h.Get(InstanceNameHeader),
		NodeRandom:        h.Get(NodeRandomHeader),
		PriorityChallenge: h.Get(PriorityChallengeHeader),
		Header:            h,
	}
}

// Initiate performs the client side of the upgrade over an established
// connection: writes the GET request, reads the 101 response and verifies
// the accept key. br must be the reader all subsequent traffic on the
// connection goes through, since it may buffer bytes past the response.
func (hc HandshakeConfig) Initiate(br *bufio.Reader, w io.Writer, host string) (*HandshakeResult, error) {
	wsKey := hc.WebsocketKey
	if wsKey == "" {
		wsKey = GenerateWebsocketKey()
	}

	req, err := http.NewRequest(http.MethodGet, "http://"+host+hc.RequestPath(), nil)
	if err != nil {
		return nil, err
	}
	req.Header = hc.headers()
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	// Direct map assignment: Header.Set would canonicalize these to
	// Sec-Websocket-*, losing the RFC 6455 casing on the wire.
	req.Header["Sec-WebSocket-Version"] = []string{"13"}
	req.Header["Sec-WebSocket-Key"] = []string{wsKey}
	if err := req.Write(w); err != nil {
		return nil, fmt.Errorf("handshake: writing request: %w", err)
	}

	rsp, err := http.ReadResponse(br, req)
	if err != nil {
		return nil, fmt.Errorf("handshake: reading response: %w", err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusSwitchingProtocols {
		body, _ := io.ReadAll(io.LimitReader(rsp.Body, 1024))
		return nil, fmt.Errorf("handshake: peer refused upgrade: %s %q", rsp.Status, string(body))
	}
	if accept := rsp.Header.Get("Sec-Websocket-Accept"); accept != DeriveAcceptKey(wsKey) {
		return nil, invalidDataf("handshake: bad Sec-WebSocket-Accept %q", accept)
	}
	return resultFromHeader(rsp.Header), nil
}

// Accept performs the server side of the upgrade given the parsed HTTP
// request: validates it and returns the raw 101 response to write back on
// the hijacked connection, along with what the initiator told us.
// Validation failures return an error and a non-101 raw response that
// should still be written before closing.
func (hc HandshakeConfig) Accept(req *http.Request) (rsp []byte, result *HandshakeResult, err error) {
	if !strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
		return httpErrorResponse(http.StatusBadRequest, "missing upgrade header"), nil,
			invalidDataf("handshake: request is not a websocket upgrade")
	}
	wsKey := req.Header.Get("Sec-Websocket-Key")
	if wsKey == "" {
		return httpErrorResponse(http.StatusBadRequest, "missing Sec-WebSocket-Key"), nil,
			invalidDataf("handshake: missing Sec-WebSocket-Key")
	}
	if genesis := req.Header.Get(GenesisHeader); hc.GenesisID != "" && genesis != hc.GenesisID {
		return httpErrorResponse(http.StatusPreconditionFailed, "mismatching genesis ID"), nil,
			invalidDataf("handshake: genesis %q does not match %q", genesis, hc.GenesisID)
	}
	if random := req.Header.Get(NodeRandomHeader); random != "" && random == hc.NodeRandom {
		return httpErrorResponse(http.StatusPreconditionFailed, "matching NodeRandom"), nil,
			invalidDataf("handshake: connection to self")
	}

	acceptKey := hc.AcceptKeyOverride
	if acceptKey == "" {
		acceptKey = DeriveAcceptKey(wsKey)
	}

	var b strings.Builder
	b.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	b.WriteString("Upgrade: websocket\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	fmt.Fprintf(&b, "Sec-Websocket-Accept: %s\r\n", acceptKey)
	for name, values := range hc.headers() {
		if name == UserAgentHeader {
			continue
		}
		for _, v := range values {
			fmt.Fprintf(&b, "%s: %s\r\n", name, v)
		}
	}
	if hc.PriorityChallenge != "" {
		fmt.Fprintf(&b, "%s: %s\r\n", PriorityChallengeHeader, hc.PriorityChallenge)
	}
	b.WriteString("\r\n")
	return []byte(b.String()), resultFromHeader(req.Header), nil
}

func httpErrorResponse(code int, message string) []byte {
	return []byte(fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		code, http.StatusText(code), len(message), message))
}
