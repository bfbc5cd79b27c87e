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
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/netprobe/testpartitioning"
)

func TestDeriveAcceptKey(t *testing.T) {
	testpartitioning.PartitionTest(t)

	// both sample keys from RFC 6455 (sections 1.3 and 4.1)
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", DeriveAcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
	require.Equal(t, "OfS0wDaT5NoxF2gqm7Zj2YtetzM=", DeriveAcceptKey("AQIDBAUGBwgJCgsMDQ4PEC=="))
}

func TestGenerateWebsocketKey(t *testing.T) {
	testpartitioning.PartitionTest(t)

	k1 := GenerateWebsocketKey()
	k2 := GenerateWebsocketKey()
	require.NotEqual(t, k1, k2)
	require.Len(t, k1, 24) // base64 of 16 bytes
}

func mustRequest(t *testing.T, raw []byte) *http.Request {
	req, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(raw)))
	require.NoError(t, err)
	return req
}

func TestHandshakeAccept(t *testing.T) {
	testpartitioning.PartitionTest(t)

	server := DefaultHandshakeConfig()
	server.PriorityChallenge = "prio-nonce"

	var reqBuf bytes.Buffer
	client := DefaultHandshakeConfig()
	client.WebsocketKey = "dGhlIHNhbXBsZSBub25jZQ=="

	req, err := http.NewRequest(http.MethodGet, "http://node"+client.RequestPath(), nil)
	require.NoError(t, err)
	req.Header = client.headers()
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Key", client.WebsocketKey)
	require.NoError(t, req.Write(&reqBuf))

	rsp, result, err := server.Accept(mustRequest(t, reqBuf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, client.InstanceName, result.InstanceName)
	require.Equal(t, client.GenesisID, result.GenesisID)

	text := string(rsp)
	require.True(t, strings.HasPrefix(text, "HTTP/1.1 101 Switching Protocols\r\n"))
	require.Contains(t, text, "Sec-Websocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n")
	require.Contains(t, text, PriorityChallengeHeader+": prio-nonce\r\n")
	require.Contains(t, text, GenesisHeader+": "+server.GenesisID+"\r\n")
}

func TestHandshakeAcceptKeyOverride(t *testing.T) {
	testpartitioning.PartitionTest(t)

	server := DefaultHandshakeConfig()
	server.AcceptKeyOverride = "bm90IGRlcml2ZWQ="
	raw := "GET /v1/private-v1/gossip HTTP/1.1\r\n" +
		"Host: node\r\n" +
		"Connection: Upgrade\r\n" +
		"Upgrade: websocket\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		GenesisHeader + ": private-v1\r\n\r\n"

	rsp, _, err := server.Accept(mustRequest(t, []byte(raw)))
	require.NoError(t, err)
	require.Contains(t, string(rsp), "Sec-Websocket-Accept: bm90IGRlcml2ZWQ=\r\n")
}

func TestHandshakeAcceptRejectsGenesisMismatch(t *testing.T) {
	testpartitioning.PartitionTest(t)

	server := DefaultHandshakeConfig()
	raw := "GET /v1/other-net/gossip HTTP/1.1\r\n" +
		"Host: node\r\n" +
		"Connection: Upgrade\r\n" +
		"Upgrade: websocket\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		GenesisHeader + ": other-net\r\n\r\n"

	rsp, _, err := server.Accept(mustRequest(t, []byte(raw)))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(string(rsp), "HTTP/1.1 412"))
}

func TestHandshakeAcceptRejectsMissingKey(t *testing.T) {
	testpartitioning.PartitionTest(t)

	server := DefaultHandshakeConfig()
	raw := "GET /v1/private-v1/gossip HTTP/1.1\r\n" +
		"Host: node\r\n" +
		"Connection: Upgrade\r\n" +
		"Upgrade: websocket\r\n" +
		GenesisHeader + ": private-v1\r\n\r\n"

	rsp, _, err := server.Accept(mustRequest(t, []byte(raw)))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(string(rsp), "HTTP/1.1 400"))
}

func TestHandshakeInitiate(t *testing.T) {
	testpartitioning.PartitionTest(t)

	client := DefaultHandshakeConfig()
	client.WebsocketKey = "dGhlIHNhbXBsZSBub25jZQ=="

	rspText := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-Websocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n" +
		ProtocolVersionHeader + ": 2.1\r\n" +
		GenesisHeader + ": private-v1\r\n" +
		PriorityChallengeHeader + ": abc\r\n\r\n"

	var reqBuf bytes.Buffer
	result, err := client.Initiate(bufio.NewReader(strings.NewReader(rspText)), &reqBuf, "node:4160")
	require.NoError(t, err)
	require.Equal(t, "2.1", result.Version)
	require.Equal(t, "private-v1", result.GenesisID)
	require.Equal(t, "abc", result.PriorityChallenge)

	sent := reqBuf.String()
	require.True(t, strings.HasPrefix(sent, "GET /v1/private-v1/gossip HTTP/1.1\r\n"))
	require.Contains(t, sent, "Sec-WebSocket-Key: "+client.WebsocketKey+"\r\n")
	require.Contains(t, sent, ProtocolVersionHeader+": 2.1\r\n")
}

func TestHandshakeInitiateRejectsBadAccept(t *testing.T) {
	testpartitioning.PartitionTest(t)

	client := DefaultHandshakeConfig()
	client.WebsocketKey = "dGhlIHNhbXBsZSBub25jZQ=="

	rspText := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-Websocket-Accept: bm90IHRoZSByaWdodCBrZXk=\r\n\r\n"

	var reqBuf bytes.Buffer
	_, err := client.Initiate(bufio.NewReader(strings.NewReader(rspText)), &reqBuf, "node:4160")
	require.Error(t, err)
	require.True(t, IsInvalidData(err))
}

func TestHandshakeInitiateRejectsRefusal(t *testing.T) {
	testpartitioning.PartitionTest(t)

	client := DefaultHandshakeConfig()
	rspText := "HTTP/1.1 412 Precondition Failed\r\n" +
		"Content-Length: 0\r\nConnection: close\r\n\r\n"

	var reqBuf bytes.Buffer
	_, err := client.Initiate(bufio.NewReader(strings.NewReader(rspText)), &reqBuf, "node:4160")
	require.Error(t, err)
}
