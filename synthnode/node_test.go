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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/netprobe/logging"
	"github.com/algorand/netprobe/network"
	"github.com/algorand/netprobe/protocol"
	"github.com/algorand/netprobe/testpartitioning"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func startPair(t *testing.T, serverCfg, clientCfg Config) (server, client *SyntheticNode, serverAddr string) {
	server = MakeSyntheticNode(logging.TestingLog(t), serverCfg)
	addr, err := server.Listen()
	require.NoError(t, err)
	t.Cleanup(server.Shutdown)

	client = MakeSyntheticNode(logging.TestingLog(t), clientCfg)
	require.NoError(t, client.Connect(testContext(t), addr.String()))
	t.Cleanup(client.Shutdown)

	return server, client, addr.String()
}

func TestPingPongLoopback(t *testing.T) {
	testpartitioning.PartitionTest(t)

	server, client, serverAddr := startPair(t, DefaultConfig(), DefaultConfig())
	ctx := testContext(t)

	nonce := [8]byte{0, 1, 2, 3, 4, 5, 6, 7}
	require.NoError(t, client.SendMessage(serverAddr, network.Ping{Nonce: nonce}))

	in, err := server.ReceiveMessage(ctx)
	require.NoError(t, err)
	ping, ok := in.Msg.Payload.(network.Ping)
	require.True(t, ok)
	require.Equal(t, nonce, ping.Nonce)

	require.NoError(t, server.SendMessage(in.Addr, network.PingReply{Nonce: ping.Nonce}))

	reply, err := client.ReceiveMessage(ctx)
	require.NoError(t, err)
	pong, ok := reply.Msg.Payload.(network.PingReply)
	require.True(t, ok)
	require.Equal(t, nonce, pong.Nonce)
}

func TestPriorityChallengeResponse(t *testing.T) {
	testpartitioning.PartitionTest(t)

	serverCfg := DefaultConfig()
	serverCfg.Handshake.PriorityChallenge = "prove-it"
	server, _, _ := startPair(t, serverCfg, DefaultConfig())

	in, err := server.ExpectMessage(testContext(t), func(msg *network.AlgoMsg) bool {
		return msg.Payload.Tag() == protocol.NetPrioResponseTag
	})
	require.NoError(t, err)
	npr := in.Msg.Payload.(*network.NetPrioResponse)
	require.Equal(t, "prove-it", npr.Nonce())
}

func TestSubscribeTagsSentOnConnect(t *testing.T) {
	testpartitioning.PartitionTest(t)

	clientCfg := DefaultConfig()
	clientCfg.SubscribeTags = []protocol.Tag{protocol.TxnTag, protocol.AgreementVoteTag}
	server, _, _ := startPair(t, DefaultConfig(), clientCfg)

	in, err := server.ExpectMessage(testContext(t), func(msg *network.AlgoMsg) bool {
		return msg.Payload.Tag() == protocol.MsgOfInterestTag
	})
	require.NoError(t, err)
	moi := in.Msg.Payload.(network.MsgOfInterest)
	require.True(t, moi.Tags[protocol.TxnTag])
	require.True(t, moi.Tags[protocol.AgreementVoteTag])
	require.Len(t, moi.Tags, 2)
}

func TestSendRawReplaysBytes(t *testing.T) {
	testpartitioning.PartitionTest(t)

	server, client, serverAddr := startPair(t, DefaultConfig(), DefaultConfig())
	ctx := testContext(t)

	captured := network.EncodeMessage(network.Ping{Nonce: [8]byte{9, 8, 7, 6, 5, 4, 3, 2}})
	require.NoError(t, client.SendRaw(serverAddr, captured))

	in, err := server.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Equal(t, captured, in.Msg.Raw)
}

func TestMalformedTrafficDropsConnection(t *testing.T) {
	testpartitioning.PartitionTest(t)

	server, client, serverAddr := startPair(t, DefaultConfig(), DefaultConfig())

	// a tag that is not a known pair kills the connection server-side
	require.NoError(t, client.SendRaw(serverAddr, []byte{0xff, 0xfe, 0x01}))

	require.Eventually(t, func() bool {
		return len(server.ConnectedPeers()) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestGenesisMismatchRejected(t *testing.T) {
	testpartitioning.PartitionTest(t)

	server := MakeSyntheticNode(logging.TestingLog(t), DefaultConfig())
	addr, err := server.Listen()
	require.NoError(t, err)
	t.Cleanup(server.Shutdown)

	clientCfg := DefaultConfig()
	clientCfg.Handshake.GenesisID = "other-net"
	client := MakeSyntheticNode(logging.TestingLog(t), clientCfg)
	t.Cleanup(client.Shutdown)

	err = client.Connect(testContext(t), addr.String())
	require.Error(t, err)
	require.False(t, client.IsConnected(addr.String()))
}

func TestDisconnect(t *testing.T) {
	testpartitioning.PartitionTest(t)

	_, client, serverAddr := startPair(t, DefaultConfig(), DefaultConfig())
	require.True(t, client.IsConnected(serverAddr))
	client.Disconnect(serverAddr)
	require.False(t, client.IsConnected(serverAddr))
	require.Equal(t, ErrNotConnected, client.SendMessage(serverAddr, network.Ping{}))
}
