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

package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/algorand/netprobe/crypto"
	"github.com/algorand/netprobe/data/basics"
	"github.com/algorand/netprobe/network"
	"github.com/algorand/netprobe/protocol"
	"github.com/algorand/netprobe/synthnode"
)

var (
	dialPing         bool
	dialRequestRound uint64
	dialSubscribe    bool
)

func init() {
	dialCmd.Flags().BoolVar(&dialPing, "ping", false, "Send a ping after connecting")
	dialCmd.Flags().Uint64Var(&dialRequestRound, "request-round", 0, "Request the block of the given round after connecting")
	dialCmd.Flags().BoolVar(&dialSubscribe, "subscribe", true, "Declare interest in all message tags")
}

var dialCmd = &cobra.Command{
	Use:   "dial <host:port>",
	Short: "Connect to a node and print the gossip traffic it sends",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			reportErrorf("%v", err)
		}
		if dialSubscribe {
			cfg.SubscribeTags = protocol.WireTags
		}

		log := makeLogger()
		node := synthnode.MakeSyntheticNode(log, cfg)
		defer node.Shutdown()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := args[0]
		if err := node.Connect(ctx, addr); err != nil {
			reportErrorf("connecting to %s: %v", addr, err)
		}

		if dialPing {
			var ping network.Ping
			crypto.RandBytes(ping.Nonce[:])
			if err := node.SendMessage(addr, ping); err != nil {
				reportErrorf("sending ping: %v", err)
			}
		}
		if dialRequestRound != 0 {
			req := network.UniEnsBlockReq{
				DataType: network.BlockAndCertReq,
				RoundKey: basics.Round(dialRequestRound),
				Nonce:    randNonce(),
			}
			if err := node.SendMessage(addr, req); err != nil {
				reportErrorf("sending block request: %v", err)
			}
		}

		for {
			in, err := node.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			printMessage(in)
		}
	},
}

func randNonce() uint64 {
	var b [8]byte
	crypto.RandBytes(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

func printMessage(in synthnode.IncomingMessage) {
	switch payload := in.Msg.Payload.(type) {
	case network.Ping:
		fmt.Printf("%s: ping %x\n", in.Addr, payload.Nonce)
	case network.PingReply:
		fmt.Printf("%s: ping reply %x\n", in.Addr, payload.Nonce)
	case network.MsgOfInterest:
		fmt.Printf("%s: message of interest, %d tags\n", in.Addr, len(payload.Tags))
	case network.MsgDigestSkip:
		fmt.Printf("%s: digest skip %s\n", in.Addr, payload.Digest)
	case *network.ErrorRsp:
		fmt.Printf("%s: error response: %s\n", in.Addr, payload.Error)
	case *network.UniEnsBlockRsp:
		round := basics.Round(0)
		if payload.Block != nil {
			round = payload.Block.Round
		}
		fmt.Printf("%s: block response for round %d (cert: %v)\n", in.Addr, round, payload.Cert != nil)
	case *network.ProposalPayload:
		fmt.Printf("%s: proposal for round %d\n", in.Addr, payload.Round)
	case *network.AgreementVote:
		fmt.Printf("%s: vote round %d period %d step %d\n", in.Addr, payload.R.Round, payload.R.Period, payload.R.Step)
	case *network.Txn:
		fmt.Printf("%s: %d transactions\n", in.Addr, len(payload.SignedTxns))
	default:
		fmt.Printf("%s: %s message, %d bytes\n", in.Addr, in.Msg.Payload.Tag(), len(in.Msg.Raw))
	}
}
