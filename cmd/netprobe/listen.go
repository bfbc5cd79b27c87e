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
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/algorand/netprobe/network"
	"github.com/algorand/netprobe/synthnode"
)

var (
	listenAddr      string
	listenChallenge string
	listenEcho      bool
)

func init() {
	listenCmd.Flags().StringVarP(&listenAddr, "addr", "a", "", "Address to listen on (default from config)")
	listenCmd.Flags().StringVar(&listenChallenge, "challenge", "", "Offer a priority challenge to connecting peers")
	listenCmd.Flags().BoolVar(&listenEcho, "echo-pings", true, "Answer pings with ping replies")
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Accept gossip connections and print the traffic peers send",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			reportErrorf("%v", err)
		}
		if listenAddr != "" {
			cfg.ListenAddress = listenAddr
		}
		cfg.Handshake.PriorityChallenge = listenChallenge

		log := makeLogger()
		node := synthnode.MakeSyntheticNode(log, cfg)
		defer node.Shutdown()

		addr, err := node.Listen()
		if err != nil {
			reportErrorf("listening: %v", err)
		}
		fmt.Printf("listening on %s\n", addr)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		for {
			in, err := node.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			printMessage(in)

			if ping, ok := in.Msg.Payload.(network.Ping); ok && listenEcho {
				if err := node.SendMessage(in.Addr, network.PingReply{Nonce: ping.Nonce}); err != nil {
					log.Warnf("replying to ping from %s: %v", in.Addr, err)
				}
			}
		}
	},
}
