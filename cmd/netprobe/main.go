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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/algorand/netprobe/logging"
	"github.com/algorand/netprobe/synthnode"
)

var (
	configFile string
	genesisID  string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "JSON config file overriding the defaults")
	rootCmd.PersistentFlags().StringVarP(&genesisID, "genesis", "g", "", "Genesis ID of the target network")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(dialCmd)
	rootCmd.AddCommand(listenCmd)
}

var rootCmd = &cobra.Command{
	Use:   "netprobe",
	Short: "Synthetic Algorand gossip peer for protocol testing",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

// makeLogger builds the process logger honoring --verbose.
func makeLogger() logging.Logger {
	log := logging.Base()
	if verbose {
		log.SetLevel(logging.Debug)
	} else {
		log.SetLevel(logging.Info)
	}
	return log
}

// loadConfig applies the config file and command-line overrides.
func loadConfig() (synthnode.Config, error) {
	cfg := synthnode.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = synthnode.LoadConfigFromFile(configFile)
		if err != nil {
			return cfg, err
		}
	}
	if genesisID != "" {
		cfg.Handshake.GenesisID = genesisID
	}
	return cfg, nil
}

func reportErrorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
