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

// Package synthnode runs a synthetic gossip peer: it speaks just enough of
// the wire protocol to connect to (or accept) a real node, exchange
// messages, and let tests script both well-formed and malformed traffic.
package synthnode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/algorand/go-deadlock"
	"github.com/gorilla/mux"

	"github.com/algorand/netprobe/logging"
	"github.com/algorand/netprobe/network"
)

// ErrNotConnected is returned when sending to an address with no live peer.
var ErrNotConnected = errors.New("not connected to peer")

// IncomingMessage is one decoded message along with the peer it came from.
type IncomingMessage struct {
	Addr string
	Msg  *network.AlgoMsg
}

type wsPeer struct {
	addr      string
	conn      net.Conn
	reader    *bufio.Reader
	codec     *network.MessageCodec
	handshake *network.HandshakeResult

	sendLock deadlock.Mutex

	closeOnce sync.Once
}

func (p *wsPeer) close() {
	p.closeOnce.Do(func() { p.conn.Close() })
}

// SyntheticNode is a scriptable gossip peer. It can dial out, accept
// inbound connections, and exposes every received message through
// ReceiveMessage; it never relays or filters on its own.
type SyntheticNode struct {
	log logging.Logger
	cfg Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	peersLock deadlock.Mutex
	peers     map[string]*wsPeer

	inbound chan IncomingMessage

	listener net.Listener
	server   *http.Server
}

// MakeSyntheticNode creates a node; it holds no connections until Connect
// or Listen is called.
func MakeSyntheticNode(log logging.Logger, cfg Config) *SyntheticNode {
	ctx, cancel := context.WithCancel(context.Background())
	return &SyntheticNode{
		log:     log,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		peers:   make(map[string]*wsPeer),
		inbound: make(chan IncomingMessage, cfg.InboundQueueSize),
	}
}

// Connect dials addr, performs the websocket upgrade as the initiator and
// starts reading messages from the connection.
func (sn *SyntheticNode) Connect(ctx context.Context, addr string) error {
	dialer := net.Dialer{Timeout: sn.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	if sn.cfg.DialTimeout != 0 {
		conn.SetDeadline(time.Now().Add(sn.cfg.DialTimeout))
	}

	reader := bufio.NewReaderSize(conn, sn.cfg.ReadBufferSize)
	result, err := sn.cfg.Handshake.Initiate(reader, conn, addr)
	if err != nil {
		conn.Close()
		return err
	}
	conn.SetDeadline(time.Time{})
	sn.log.Infof("connected to %s (version %s, genesis %s)", addr, result.Version, result.GenesisID)

	peer := sn.addPeer(conn, reader, result, true)
	if result.PriorityChallenge != "" && sn.cfg.RespondToChallenge {
		if err := sn.sendToPeer(peer, network.MakePrioResponse(result.PriorityChallenge)); err != nil {
			return err
		}
	}
	if len(sn.cfg.SubscribeTags) > 0 {
		return sn.sendToPeer(peer, network.MakeMsgOfInterest(sn.cfg.SubscribeTags...))
	}
	return nil
}

// Listen starts accepting gossip connections on the configured listen
// address and returns the bound address.
func (sn *SyntheticNode) Listen() (net.Addr, error) {
	listener, err := net.Listen("tcp", sn.cfg.ListenAddress)
	if err != nil {
		return nil, err
	}
	sn.listener = listener

	router := mux.NewRouter()
	router.Handle(network.GossipNetworkPath, sn)
	sn.server = &http.Server{Handler: router}

	sn.wg.Add(1)
	go func() {
		defer sn.wg.Done()
		err := sn.server.Serve(listener)
		if err != http.ErrServerClosed {
			sn.log.Warnf("listener on %s stopped: %v", listener.Addr(), err)
		}
	}()
	sn.log.Infof("listening for gossip connections on %s", listener.Addr())
	return listener.Addr(), nil
}

// ServeHTTP handles an inbound gossip upgrade request. The connection is
// hijacked from the HTTP server; from here on the raw TCP stream carries
// websocket frames.
func (sn *SyntheticNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rsp, result, hsErr := sn.cfg.Handshake.Accept(r)

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		sn.log.Errorf("response writer for %s is not hijackable", r.RemoteAddr)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	conn, brw, err := hijacker.Hijack()
	if err != nil {
		sn.log.Errorf("hijacking connection from %s: %v", r.RemoteAddr, err)
		return
	}
	if _, err := conn.Write(rsp); err != nil {
		sn.log.Warnf("writing handshake response to %s: %v", r.RemoteAddr, err)
		conn.Close()
		return
	}
	if hsErr != nil {
		sn.log.Infof("rejected connection from %s: %v", r.RemoteAddr, hsErr)
		conn.Close()
		return
	}
	sn.log.Infof("accepted connection from %s (version %s)", r.RemoteAddr, result.Version)

	// brw may hold bytes the peer sent right after its request
	sn.addPeer(conn, brw.Reader, result, false)
}

func (sn *SyntheticNode) addPeer(conn net.Conn, reader *bufio.Reader, result *network.HandshakeResult, outgoing bool) *wsPeer {
	peer := &wsPeer{
		addr:      conn.RemoteAddr().String(),
		conn:      conn,
		reader:    reader,
		codec:     network.NewMessageCodec(outgoing),
		handshake: result,
	}
	sn.peersLock.Lock()
	if old, ok := sn.peers[peer.addr]; ok {
		old.close()
	}
	sn.peers[peer.addr] = peer
	sn.peersLock.Unlock()

	sn.wg.Add(1)
	go sn.readLoop(peer)
	return peer
}

func (sn *SyntheticNode) readLoop(peer *wsPeer) {
	defer sn.wg.Done()
	defer sn.removePeer(peer)

	buf := make([]byte, sn.cfg.ReadBufferSize)
	for {
		n, err := peer.reader.Read(buf)
		if n > 0 {
			peer.codec.Feed(buf[:n])
			if !sn.drainMessages(peer) {
				return
			}
		}
		if err != nil {
			if sn.ctx.Err() == nil {
				sn.log.Infof("connection to %s closed: %v", peer.addr, err)
			}
			return
		}
	}
}

// drainMessages decodes every complete message buffered on the peer and
// queues it. Returns false when the connection should be dropped.
func (sn *SyntheticNode) drainMessages(peer *wsPeer) bool {
	for {
		msg, err := peer.codec.Next()
		if err != nil {
			sn.log.Warnf("dropping %s: %v", peer.addr, err)
			return false
		}
		if msg == nil {
			return true
		}
		sn.log.Debugf("received %s message (%d bytes) from %s", msg.Payload.Tag(), len(msg.Raw), peer.addr)
		select {
		case sn.inbound <- IncomingMessage{Addr: peer.addr, Msg: msg}:
		case <-sn.ctx.Done():
			return false
		}
	}
}

func (sn *SyntheticNode) removePeer(peer *wsPeer) {
	peer.close()
	sn.peersLock.Lock()
	if sn.peers[peer.addr] == peer {
		delete(sn.peers, peer.addr)
	}
	sn.peersLock.Unlock()
}

func (sn *SyntheticNode) peerByAddr(addr string) *wsPeer {
	sn.peersLock.Lock()
	defer sn.peersLock.Unlock()
	return sn.peers[addr]
}

// IsConnected reports whether a live connection to addr exists.
func (sn *SyntheticNode) IsConnected(addr string) bool {
	return sn.peerByAddr(addr) != nil
}

// ConnectedPeers lists the addresses of all live connections.
func (sn *SyntheticNode) ConnectedPeers() []string {
	sn.peersLock.Lock()
	defer sn.peersLock.Unlock()
	addrs := make([]string, 0, len(sn.peers))
	for addr := range sn.peers {
		addrs = append(addrs, addr)
	}
	return addrs
}

func (sn *SyntheticNode) sendToPeer(peer *wsPeer, p network.Payload) error {
	return sn.writeFrame(peer, peer.codec.EncodeMessage(p))
}

func (sn *SyntheticNode) writeFrame(peer *wsPeer, frame []byte) error {
	peer.sendLock.Lock()
	defer peer.sendLock.Unlock()
	if _, err := peer.conn.Write(frame); err != nil {
		return fmt.Errorf("writing to %s: %w", peer.addr, err)
	}
	return nil
}

// SendMessage encodes and sends one payload to the peer at addr.
func (sn *SyntheticNode) SendMessage(addr string, p network.Payload) error {
	peer := sn.peerByAddr(addr)
	if peer == nil {
		return ErrNotConnected
	}
	return sn.sendToPeer(peer, p)
}

// SendRaw frames raw as-is and sends it, bypassing the message encoder.
// This is how captured AlgoMsg.Raw bytes get replayed verbatim.
func (sn *SyntheticNode) SendRaw(addr string, raw []byte) error {
	peer := sn.peerByAddr(addr)
	if peer == nil {
		return ErrNotConnected
	}
	return sn.writeFrame(peer, peer.codec.EncodeFrame(raw))
}

// Broadcast sends one payload to every connected peer, returning the
// first error encountered.
func (sn *SyntheticNode) Broadcast(p network.Payload) error {
	var firstErr error
	for _, addr := range sn.ConnectedPeers() {
		if err := sn.SendMessage(addr, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReceiveMessage returns the next message received from any peer,
// blocking until one arrives or ctx expires.
func (sn *SyntheticNode) ReceiveMessage(ctx context.Context) (IncomingMessage, error) {
	select {
	case in := <-sn.inbound:
		return in, nil
	case <-ctx.Done():
		return IncomingMessage{}, ctx.Err()
	case <-sn.ctx.Done():
		return IncomingMessage{}, errors.New("node is shutting down")
	}
}

// ExpectMessage discards messages until one satisfies match, and returns
// it. Messages that do not match are dropped, not requeued.
func (sn *SyntheticNode) ExpectMessage(ctx context.Context, match func(*network.AlgoMsg) bool) (IncomingMessage, error) {
	for {
		in, err := sn.ReceiveMessage(ctx)
		if err != nil {
			return IncomingMessage{}, err
		}
		if match(in.Msg) {
			return in, nil
		}
		sn.log.Debugf("skipping %s message while waiting", in.Msg.Payload.Tag())
	}
}

// Disconnect closes the connection to addr if one exists.
func (sn *SyntheticNode) Disconnect(addr string) {
	if peer := sn.peerByAddr(addr); peer != nil {
		sn.removePeer(peer)
	}
}

// Shutdown closes every connection and stops the listener. The node
// cannot be reused afterwards.
func (sn *SyntheticNode) Shutdown() {
	sn.cancel()
	if sn.server != nil {
		sn.server.Close()
	}
	sn.peersLock.Lock()
	for _, peer := range sn.peers {
		peer.close()
	}
	sn.peers = make(map[string]*wsPeer)
	sn.peersLock.Unlock()
	sn.wg.Wait()
}
