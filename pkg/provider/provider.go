// Package provider implements the dApp side of the connector protocol: a
// websocket client exposing the wallet API as plain method calls. Requests
// and responses are correlated by id only, so answers may arrive in any
// order and responses to unknown ids are dropped without complaint.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/cardanoconnect/connectd/pkg/protocol"
)

var (
	// ErrProviderClosed is returned by every call issued after Close or
	// after the transport dropped.
	ErrProviderClosed = fmt.Errorf("provider is closed")
)

// ConnectorError mirrors the {code, info} error payload of the protocol so
// callers can branch on the stable codes.
type ConnectorError struct {
	Code int
	Info string
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("connector error %d: %s", e.Code, e.Info)
}

// Utxos is the answer of GetUtxos. When Encoded is true every entry of Raw
// is a hex-wrapped CBOR serialization.
type Utxos struct {
	Raw     []json.RawMessage
	Encoded bool
}

// ProviderOpts is the set of options to configure a Provider.
type ProviderOpts struct {
	// RelayURL is the websocket endpoint of the daemon, eg. ws://localhost:9945/ws.
	RelayURL string
	// Origin identifies the dApp in the permission handshake.
	Origin string
}

func (o ProviderOpts) validate() error {
	if len(o.RelayURL) <= 0 {
		return fmt.Errorf("relay url must not be null")
	}
	if len(o.Origin) <= 0 {
		return fmt.Errorf("origin must not be null")
	}
	return nil
}

// Provider is a connected client of the relay. It is safe for concurrent use.
type Provider struct {
	opts ProviderOpts
	conn *websocket.Conn

	writeMtx sync.Mutex

	mtx     sync.Mutex
	pending map[string]chan protocol.Response
	closed  bool
}

// NewProvider dials the relay and starts the read loop.
func NewProvider(ctx context.Context, opts ProviderOpts) (*Provider, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Origin", opts.Origin)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, opts.RelayURL, header)
	if err != nil {
		return nil, fmt.Errorf("dialing relay: %w", err)
	}

	provider := &Provider{
		opts:    opts,
		conn:    conn,
		pending: map[string]chan protocol.Response{},
	}
	go provider.readLoop()
	return provider, nil
}

// Close tears the transport down and fails every in-flight call.
func (p *Provider) Close() error {
	err := p.conn.Close()
	p.failPending()
	return err
}

// Enable runs the permission handshake for the provider's origin. It blocks
// until the wallet owner decides or the request expires daemon side.
func (p *Provider) Enable(ctx context.Context) (bool, error) {
	var data protocol.EnabledPayload
	if err := p.call(ctx, protocol.MsgEnableRequest,
		protocol.EnableRequestPayload{Origin: p.opts.Origin}, &data,
	); err != nil {
		return false, err
	}
	return data.Enabled, nil
}

// IsEnabled reports whether the origin already holds a permission, without
// ever prompting.
func (p *Provider) IsEnabled(ctx context.Context) (bool, error) {
	var data protocol.EnabledPayload
	if err := p.call(ctx, protocol.MsgIsEnabledRequest,
		protocol.IsEnabledRequestPayload{Origin: p.opts.Origin}, &data,
	); err != nil {
		return false, err
	}
	return data.Enabled, nil
}

// GetNetworkID returns 1 on mainnet and 0 on the test network.
func (p *Provider) GetNetworkID(ctx context.Context) (int, error) {
	var data protocol.NetworkIDPayload
	if err := p.call(ctx, protocol.MsgGetNetworkID, nil, &data); err != nil {
		return 0, err
	}
	return data.NetworkID, nil
}

// GetBalance returns the wallet balance in the smallest on-chain unit.
func (p *Provider) GetBalance(ctx context.Context) (string, error) {
	var data protocol.BalancePayload
	if err := p.call(ctx, protocol.MsgGetBalance, nil, &data); err != nil {
		return "", err
	}
	return data.Balance, nil
}

// GetWalletName returns the display name of the active wallet.
func (p *Provider) GetWalletName(ctx context.Context) (string, error) {
	var data protocol.WalletNamePayload
	if err := p.call(ctx, protocol.MsgGetWalletName, nil, &data); err != nil {
		return "", err
	}
	return data.Name, nil
}

// GetUsedAddresses returns the payment addresses of the active wallet.
func (p *Provider) GetUsedAddresses(ctx context.Context) ([]string, error) {
	var data protocol.AddressesPayload
	if err := p.call(ctx, protocol.MsgGetUsedAddresses, nil, &data); err != nil {
		return nil, err
	}
	return data.Addresses, nil
}

// GetRewardAddresses returns the stake addresses of the active wallet.
func (p *Provider) GetRewardAddresses(ctx context.Context) ([]string, error) {
	var data protocol.AddressesPayload
	if err := p.call(ctx, protocol.MsgGetRewardAddresses, nil, &data); err != nil {
		return nil, err
	}
	return data.Addresses, nil
}

// GetUtxos returns the unspent outputs of the active wallet.
func (p *Provider) GetUtxos(ctx context.Context) (*Utxos, error) {
	var data struct {
		Utxos   []json.RawMessage `json:"utxos"`
		Encoded bool              `json:"encoded"`
	}
	if err := p.call(ctx, protocol.MsgGetUtxos, nil, &data); err != nil {
		return nil, err
	}
	return &Utxos{Raw: data.Utxos, Encoded: data.Encoded}, nil
}

func (p *Provider) call(
	ctx context.Context, msgType string, payload, target interface{},
) error {
	id := uuid.NewString()

	var rawPayload json.RawMessage
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		rawPayload = buf
	}

	buf, err := json.Marshal(protocol.Envelope{
		Tag:     protocol.Tag,
		ID:      id,
		Type:    msgType,
		Payload: rawPayload,
	})
	if err != nil {
		return err
	}

	done, err := p.register(id)
	if err != nil {
		return err
	}
	defer p.unregister(id)

	p.writeMtx.Lock()
	err = p.conn.WriteMessage(websocket.TextMessage, buf)
	p.writeMtx.Unlock()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res, ok := <-done:
		if !ok {
			return ErrProviderClosed
		}
		if res.Error != nil {
			return &ConnectorError{Code: res.Error.Code, Info: res.Error.Info}
		}
		if target == nil {
			return nil
		}
		return json.Unmarshal(res.Data, target)
	}
}

func (p *Provider) register(id string) (chan protocol.Response, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.closed {
		return nil, ErrProviderClosed
	}
	done := make(chan protocol.Response, 1)
	p.pending[id] = done
	return done, nil
}

func (p *Provider) unregister(id string) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	delete(p.pending, id)
}

func (p *Provider) readLoop() {
	defer p.failPending()

	for {
		msgType, buf, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var res protocol.Response
		if err := json.Unmarshal(buf, &res); err != nil {
			log.WithError(err).Debug("dropped undecodable relay frame")
			continue
		}
		if res.Tag != protocol.Tag {
			continue
		}

		p.mtx.Lock()
		done, ok := p.pending[res.ID]
		if ok {
			delete(p.pending, res.ID)
		}
		p.mtx.Unlock()

		if !ok {
			// a reply nobody waits for anymore, eg. a cancelled call
			continue
		}
		done <- res
	}
}

func (p *Provider) failPending() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for id, done := range p.pending {
		close(done)
		delete(p.pending, id)
	}
}
