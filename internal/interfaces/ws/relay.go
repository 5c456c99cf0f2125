// Package wsinterface exposes the connector protocol over websocket. It is
// the bridge between injected providers, which speak JSON envelopes, and the
// application layer, which speaks Go. The approval surface reaches it over a
// plain HTTP endpoint on the same listener.
package wsinterface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/thanhpk/randstr"

	"github.com/cardanoconnect/connectd/internal/core/application"
	"github.com/cardanoconnect/connectd/internal/core/ports"
	"github.com/cardanoconnect/connectd/pkg/protocol"
	"github.com/cardanoconnect/connectd/pkg/utxocodec"
)

const (
	shutdownTimeout = 5 * time.Second
	sessionIDLength = 16
)

// ConnectorService is the slice of the application layer the relay drives.
type ConnectorService interface {
	Enable(ctx context.Context, origin, session string) (bool, error)
	ResolvePermission(ctx context.Context, origin, session string, approved bool) error
	IsEnabled(ctx context.Context, origin string) (bool, error)
	GetNetworkID(ctx context.Context) (int, error)
	GetBalance(ctx context.Context) (string, error)
	GetUsedAddresses(ctx context.Context) ([]string, error)
	GetRewardAddresses(ctx context.Context) ([]string, error)
	GetWalletName(ctx context.Context) (string, error)
	GetUtxos(ctx context.Context) ([]ports.Utxo, error)
}

// RelayOpts is the set of options to configure a Relay.
type RelayOpts struct {
	Address string
	Service ConnectorService
}

func (o RelayOpts) validate() error {
	if len(o.Address) <= 0 {
		return fmt.Errorf("listen address must not be null")
	}
	if o.Service == nil {
		return fmt.Errorf("connector service must not be null")
	}
	return nil
}

// Relay is the websocket front of the daemon. Each provider connection gets
// its own session id, minted server side, so two tabs of the same dApp never
// share a pending approval.
type Relay struct {
	opts     RelayOpts
	upgrader websocket.Upgrader
	server   *http.Server
}

// NewRelay returns a Relay from the given options.
func NewRelay(opts RelayOpts) (*Relay, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	relay := &Relay{
		opts: opts,
		upgrader: websocket.Upgrader{
			// origins are vetted by the permission handshake, not the upgrade
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", relay.handleConnection)
	mux.HandleFunc("/permission", relay.handlePermission)
	mux.Handle("/metrics", promhttp.Handler())
	relay.server = &http.Server{Addr: opts.Address, Handler: mux}

	return relay, nil
}

// Start serves until Stop is called. It reports http.ErrServerClosed as a
// clean shutdown.
func (r *Relay) Start() error {
	log.Infof("relay interface listening on %s", r.opts.Address)
	if err := r.server.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the listener down, closing every open session.
func (r *Relay) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// nolint
	r.server.Shutdown(ctx)
	log.Debug("relay interface stopped")
}

// session is one connected provider. Writes are serialized because handlers
// run concurrently while gorilla allows a single writer at a time.
type session struct {
	id     string
	origin string
	conn   *websocket.Conn

	writeMtx sync.Mutex
}

func (s *session) send(res protocol.Response) {
	buf, err := json.Marshal(res)
	if err != nil {
		log.WithError(err).Error("could not serialize relay response")
		return
	}

	s.writeMtx.Lock()
	defer s.writeMtx.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, buf); err != nil {
		log.WithError(err).WithField("session", s.id).
			Debug("could not write to provider session")
	}
}

func (r *Relay) handleConnection(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.WithError(err).Debug("could not upgrade provider connection")
		return
	}

	sess := &session{
		id:     randstr.Hex(sessionIDLength),
		origin: req.Header.Get("Origin"),
		conn:   conn,
	}
	sessionsGauge.Inc()
	log.WithField("session", sess.id).Debug("provider session opened")

	defer func() {
		conn.Close()
		sessionsGauge.Dec()
		log.WithField("session", sess.id).Debug("provider session closed")
	}()

	for {
		msgType, buf, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var envelope protocol.Envelope
		if err := json.Unmarshal(buf, &envelope); err != nil {
			log.WithField("session", sess.id).Debug("dropped undecodable frame")
			continue
		}
		if envelope.Tag != protocol.Tag {
			// not ours, another consumer of the transport may claim it
			continue
		}
		if len(envelope.ID) <= 0 {
			log.WithField("session", sess.id).Debug("dropped frame without id")
			continue
		}

		go r.dispatch(req.Context(), sess, envelope)
	}
}

func (r *Relay) dispatch(ctx context.Context, sess *session, envelope protocol.Envelope) {
	countRequest(envelope.Type)

	data, err := r.handle(ctx, sess, envelope)
	if err != nil {
		payload := errorPayload(err)
		countError(payload.Code)
		sess.send(protocol.Response{
			Tag:   protocol.Tag,
			ID:    envelope.ID,
			Error: payload,
		})
		return
	}

	buf, err := json.Marshal(data)
	if err != nil {
		payload := errorPayload(err)
		countError(payload.Code)
		sess.send(protocol.Response{Tag: protocol.Tag, ID: envelope.ID, Error: payload})
		return
	}
	sess.send(protocol.Response{
		Tag:     protocol.Tag,
		ID:      envelope.ID,
		Success: true,
		Data:    buf,
	})
}

func (r *Relay) handle(
	ctx context.Context, sess *session, envelope protocol.Envelope,
) (interface{}, error) {
	svc := r.opts.Service

	switch envelope.Type {
	case protocol.MsgEnableRequest:
		var payload protocol.EnableRequestPayload
		if err := decodePayload(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		origin := sess.resolveOrigin(payload.Origin)
		approved, err := svc.Enable(ctx, origin, sess.id)
		if err != nil {
			return nil, err
		}
		if !approved {
			return nil, application.ErrPermissionDenied
		}
		return protocol.EnabledPayload{Enabled: true}, nil

	case protocol.MsgIsEnabledRequest:
		var payload protocol.IsEnabledRequestPayload
		if err := decodePayload(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		enabled, err := svc.IsEnabled(ctx, sess.resolveOrigin(payload.Origin))
		if err != nil {
			return nil, err
		}
		return protocol.EnabledPayload{Enabled: enabled}, nil

	case protocol.MsgGetNetworkID, protocol.MsgGetBalance,
		protocol.MsgGetWalletName, protocol.MsgGetUsedAddresses,
		protocol.MsgGetRewardAddresses, protocol.MsgGetUtxos:
		// wallet state is only served to origins that completed the handshake
		enabled, err := svc.IsEnabled(ctx, sess.origin)
		if err != nil {
			return nil, err
		}
		if !enabled {
			return nil, application.ErrPermissionDenied
		}
		return r.handleQuery(ctx, envelope.Type)

	default:
		// PERMISSION_RESPONSE included: human decisions only enter through
		// the permission endpoint, never the dApp-facing socket
		return nil, application.ErrUnknownMethod
	}
}

func (r *Relay) handleQuery(ctx context.Context, msgType string) (interface{}, error) {
	svc := r.opts.Service

	switch msgType {
	case protocol.MsgGetNetworkID:
		networkID, err := svc.GetNetworkID(ctx)
		if err != nil {
			return nil, err
		}
		return protocol.NetworkIDPayload{NetworkID: networkID}, nil

	case protocol.MsgGetBalance:
		balance, err := svc.GetBalance(ctx)
		if err != nil {
			return nil, err
		}
		return protocol.BalancePayload{Balance: balance}, nil

	case protocol.MsgGetWalletName:
		name, err := svc.GetWalletName(ctx)
		if err != nil {
			return nil, err
		}
		return protocol.WalletNamePayload{Name: name}, nil

	case protocol.MsgGetUsedAddresses:
		addresses, err := svc.GetUsedAddresses(ctx)
		if err != nil {
			return nil, err
		}
		return protocol.AddressesPayload{Addresses: addresses}, nil

	case protocol.MsgGetRewardAddresses:
		addresses, err := svc.GetRewardAddresses(ctx)
		if err != nil {
			return nil, err
		}
		return protocol.AddressesPayload{Addresses: addresses}, nil

	case protocol.MsgGetUtxos:
		utxos, err := svc.GetUtxos(ctx)
		if err != nil {
			return nil, err
		}
		return utxosPayload(utxos), nil

	default:
		return nil, application.ErrUnknownMethod
	}
}

// handlePermission is the approval surface's way back into the daemon: it
// posts the human decision for a pending (origin, session) request.
func (r *Relay) handlePermission(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload protocol.PermissionResponsePayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if len(payload.Origin) <= 0 || len(payload.Session) <= 0 {
		http.Error(w, "origin and session must not be null", http.StatusBadRequest)
		return
	}

	if err := r.opts.Service.ResolvePermission(
		req.Context(), payload.Origin, payload.Session, payload.Approved,
	); err != nil {
		log.WithError(err).Error("could not resolve permission request")
		http.Error(w, "could not resolve permission", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *session) resolveOrigin(payloadOrigin string) string {
	if len(payloadOrigin) > 0 {
		return payloadOrigin
	}
	return s.origin
}

// utxosPayload serializes the utxo set with the wire codec. A utxo the codec
// cannot express degrades the whole answer to plain JSON instead of failing
// the request.
func utxosPayload(utxos []ports.Utxo) protocol.UtxosPayload {
	outs := make([]utxocodec.UnspentOutput, 0, len(utxos))
	for _, u := range utxos {
		assets := make([]utxocodec.Asset, 0, len(u.Assets))
		for _, a := range u.Assets {
			assets = append(assets, utxocodec.Asset{
				Unit:     a.Unit,
				Quantity: a.Quantity,
			})
		}
		// chain sources report assets in their own order, the codec wants
		// the canonical one
		utxocodec.SortAssets(assets)
		outs = append(outs, utxocodec.UnspentOutput{
			TxHash:              u.TxHash,
			OutputIndex:         u.OutputIndex,
			Address:             u.Address,
			Assets:              assets,
			DatumHash:           u.DatumHash,
			InlineDatum:         u.InlineDatum,
			ReferenceScriptHash: u.ReferenceScriptHash,
		})
	}

	encoded, err := utxocodec.EncodeBatch(outs)
	if err != nil {
		log.WithError(err).Warn("could not encode utxo set, degrading to plain json")
		return protocol.UtxosPayload{Utxos: outs, Encoded: false}
	}
	return protocol.UtxosPayload{Utxos: encoded, Encoded: true}
}

func decodePayload(raw json.RawMessage, target interface{}) error {
	if len(raw) <= 0 {
		return application.ErrMalformedRequest
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return application.ErrMalformedRequest
	}
	return nil
}

func errorPayload(err error) *protocol.ErrorPayload {
	var connectorErr *application.ConnectorError
	if errors.As(err, &connectorErr) {
		return &protocol.ErrorPayload{Code: connectorErr.Code, Info: connectorErr.Info}
	}
	return &protocol.ErrorPayload{Code: application.CodeInternal, Info: err.Error()}
}
