package wsinterface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/cardanoconnect/connectd/internal/core/application"
	"github.com/cardanoconnect/connectd/internal/core/ports"
	"github.com/cardanoconnect/connectd/internal/infrastructure/storage/db/inmemory"
	"github.com/cardanoconnect/connectd/pkg/keymanager"
	"github.com/cardanoconnect/connectd/pkg/protocol"
	"github.com/cardanoconnect/connectd/pkg/provider"
	"github.com/cardanoconnect/connectd/pkg/utxocodec"
)

const (
	testOrigin  = "https://dapp.example.com"
	testAddress = "addr_test1qp23t8sku3nyxncq7ejxfqvtjxj3lu3tzfl30qwfdwjm2c" +
		"yym9vp7dy32e0rf2hxkwf8czg6kv83lm4zneme48luc97se5j5u3"
)

type recordingPrompter struct {
	mtx      sync.Mutex
	sessions []string
}

func (p *recordingPrompter) Prompt(ctx context.Context, origin, session string) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.sessions = append(p.sessions, session)
	return nil
}

func (p *recordingPrompter) lastSession() (string, bool) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if len(p.sessions) <= 0 {
		return "", false
	}
	return p.sessions[len(p.sessions)-1], true
}

type stubChainSource struct {
	utxos []ports.Utxo
}

func (s *stubChainSource) GetUtxos(ctx context.Context, address string) ([]ports.Utxo, error) {
	return s.utxos, nil
}

type relayFixture struct {
	server      *httptest.Server
	walletSvc   *application.WalletService
	prompter    *recordingPrompter
	chainSource *stubChainSource
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()

	db := inmemory.NewDbManager()
	walletRepo := inmemory.NewWalletRepositoryImpl(db)
	prompter := &recordingPrompter{}
	chainSource := &stubChainSource{}

	connectorSvc := application.NewConnectorService(
		walletRepo,
		inmemory.NewPermissionRepositoryImpl(db),
		application.NewPendingRequestTable(0),
		prompter,
		chainSource,
	)

	relay, err := NewRelay(RelayOpts{Address: ":0", Service: connectorSvc})
	require.NoError(t, err)

	server := httptest.NewServer(relay.server.Handler)
	t.Cleanup(server.Close)

	return &relayFixture{
		server:      server,
		walletSvc:   application.NewWalletService(walletRepo),
		prompter:    prompter,
		chainSource: chainSource,
	}
}

func (f *relayFixture) wsURL() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
}

func (f *relayFixture) newProvider(t *testing.T) *provider.Provider {
	t.Helper()

	p, err := provider.NewProvider(context.Background(), provider.ProviderOpts{
		RelayURL: f.wsURL(),
		Origin:   testOrigin,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		// nolint
		p.Close()
	})
	return p
}

func (f *relayFixture) addWallet(t *testing.T) {
	t.Helper()

	mnemonic, err := keymanager.NewMnemonic(keymanager.NewMnemonicOpts{})
	require.NoError(t, err)
	_, err = f.walletSvc.CreateHDWallet(
		context.Background(), application.CreateHDWalletArgs{
			Name:     "relay test wallet",
			Mnemonic: mnemonic,
			Network:  keymanager.Testnet,
		},
	)
	require.NoError(t, err)
}

// approve plays the approval surface: it waits for the prompt and posts the
// decision back on the permission endpoint.
func (f *relayFixture) approve(t *testing.T, approved bool) {
	t.Helper()

	var session string
	require.Eventually(t, func() bool {
		s, ok := f.prompter.lastSession()
		session = s
		return ok
	}, time.Second, 5*time.Millisecond)

	body, err := json.Marshal(protocol.PermissionResponsePayload{
		Origin:   testOrigin,
		Session:  session,
		Approved: approved,
	})
	require.NoError(t, err)

	res, err := http.Post(
		f.server.URL+"/permission", "application/json", bytes.NewReader(body),
	)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)
}

// enable completes the handshake for the client's origin so wallet queries
// are served.
func (f *relayFixture) enable(t *testing.T, client *provider.Provider) {
	t.Helper()

	outcome := make(chan error, 1)
	go func() {
		_, err := client.Enable(context.Background())
		outcome <- err
	}()
	f.approve(t, true)
	require.NoError(t, <-outcome)
}

func TestRelayEnable(t *testing.T) {
	fixture := newRelayFixture(t)
	client := fixture.newProvider(t)

	enabled, err := client.IsEnabled(context.Background())
	require.NoError(t, err)
	require.False(t, enabled)

	outcome := make(chan error, 1)
	go func() {
		_, err := client.Enable(context.Background())
		outcome <- err
	}()

	fixture.approve(t, true)
	require.NoError(t, <-outcome)

	enabled, err = client.IsEnabled(context.Background())
	require.NoError(t, err)
	require.True(t, enabled)

	// once approved, enabling again answers without prompting
	approved, err := client.Enable(context.Background())
	require.NoError(t, err)
	require.True(t, approved)
	require.Len(t, fixture.prompter.sessions, 1)
}

func TestRelayEnableDenied(t *testing.T) {
	fixture := newRelayFixture(t)
	client := fixture.newProvider(t)

	outcome := make(chan error, 1)
	go func() {
		_, err := client.Enable(context.Background())
		outcome <- err
	}()

	fixture.approve(t, false)

	err := <-outcome
	var connectorErr *provider.ConnectorError
	require.ErrorAs(t, err, &connectorErr)
	require.Equal(t, application.CodePermissionDenied, connectorErr.Code)
}

func TestRelayWalletQueries(t *testing.T) {
	fixture := newRelayFixture(t)
	fixture.addWallet(t)
	client := fixture.newProvider(t)
	fixture.enable(t, client)

	networkID, err := client.GetNetworkID(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, networkID)

	balance, err := client.GetBalance(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0", balance)

	name, err := client.GetWalletName(context.Background())
	require.NoError(t, err)
	require.Equal(t, "relay test wallet", name)

	used, err := client.GetUsedAddresses(context.Background())
	require.NoError(t, err)
	require.Len(t, used, 1)

	rewards, err := client.GetRewardAddresses(context.Background())
	require.NoError(t, err)
	require.Len(t, rewards, 1)
}

func TestRelayWalletQueriesWithoutWallet(t *testing.T) {
	fixture := newRelayFixture(t)
	client := fixture.newProvider(t)
	fixture.enable(t, client)

	_, err := client.GetBalance(context.Background())
	var connectorErr *provider.ConnectorError
	require.ErrorAs(t, err, &connectorErr)
	require.Equal(t, application.CodeNoActiveWallet, connectorErr.Code)
}

func TestRelayQueriesRequirePermission(t *testing.T) {
	fixture := newRelayFixture(t)
	fixture.addWallet(t)
	client := fixture.newProvider(t)

	// the origin never enabled: every wallet query is refused even though an
	// active wallet exists
	queries := []struct {
		name  string
		query func() error
	}{
		{"network id", func() error {
			_, err := client.GetNetworkID(context.Background())
			return err
		}},
		{"balance", func() error {
			_, err := client.GetBalance(context.Background())
			return err
		}},
		{"wallet name", func() error {
			_, err := client.GetWalletName(context.Background())
			return err
		}},
		{"used addresses", func() error {
			_, err := client.GetUsedAddresses(context.Background())
			return err
		}},
		{"reward addresses", func() error {
			_, err := client.GetRewardAddresses(context.Background())
			return err
		}},
		{"utxos", func() error {
			_, err := client.GetUtxos(context.Background())
			return err
		}},
	}
	for _, tt := range queries {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query()
			var connectorErr *provider.ConnectorError
			require.ErrorAs(t, err, &connectorErr)
			require.Equal(t, application.CodePermissionDenied, connectorErr.Code)
		})
	}

	// the same queries answer once the handshake completed
	fixture.enable(t, client)
	balance, err := client.GetBalance(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0", balance)
}

func TestRelayGetUtxos(t *testing.T) {
	fixture := newRelayFixture(t)
	fixture.addWallet(t)
	client := fixture.newProvider(t)
	fixture.enable(t, client)

	txHash := strings.Repeat("ab", 32)
	fixture.chainSource.utxos = []ports.Utxo{
		{
			TxHash:      txHash,
			OutputIndex: 1,
			Address:     testAddress,
			Assets:      []ports.UtxoAsset{{Unit: "lovelace", Quantity: "1500000"}},
		},
	}

	utxos, err := client.GetUtxos(context.Background())
	require.NoError(t, err)
	require.True(t, utxos.Encoded)
	require.Len(t, utxos.Raw, 1)

	var encoded string
	require.NoError(t, json.Unmarshal(utxos.Raw[0], &encoded))
	decoded, err := utxocodec.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, txHash, decoded.TxHash)
	require.Equal(t, uint32(1), decoded.OutputIndex)
	require.Equal(t, testAddress, decoded.Address)
}

func TestRelayGetUtxosDegradedMode(t *testing.T) {
	fixture := newRelayFixture(t)
	fixture.addWallet(t)
	client := fixture.newProvider(t)
	fixture.enable(t, client)

	// the tx hash is not hex, the codec cannot express this utxo: the whole
	// answer degrades to plain JSON instead of failing the request
	fixture.chainSource.utxos = []ports.Utxo{
		{
			TxHash:      "not-a-tx-hash",
			OutputIndex: 0,
			Address:     testAddress,
			Assets:      []ports.UtxoAsset{{Unit: "lovelace", Quantity: "1500000"}},
		},
	}

	utxos, err := client.GetUtxos(context.Background())
	require.NoError(t, err)
	require.False(t, utxos.Encoded)
	require.Len(t, utxos.Raw, 1)

	var out utxocodec.UnspentOutput
	require.NoError(t, json.Unmarshal(utxos.Raw[0], &out))
	require.Equal(t, "not-a-tx-hash", out.TxHash)
	require.Equal(t, testAddress, out.Address)
}

func TestRelayIgnoresForeignTraffic(t *testing.T) {
	fixture := newRelayFixture(t)

	conn, _, err := websocket.DefaultDialer.Dial(fixture.wsURL(), nil)
	require.NoError(t, err)
	defer conn.Close()

	// neither a foreign tag nor garbage gets an answer
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"tag":"other-protocol/1","id":"x","type":"ENABLE_REQUEST"}`),
	))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`not even json`),
	))

	// a tagged request right after still gets served
	envelope, err := json.Marshal(protocol.Envelope{
		Tag:     protocol.Tag,
		ID:      "req-1",
		Type:    protocol.MsgIsEnabledRequest,
		Payload: json.RawMessage(fmt.Sprintf(`{"origin":%q}`, testOrigin)),
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, envelope))

	var res protocol.Response
	require.NoError(t, conn.ReadJSON(&res))
	require.Equal(t, "req-1", res.ID)
	require.True(t, res.Success)
}

func TestRelayUnknownMethod(t *testing.T) {
	fixture := newRelayFixture(t)

	conn, _, err := websocket.DefaultDialer.Dial(fixture.wsURL(), nil)
	require.NoError(t, err)
	defer conn.Close()

	envelope, err := json.Marshal(protocol.Envelope{
		Tag:  protocol.Tag,
		ID:   "req-1",
		Type: "SIGN_TX",
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, envelope))

	var res protocol.Response
	require.NoError(t, conn.ReadJSON(&res))
	require.Equal(t, "req-1", res.ID)
	require.False(t, res.Success)
	require.NotNil(t, res.Error)
	require.Equal(t, application.CodeUnknownMethod, res.Error.Code)
}

func TestRelayOutOfOrderResponses(t *testing.T) {
	fixture := newRelayFixture(t)
	client := fixture.newProvider(t)

	// a suspended enable does not block unrelated requests on the same
	// connection
	outcome := make(chan error, 1)
	go func() {
		_, err := client.Enable(context.Background())
		outcome <- err
	}()

	enabled, err := client.IsEnabled(context.Background())
	require.NoError(t, err)
	require.False(t, enabled)

	fixture.approve(t, true)
	require.NoError(t, <-outcome)
}

func TestRelayRejectsPermissionResponseOnSocket(t *testing.T) {
	fixture := newRelayFixture(t)
	client := fixture.newProvider(t)

	outcome := make(chan error, 1)
	go func() {
		_, err := client.Enable(context.Background())
		outcome <- err
	}()

	var session string
	require.Eventually(t, func() bool {
		s, ok := fixture.prompter.lastSession()
		session = s
		return ok
	}, time.Second, 5*time.Millisecond)

	// a provider knowing its own session id must not be able to approve
	// itself over the dApp-facing socket
	conn, _, err := websocket.DefaultDialer.Dial(fixture.wsURL(), nil)
	require.NoError(t, err)
	defer conn.Close()

	payload, err := json.Marshal(protocol.PermissionResponsePayload{
		Origin:   testOrigin,
		Session:  session,
		Approved: true,
	})
	require.NoError(t, err)
	envelope, err := json.Marshal(protocol.Envelope{
		Tag:     protocol.Tag,
		ID:      "req-1",
		Type:    "PERMISSION_RESPONSE",
		Payload: payload,
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, envelope))

	var res protocol.Response
	require.NoError(t, conn.ReadJSON(&res))
	require.False(t, res.Success)
	require.NotNil(t, res.Error)
	require.Equal(t, application.CodeUnknownMethod, res.Error.Code)

	// the enable is still pending and the origin still not enabled
	enabled, err := client.IsEnabled(context.Background())
	require.NoError(t, err)
	require.False(t, enabled)

	fixture.approve(t, true)
	require.NoError(t, <-outcome)
}
