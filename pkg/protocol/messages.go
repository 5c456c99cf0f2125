// Package protocol defines the wire frames of the connector protocol, shared
// by the daemon's relay and the provider client.
package protocol

import "encoding/json"

// Tag discriminates connector traffic from anything else sharing the
// transport. Messages carrying a different tag are silently ignored on both
// sides, never answered with an error.
const Tag = "connectd/1"

// Message types of the connector protocol.
const (
	MsgEnableRequest      = "ENABLE_REQUEST"
	MsgIsEnabledRequest   = "IS_ENABLED_REQUEST"
	MsgGetNetworkID       = "GET_NETWORK_ID"
	MsgGetUtxos           = "GET_UTXOS"
	MsgGetBalance         = "GET_BALANCE"
	MsgGetWalletName      = "GET_WALLET_NAME"
	MsgGetRewardAddresses = "GET_REWARD_ADDRESSES"
	MsgGetUsedAddresses   = "GET_USED_ADDRESSES"
)

// Envelope is the request frame of the connector protocol. The ID is chosen
// by the requesting side and echoed verbatim in the paired Response, which is
// the only correlation between the two.
type Envelope struct {
	Tag     string          `json:"tag"`
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the reply frame. Exactly one of Data and Error is populated,
// according to Success.
type Response struct {
	Tag     string          `json:"tag"`
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorPayload   `json:"error,omitempty"`
}

// ErrorPayload carries the stable negative error codes dApps branch on.
type ErrorPayload struct {
	Code int    `json:"code"`
	Info string `json:"info"`
}

// EnableRequestPayload asks for wallet access on behalf of an origin.
type EnableRequestPayload struct {
	Origin string `json:"origin"`
}

// IsEnabledRequestPayload probes the permission store for an origin.
type IsEnabledRequestPayload struct {
	Origin string `json:"origin"`
}

// PermissionResponsePayload feeds a human decision back to a suspended
// enable. The session pins the decision to the tab that asked. It travels
// exclusively over the permission endpoint of the relay, never the socket
// untrusted providers write to.
type PermissionResponsePayload struct {
	Origin   string `json:"origin"`
	Session  string `json:"session"`
	Approved bool   `json:"approved"`
}

// EnabledPayload answers both enable and isEnabled requests.
type EnabledPayload struct {
	Enabled bool `json:"enabled"`
}

// NetworkIDPayload answers network id requests.
type NetworkIDPayload struct {
	NetworkID int `json:"networkId"`
}

// BalancePayload answers balance requests with the amount in the smallest
// on-chain unit.
type BalancePayload struct {
	Balance string `json:"balance"`
}

// WalletNamePayload answers wallet name requests.
type WalletNamePayload struct {
	Name string `json:"name"`
}

// AddressesPayload answers used and reward address requests.
type AddressesPayload struct {
	Addresses []string `json:"addresses"`
}

// UtxosPayload answers utxo requests. When Encoded is true every entry is a
// hex-wrapped CBOR serialization, otherwise the codec failed and the entries
// degrade to plain JSON objects.
type UtxosPayload struct {
	Utxos   interface{} `json:"utxos"`
	Encoded bool        `json:"encoded"`
}
