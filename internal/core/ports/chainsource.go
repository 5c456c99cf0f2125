package ports

import "context"

// Utxo is the chain-source view of an unspent output, kept transiently and
// only serialized by the utxo codec when it crosses into a connector
// response.
type Utxo struct {
	TxHash              string
	OutputIndex         uint32
	Address             string
	Assets              []UtxoAsset
	DatumHash           string
	InlineDatum         string
	ReferenceScriptHash string
}

// UtxoAsset is an (asset-unit, quantity) amount of a Utxo.
type UtxoAsset struct {
	Unit     string
	Quantity string
}

// ChainSource abstracts the external on-chain data provider.
type ChainSource interface {
	GetUtxos(ctx context.Context, address string) ([]Utxo, error)
}
