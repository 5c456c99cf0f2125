// Package utxocodec implements the binary wire format dApps expect for
// unspent transaction outputs: a CBOR pair of transaction input and output,
// hex-encoded, with the output value collapsed to a bare coin integer when
// the lovelace amount is the only asset.
package utxocodec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/fxamacker/cbor/v2"

	"github.com/cardanoconnect/connectd/pkg/keymanager"
)

var (
	// ErrMalformedTxHash ...
	ErrMalformedTxHash = errors.New("tx hash must be a 32-byte hex string")
	// ErrMalformedAddress ...
	ErrMalformedAddress = errors.New("address is not a valid bech32 address")
	// ErrMalformedAssetUnit ...
	ErrMalformedAssetUnit = errors.New(
		"asset unit must be \"lovelace\" or the hex concatenation of policy id and asset name",
	)
	// ErrMalformedQuantity ...
	ErrMalformedQuantity = errors.New("asset quantity must be a non-negative integer")
	// ErrNonCanonicalAssets ...
	ErrNonCanonicalAssets = errors.New(
		"assets must follow the canonical order, lovelace first then ascending unit",
	)
	// ErrMalformedDatum ...
	ErrMalformedDatum = errors.New("datum hash and inline datum must be valid hex")
	// ErrConflictingDatum ...
	ErrConflictingDatum = errors.New("datum hash and inline datum are mutually exclusive")
	// ErrMalformedEncoding ...
	ErrMalformedEncoding = errors.New("encoded utxo is not valid hex-wrapped cbor")
)

const (
	lovelaceUnit = "lovelace"

	txHashSize   = 32
	policyIDSize = 28

	outputKeyAddress   = 0
	outputKeyValue     = 1
	outputKeyDatum     = 2
	outputKeyScriptRef = 3

	datumTagHash   = 0
	datumTagInline = 1
)

// Asset is an (asset-unit, quantity) pair. Quantity is kept as a decimal
// string so the codec round-trips exactly what wallet state holds.
type Asset struct {
	Unit     string
	Quantity string
}

// UnspentOutput is the wallet-side view of a UTXO accepted by the codec.
// Assets must follow the canonical order, lovelace first then ascending unit,
// which is also the order Decode reports them in: this is what keeps Decode
// the exact inverse of Encode. SortAssets brings any asset list into that
// order.
type UnspentOutput struct {
	TxHash              string
	OutputIndex         uint32
	Address             string
	Assets              []Asset
	DatumHash           string
	InlineDatum         string
	ReferenceScriptHash string
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(err)
	}
}

// SortAssets rearranges assets in place into the canonical order Encode
// accepts, lovelace first then ascending unit.
func SortAssets(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Unit == lovelaceUnit {
			return assets[j].Unit != lovelaceUnit
		}
		if assets[j].Unit == lovelaceUnit {
			return false
		}
		return assets[i].Unit < assets[j].Unit
	})
}

// Encode serializes a single unspent output to its hex-wrapped CBOR form.
// Assets out of the canonical order are rejected, not silently reordered.
func Encode(utxo UnspentOutput) (string, error) {
	txHash, err := hex.DecodeString(utxo.TxHash)
	if err != nil || len(txHash) != txHashSize {
		return "", ErrMalformedTxHash
	}
	addrBytes, err := keymanager.AddressBytes(utxo.Address)
	if err != nil {
		return "", ErrMalformedAddress
	}

	value, err := encodeValue(utxo.Assets)
	if err != nil {
		return "", err
	}

	output, err := encodeOutput(utxo, addrBytes, value)
	if err != nil {
		return "", err
	}

	buf, err := encMode.Marshal([]interface{}{
		[]interface{}{txHash, utxo.OutputIndex},
		output,
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// EncodeBatch encodes every utxo of the batch, failing on the first
// malformed item. Callers decide the degraded-mode policy; the relay falls
// back to the unencoded batch when this returns an error.
func EncodeBatch(utxos []UnspentOutput) ([]string, error) {
	encoded := make([]string, 0, len(utxos))
	for i, utxo := range utxos {
		buf, err := Encode(utxo)
		if err != nil {
			return nil, fmt.Errorf("utxo %d: %w", i, err)
		}
		encoded = append(encoded, buf)
	}
	return encoded, nil
}

// Decode is the exact inverse of Encode.
func Decode(encoded string) (*UnspentOutput, error) {
	buf, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, ErrMalformedEncoding
	}

	var pair []cbor.RawMessage
	if err := cbor.Unmarshal(buf, &pair); err != nil || len(pair) != 2 {
		return nil, ErrMalformedEncoding
	}

	var input []cbor.RawMessage
	if err := cbor.Unmarshal(pair[0], &input); err != nil || len(input) != 2 {
		return nil, ErrMalformedEncoding
	}
	var txHash []byte
	if err := cbor.Unmarshal(input[0], &txHash); err != nil || len(txHash) != txHashSize {
		return nil, ErrMalformedEncoding
	}
	var outputIndex uint32
	if err := cbor.Unmarshal(input[1], &outputIndex); err != nil {
		return nil, ErrMalformedEncoding
	}

	utxo := &UnspentOutput{
		TxHash:      hex.EncodeToString(txHash),
		OutputIndex: outputIndex,
	}
	if err := decodeOutput(pair[1], utxo); err != nil {
		return nil, err
	}
	return utxo, nil
}

// assetsCanonical reports whether assets come in the order Decode produces:
// lovelace first when present, then strictly ascending unit.
func assetsCanonical(assets []Asset) bool {
	start := 0
	if len(assets) > 0 && assets[0].Unit == lovelaceUnit {
		start = 1
	}
	for i := start; i < len(assets); i++ {
		if assets[i].Unit == lovelaceUnit {
			return false
		}
		if i > start && assets[i].Unit <= assets[i-1].Unit {
			return false
		}
	}
	return true
}

func encodeValue(assets []Asset) (interface{}, error) {
	if !assetsCanonical(assets) {
		return nil, ErrNonCanonicalAssets
	}

	var coin uint64
	var hasCoin bool
	multiAsset := map[cbor.ByteString]map[cbor.ByteString]uint64{}

	for _, asset := range assets {
		quantity, err := strconv.ParseUint(asset.Quantity, 10, 64)
		if err != nil {
			return nil, ErrMalformedQuantity
		}
		if asset.Unit == lovelaceUnit {
			coin = quantity
			hasCoin = true
			continue
		}

		unit, err := hex.DecodeString(asset.Unit)
		if err != nil || len(unit) < policyIDSize {
			return nil, ErrMalformedAssetUnit
		}
		policy := cbor.ByteString(unit[:policyIDSize])
		name := cbor.ByteString(unit[policyIDSize:])
		if _, ok := multiAsset[policy]; !ok {
			multiAsset[policy] = map[cbor.ByteString]uint64{}
		}
		multiAsset[policy][name] = quantity
	}

	if !hasCoin && len(multiAsset) == 0 {
		return nil, ErrMalformedQuantity
	}
	if len(multiAsset) == 0 {
		return coin, nil
	}
	return []interface{}{coin, multiAsset}, nil
}

func encodeOutput(utxo UnspentOutput, addrBytes []byte, value interface{}) (interface{}, error) {
	if utxo.DatumHash != "" && utxo.InlineDatum != "" {
		return nil, ErrConflictingDatum
	}

	if utxo.DatumHash == "" && utxo.InlineDatum == "" && utxo.ReferenceScriptHash == "" {
		return []interface{}{addrBytes, value}, nil
	}

	output := map[int]interface{}{
		outputKeyAddress: addrBytes,
		outputKeyValue:   value,
	}
	if utxo.DatumHash != "" {
		hash, err := hex.DecodeString(utxo.DatumHash)
		if err != nil {
			return nil, ErrMalformedDatum
		}
		output[outputKeyDatum] = []interface{}{uint64(datumTagHash), hash}
	}
	if utxo.InlineDatum != "" {
		datum, err := hex.DecodeString(utxo.InlineDatum)
		if err != nil {
			return nil, ErrMalformedDatum
		}
		output[outputKeyDatum] = []interface{}{uint64(datumTagInline), datum}
	}
	if utxo.ReferenceScriptHash != "" {
		hash, err := hex.DecodeString(utxo.ReferenceScriptHash)
		if err != nil {
			return nil, ErrMalformedDatum
		}
		output[outputKeyScriptRef] = hash
	}
	return output, nil
}

func decodeOutput(raw cbor.RawMessage, utxo *UnspentOutput) error {
	if len(raw) == 0 {
		return ErrMalformedEncoding
	}

	var addrBytes []byte
	var value cbor.RawMessage

	switch raw[0] >> 5 {
	case 4: // array, the pre-datum output shape
		var fields []cbor.RawMessage
		if err := cbor.Unmarshal(raw, &fields); err != nil || len(fields) < 2 {
			return ErrMalformedEncoding
		}
		if err := cbor.Unmarshal(fields[0], &addrBytes); err != nil {
			return ErrMalformedEncoding
		}
		value = fields[1]
	case 5: // map, the post-datum output shape
		var fields map[int]cbor.RawMessage
		if err := cbor.Unmarshal(raw, &fields); err != nil {
			return ErrMalformedEncoding
		}
		if err := cbor.Unmarshal(fields[outputKeyAddress], &addrBytes); err != nil {
			return ErrMalformedEncoding
		}
		value = fields[outputKeyValue]

		if rawDatum, ok := fields[outputKeyDatum]; ok {
			if err := decodeDatum(rawDatum, utxo); err != nil {
				return err
			}
		}
		if rawScript, ok := fields[outputKeyScriptRef]; ok {
			var hash []byte
			if err := cbor.Unmarshal(rawScript, &hash); err != nil {
				return ErrMalformedEncoding
			}
			utxo.ReferenceScriptHash = hex.EncodeToString(hash)
		}
	default:
		return ErrMalformedEncoding
	}

	address, err := keymanager.EncodeAddressBytes(addrBytes)
	if err != nil {
		return ErrMalformedEncoding
	}
	utxo.Address = address

	assets, err := decodeValue(value)
	if err != nil {
		return err
	}
	utxo.Assets = assets
	return nil
}

func decodeDatum(raw cbor.RawMessage, utxo *UnspentOutput) error {
	var option []cbor.RawMessage
	if err := cbor.Unmarshal(raw, &option); err != nil || len(option) != 2 {
		return ErrMalformedEncoding
	}
	var tag uint64
	if err := cbor.Unmarshal(option[0], &tag); err != nil {
		return ErrMalformedEncoding
	}
	var datum []byte
	if err := cbor.Unmarshal(option[1], &datum); err != nil {
		return ErrMalformedEncoding
	}

	switch tag {
	case datumTagHash:
		utxo.DatumHash = hex.EncodeToString(datum)
	case datumTagInline:
		utxo.InlineDatum = hex.EncodeToString(datum)
	default:
		return ErrMalformedEncoding
	}
	return nil
}

func decodeValue(raw cbor.RawMessage) ([]Asset, error) {
	if len(raw) == 0 {
		return nil, ErrMalformedEncoding
	}

	var coin uint64
	multiAsset := map[cbor.ByteString]map[cbor.ByteString]uint64{}

	if raw[0]>>5 == 0 { // bare unsigned integer, lovelace only
		if err := cbor.Unmarshal(raw, &coin); err != nil {
			return nil, ErrMalformedEncoding
		}
	} else {
		var pair []cbor.RawMessage
		if err := cbor.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return nil, ErrMalformedEncoding
		}
		if err := cbor.Unmarshal(pair[0], &coin); err != nil {
			return nil, ErrMalformedEncoding
		}
		if err := cbor.Unmarshal(pair[1], &multiAsset); err != nil {
			return nil, ErrMalformedEncoding
		}
	}

	assets := []Asset{{
		Unit:     lovelaceUnit,
		Quantity: strconv.FormatUint(coin, 10),
	}}
	for policy, names := range multiAsset {
		for name, quantity := range names {
			unit := hex.EncodeToString([]byte(string(policy))) +
				hex.EncodeToString([]byte(string(name)))
			assets = append(assets, Asset{
				Unit:     unit,
				Quantity: strconv.FormatUint(quantity, 10),
			})
		}
	}

	// canonical report order: lovelace first, then ascending unit
	sort.Slice(assets[1:], func(i, j int) bool {
		return assets[1+i].Unit < assets[1+j].Unit
	})
	return assets, nil
}
