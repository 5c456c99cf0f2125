package keymanager

import (
	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

// AddressKind partitions well-formed addresses into the four disjoint kinds
// the connector cares about.
type AddressKind int

const (
	// KindUnknown is returned for addresses that cannot be classified. It is
	// a distinct outcome on purpose: malformed input must never silently fall
	// into one of the real kinds.
	KindUnknown AddressKind = iota
	// KindStake identifies a staking/reward account address.
	KindStake
	// KindBasePayment is a payment address carrying both a payment and a
	// staking credential.
	KindBasePayment
	// KindEnterprisePayment is a payment address with no staking credential.
	KindEnterprisePayment
	// KindScript is any address whose payment credential is a script hash.
	// Script addresses may share a wallet's staking credential and still are
	// never controlled by the wallet.
	KindScript
)

func (k AddressKind) String() string {
	switch k {
	case KindStake:
		return "stake"
	case KindBasePayment:
		return "base"
	case KindEnterprisePayment:
		return "enterprise"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

const (
	credentialSize = 28

	baseAddressSize   = 1 + 2*credentialSize
	simpleAddressSize = 1 + credentialSize

	paymentHrpMainnet = "addr"
	paymentHrpTestnet = "addr_test"
	stakeHrpMainnet   = "stake"
	stakeHrpTestnet   = "stake_test"
)

// ClassifyAddress determines the kind of a bech32-encoded address from its
// human-readable part and header byte. No network access, no guessing: a
// malformed or unsupported address yields KindUnknown with an error.
func ClassifyAddress(addr string) (AddressKind, error) {
	hrp, payload, err := decodeBech32(addr)
	if err != nil {
		return KindUnknown, ErrUnrecognizedAddress
	}

	isStakeHrp := hrp == stakeHrpMainnet || hrp == stakeHrpTestnet
	isPaymentHrp := hrp == paymentHrpMainnet || hrp == paymentHrpTestnet
	if !isStakeHrp && !isPaymentHrp {
		return KindUnknown, ErrUnrecognizedAddress
	}
	if len(payload) < 1 {
		return KindUnknown, ErrInvalidAddressPayload
	}

	switch payload[0] >> 4 {
	case 0x0, 0x2:
		// type 2 pairs a key payment credential with a script staking
		// credential: the payment side decides the kind
		if isStakeHrp || len(payload) != baseAddressSize {
			return KindUnknown, ErrInvalidAddressPayload
		}
		return KindBasePayment, nil
	case 0x1, 0x3:
		if isStakeHrp || len(payload) != baseAddressSize {
			return KindUnknown, ErrInvalidAddressPayload
		}
		return KindScript, nil
	case 0x6:
		if isStakeHrp || len(payload) != simpleAddressSize {
			return KindUnknown, ErrInvalidAddressPayload
		}
		return KindEnterprisePayment, nil
	case 0x7:
		if isStakeHrp || len(payload) != simpleAddressSize {
			return KindUnknown, ErrInvalidAddressPayload
		}
		return KindScript, nil
	case 0xe:
		if !isStakeHrp || len(payload) != simpleAddressSize {
			return KindUnknown, ErrInvalidAddressPayload
		}
		return KindStake, nil
	case 0xf:
		if !isStakeHrp || len(payload) != simpleAddressSize {
			return KindUnknown, ErrInvalidAddressPayload
		}
		return KindScript, nil
	default:
		return KindUnknown, ErrInvalidAddressPayload
	}
}

// IsExternalAddress reports whether an address is NOT controlled by the
// wallet owning the given payment addresses. Script addresses are always
// external, even when they embed the wallet's own staking credential.
func IsExternalAddress(addr string, ownedPaymentAddresses []string) bool {
	kind, err := ClassifyAddress(addr)
	if err != nil || kind == KindScript {
		return true
	}
	for _, owned := range ownedPaymentAddresses {
		if owned == addr {
			return false
		}
	}
	return true
}

// AddressBytes returns the raw payload of a bech32-encoded address.
func AddressBytes(addr string) ([]byte, error) {
	_, payload, err := decodeBech32(addr)
	if err != nil {
		return nil, ErrUnrecognizedAddress
	}
	return payload, nil
}

// EncodeAddressBytes is the inverse of AddressBytes: it re-encodes a raw
// address payload, picking the human-readable part from the header byte.
func EncodeAddressBytes(payload []byte) (string, error) {
	if len(payload) < 1 {
		return "", ErrInvalidAddressPayload
	}

	mainnet := payload[0]&0x0f == 1
	var hrp string
	switch payload[0] >> 4 {
	case 0xe, 0xf:
		hrp = stakeHrpTestnet
		if mainnet {
			hrp = stakeHrpMainnet
		}
	default:
		hrp = paymentHrpTestnet
		if mainnet {
			hrp = paymentHrpMainnet
		}
	}
	return encodeBech32(hrp, payload)
}

func encodeBaseAddress(paymentPub, stakingPub []byte, network Network) (string, error) {
	paymentHash, err := hashCredential(paymentPub)
	if err != nil {
		return "", err
	}
	stakingHash, err := hashCredential(stakingPub)
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, baseAddressSize)
	payload = append(payload, network.tag())
	payload = append(payload, paymentHash...)
	payload = append(payload, stakingHash...)

	hrp := paymentHrpTestnet
	if network == Mainnet {
		hrp = paymentHrpMainnet
	}
	return encodeBech32(hrp, payload)
}

func encodeStakeAddress(stakingPub []byte, network Network) (string, error) {
	stakingHash, err := hashCredential(stakingPub)
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, simpleAddressSize)
	payload = append(payload, 0xe0|network.tag())
	payload = append(payload, stakingHash...)

	hrp := stakeHrpTestnet
	if network == Mainnet {
		hrp = stakeHrpMainnet
	}
	return encodeBech32(hrp, payload)
}

func hashCredential(pub []byte) ([]byte, error) {
	hasher, err := blake2b.New(credentialSize, nil)
	if err != nil {
		return nil, err
	}
	hasher.Write(pub)
	return hasher.Sum(nil), nil
}

// Cardano addresses exceed the 90-character limit of BIP173, hence the
// no-limit decoding.
func decodeBech32(addr string) (string, []byte, error) {
	hrp, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return "", nil, err
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, payload, nil
}

func encodeBech32(hrp string, payload []byte) (string, error) {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, data)
}
