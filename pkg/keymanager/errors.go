package keymanager

import "errors"

var (
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic is null")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrInvalidNetwork ...
	ErrInvalidNetwork = errors.New("network must be either mainnet or testnet")
	// ErrInvalidRootKey ...
	ErrInvalidRootKey = errors.New("root key must be a 96-byte extended key in hex format")
	// ErrInvalidDerivationIndex ...
	ErrInvalidDerivationIndex = errors.New("derivation index is out of range")

	// ErrUnrecognizedAddress ...
	ErrUnrecognizedAddress = errors.New("address is not a recognized bech32 address")
	// ErrInvalidAddressPayload ...
	ErrInvalidAddressPayload = errors.New("address payload does not match any known kind")

	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher must be in base64 format")
)
