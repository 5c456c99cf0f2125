package keymanager

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/pbkdf2"
)

// Network selects the address tag embedded in every derived address.
type Network string

const (
	// Mainnet ...
	Mainnet Network = "mainnet"
	// Testnet ...
	Testnet Network = "testnet"
)

func (n Network) validate() error {
	if n != Mainnet && n != Testnet {
		return ErrInvalidNetwork
	}
	return nil
}

func (n Network) tag() byte {
	if n == Mainnet {
		return 1
	}
	return 0
}

const (
	hardenedOffset = uint32(0x80000000)

	purposeIndex  = hardenedOffset + 1852
	coinTypeIndex = hardenedOffset + 1815
	accountIndex  = hardenedOffset + 0

	paymentRole = uint32(0)
	stakingRole = uint32(2)

	rootKeySize = 96
)

// extendedKey is a BIP32-Ed25519 extended key: the 64-byte expanded private
// key (kL||kR) followed by the 32-byte chain code.
type extendedKey struct {
	k  [64]byte
	cc [32]byte
}

// rootKeyFromSeed turns the first 32 bytes of a BIP39 seed into the root
// extended private key with the Cardano entropy-to-key transform: a
// PBKDF2-SHA512 stretch to 96 bytes followed by the usual ed25519 clamping.
// This is deliberately not the SECP256K1 BIP32 algorithm; using that one
// yields addresses the rest of the ecosystem cannot recognize.
func rootKeyFromSeed(seed []byte) *extendedKey {
	entropy := seed[:32]
	xprv := pbkdf2.Key([]byte(""), entropy, 4096, rootKeySize, sha512.New)
	xprv[0] &= 0xf8
	xprv[31] &= 0x1f
	xprv[31] |= 0x40

	key := &extendedKey{}
	copy(key.k[:], xprv[:64])
	copy(key.cc[:], xprv[64:])
	return key
}

func parseRootKey(rootKeyHex string) (*extendedKey, error) {
	buf, err := hex.DecodeString(rootKeyHex)
	if err != nil || len(buf) != rootKeySize {
		return nil, ErrInvalidRootKey
	}
	key := &extendedKey{}
	copy(key.k[:], buf[:64])
	copy(key.cc[:], buf[64:])
	return key, nil
}

func (x *extendedKey) bytes() []byte {
	buf := make([]byte, 0, rootKeySize)
	buf = append(buf, x.k[:]...)
	buf = append(buf, x.cc[:]...)
	return buf
}

// publicKey returns the ed25519 public key of the extended key. kL is taken
// modulo the group order before the scalar base multiplication, which leaves
// the resulting point unchanged since the base point has that exact order.
func (x *extendedKey) publicKey() ([]byte, error) {
	wide := make([]byte, 64)
	copy(wide, x.k[:32])
	scalar, err := new(edwards25519.Scalar).SetUniformBytes(wide)
	if err != nil {
		return nil, err
	}
	point := new(edwards25519.Point).ScalarBaseMult(scalar)
	return point.Bytes(), nil
}

// child derives the extended child key at the given index following the V2
// BIP32-Ed25519 scheme: hardened children commit to the private key, soft
// children to the public key, with distinct HMAC tags for key and chain code.
func (x *extendedKey) child(index uint32) (*extendedKey, error) {
	idx := make([]byte, 4)
	binary.LittleEndian.PutUint32(idx, index)

	var z, c []byte
	if index >= hardenedOffset {
		z = hmacSHA512(x.cc[:], []byte{0x00}, x.k[:], idx)
		c = hmacSHA512(x.cc[:], []byte{0x01}, x.k[:], idx)
	} else {
		pub, err := x.publicKey()
		if err != nil {
			return nil, err
		}
		z = hmacSHA512(x.cc[:], []byte{0x02}, pub, idx)
		c = hmacSHA512(x.cc[:], []byte{0x03}, pub, idx)
	}

	child := &extendedKey{}
	kl := add28Mul8(x.k[:32], z[:28])
	kr := add256(x.k[32:], z[32:64])
	copy(child.k[:32], kl[:])
	copy(child.k[32:], kr[:])
	copy(child.cc[:], c[32:])
	return child, nil
}

func (x *extendedKey) derivePath(path []uint32) (*extendedKey, error) {
	key := x
	var err error
	for _, index := range path {
		if key, err = key.child(index); err != nil {
			return nil, err
		}
	}
	return key, nil
}

func hmacSHA512(key []byte, chunks ...[]byte) []byte {
	mac := hmac.New(sha512.New, key)
	for _, chunk := range chunks {
		mac.Write(chunk)
	}
	return mac.Sum(nil)
}

// add28Mul8 computes kl + 8*zl over 32 little-endian bytes, with zl truncated
// to its first 28 bytes as the derivation scheme mandates.
func add28Mul8(kl, zl []byte) [32]byte {
	var out [32]byte
	var carry uint16
	for i := 0; i < 28; i++ {
		r := uint16(kl[i]) + uint16(zl[i])<<3 + carry
		out[i] = byte(r)
		carry = r >> 8
	}
	for i := 28; i < 32; i++ {
		r := uint16(kl[i]) + carry
		out[i] = byte(r)
		carry = r >> 8
	}
	return out
}

func add256(kr, zr []byte) [32]byte {
	var out [32]byte
	var carry uint16
	for i := 0; i < 32; i++ {
		r := uint16(kr[i]) + uint16(zr[i]) + carry
		out[i] = byte(r)
		carry = r >> 8
	}
	return out
}

// WalletKeys is the result of a wallet key derivation. RootKey is the
// hex-encoded extended root key; persisting (and encrypting) it is entirely
// the caller's business, this package never stores key material.
type WalletKeys struct {
	Address      string
	StakeAddress string
	RootKey      string
}

// DeriveWalletKeysOpts is the struct given to the DeriveWalletKeys method
type DeriveWalletKeysOpts struct {
	Mnemonic []string
	Network  Network
}

func (o DeriveWalletKeysOpts) validate() error {
	if len(o.Mnemonic) <= 0 {
		return ErrNullMnemonic
	}
	if !isMnemonicValid(o.Mnemonic) {
		return ErrInvalidMnemonic
	}
	return o.Network.validate()
}

// DeriveWalletKeys deterministically derives the payment and stake addresses
// of the wallet identified by the given mnemonic on the given network, along
// the standard 1852'/1815'/0' account path. Two calls with identical inputs
// always return identical results.
func DeriveWalletKeys(opts DeriveWalletKeysOpts) (*WalletKeys, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed := generateSeedFromMnemonic(opts.Mnemonic)
	root := rootKeyFromSeed(seed)
	return deriveWalletKeys(root, opts.Network)
}

// DeriveWalletKeysFromRootOpts is the struct given to the
// DeriveWalletKeysFromRoot method
type DeriveWalletKeysFromRootOpts struct {
	RootKey string
	Network Network
}

func (o DeriveWalletKeysFromRootOpts) validate() error {
	if _, err := parseRootKey(o.RootKey); err != nil {
		return err
	}
	return o.Network.validate()
}

// DeriveWalletKeysFromRoot derives the same addresses as DeriveWalletKeys but
// starts from a previously derived root key instead of a mnemonic.
func DeriveWalletKeysFromRoot(opts DeriveWalletKeysFromRootOpts) (*WalletKeys, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	root, _ := parseRootKey(opts.RootKey)
	return deriveWalletKeys(root, opts.Network)
}

func deriveWalletKeys(root *extendedKey, network Network) (*WalletKeys, error) {
	account, err := root.derivePath([]uint32{
		purposeIndex, coinTypeIndex, accountIndex,
	})
	if err != nil {
		return nil, err
	}

	paymentKey, err := account.derivePath([]uint32{paymentRole, 0})
	if err != nil {
		return nil, err
	}
	stakingKey, err := account.derivePath([]uint32{stakingRole, 0})
	if err != nil {
		return nil, err
	}

	paymentPub, err := paymentKey.publicKey()
	if err != nil {
		return nil, err
	}
	stakingPub, err := stakingKey.publicKey()
	if err != nil {
		return nil, err
	}

	address, err := encodeBaseAddress(paymentPub, stakingPub, network)
	if err != nil {
		return nil, err
	}
	stakeAddress, err := encodeStakeAddress(stakingPub, network)
	if err != nil {
		return nil, err
	}

	return &WalletKeys{
		Address:      address,
		StakeAddress: stakeAddress,
		RootKey:      hex.EncodeToString(root.bytes()),
	}, nil
}
