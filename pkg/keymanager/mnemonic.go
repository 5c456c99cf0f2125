package keymanager

import (
	"strings"

	"github.com/vulpemventures/go-bip39"
)

// NewMnemonicOpts is the struct given to the NewMnemonic method
type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewMnemonic returns a new mnemonic as a list of words. The default entropy
// size of 256 bits yields a 24-word mnemonic.
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 256
	}

	entropy, err := bip39.NewEntropy(opts.EntropySize)
	if err != nil {
		return nil, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Split(mnemonic, " "), nil
}

func generateSeedFromMnemonic(mnemonic []string) []byte {
	m := strings.Join(mnemonic, " ")
	return bip39.NewSeed(m, "")
}

func isMnemonicValid(mnemonic []string) bool {
	m := strings.Join(mnemonic, " ")
	return bip39.IsMnemonicValid(m)
}
