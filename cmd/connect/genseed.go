package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/cardanoconnect/connectd/pkg/keymanager"
)

var genseed = cli.Command{
	Name:   "genseed",
	Usage:  "generate a mnemonic seed",
	Action: genSeedAction,
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "entropy",
			Usage: "entropy size in bits of the generated seed",
			Value: 256,
		},
	},
}

func genSeedAction(ctx *cli.Context) error {
	mnemonic, err := keymanager.NewMnemonic(keymanager.NewMnemonicOpts{
		EntropySize: ctx.Int("entropy"),
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(strings.Join(mnemonic, " "))

	return nil
}
