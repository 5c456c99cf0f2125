package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/cardanoconnect/connectd/internal/core/application"
)

var createwallet = cli.Command{
	Name:   "createwallet",
	Usage:  "create an HD wallet from a mnemonic seed",
	Action: createWalletAction,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Usage:    "display name of the wallet, shown to dApps",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "mnemonic",
			Usage:    "space-separated mnemonic seed words",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "optional password encrypting the seed at rest",
		},
	},
}

func createWalletAction(ctx *cli.Context) error {
	network, err := getNetwork(ctx)
	if err != nil {
		return err
	}

	svc, cleanup, err := getWalletService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	wallet, err := svc.CreateHDWallet(context.Background(), application.CreateHDWalletArgs{
		Name:     ctx.String("name"),
		Mnemonic: strings.Fields(ctx.String("mnemonic")),
		Password: ctx.String("password"),
		Network:  network,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("id: %s\n", wallet.ID)
	fmt.Printf("address: %s\n", wallet.Address)
	fmt.Printf("stake address: %s\n", wallet.StakeAddress)

	return nil
}
