package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cardanoconnect/connectd/internal/core/application"
)

var spoofwallet = cli.Command{
	Name:   "spoofwallet",
	Usage:  "create a watch-only wallet around a bare address",
	Action: spoofWalletAction,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Usage:    "display name of the wallet, shown to dApps",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "address",
			Usage:    "bech32 payment address to watch",
			Required: true,
		},
	},
}

func spoofWalletAction(ctx *cli.Context) error {
	network, err := getNetwork(ctx)
	if err != nil {
		return err
	}

	svc, cleanup, err := getWalletService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	wallet, err := svc.CreateSpoofedWallet(
		context.Background(), application.CreateSpoofedWalletArgs{
			Name:    ctx.String("name"),
			Address: ctx.String("address"),
			Network: network,
		},
	)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("id: %s\n", wallet.ID)
	fmt.Printf("address: %s\n", wallet.Address)

	return nil
}
