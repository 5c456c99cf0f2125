package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var deletewallet = cli.Command{
	Name:      "deletewallet",
	Usage:     "remove a stored wallet",
	ArgsUsage: "<wallet id>",
	Action:    deleteWalletAction,
}

func deleteWalletAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("exactly one wallet id is expected")
	}

	svc, cleanup, err := getWalletService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.DeleteWallet(context.Background(), ctx.Args().First()); err != nil {
		return err
	}

	fmt.Println("wallet removed")
	return nil
}
