package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var setactive = cli.Command{
	Name:      "setactive",
	Usage:     "make a stored wallet the one served to dApps",
	ArgsUsage: "<wallet id>",
	Action:    setActiveAction,
}

func setActiveAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("exactly one wallet id is expected")
	}

	svc, cleanup, err := getWalletService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.SetActiveWallet(context.Background(), ctx.Args().First()); err != nil {
		return err
	}

	fmt.Println("active wallet updated")
	return nil
}
