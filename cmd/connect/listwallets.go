package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"
)

var listwallets = cli.Command{
	Name:   "listwallets",
	Usage:  "list all stored wallets",
	Action: listWalletsAction,
}

type walletInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Network      string `json:"network"`
	Kind         string `json:"kind"`
	Address      string `json:"address"`
	StakeAddress string `json:"stakeAddress,omitempty"`
	Balance      string `json:"balance"`
}

func listWalletsAction(ctx *cli.Context) error {
	svc, cleanup, err := getWalletService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	wallets, err := svc.ListWallets(context.Background())
	if err != nil {
		return err
	}

	infos := make([]walletInfo, 0, len(wallets))
	for _, w := range wallets {
		infos = append(infos, walletInfo{
			ID:           w.ID,
			Name:         w.Name,
			Network:      string(w.Network),
			Kind:         string(w.Kind),
			Address:      w.Address,
			StakeAddress: w.StakeAddress,
			Balance:      w.Balance,
		})
	}

	buf, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(buf))
	return nil
}
