package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"

	"github.com/cardanoconnect/connectd/internal/core/application"
	"github.com/cardanoconnect/connectd/internal/core/domain"
	dbbadger "github.com/cardanoconnect/connectd/internal/infrastructure/storage/db/badger"
	"github.com/cardanoconnect/connectd/pkg/keymanager"
)

var defaultDatadir = btcutil.AppDataDir("connectd", false)

var (
	datadirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "the daemon data directory holding the wallet store",
		Value: defaultDatadir,
	}
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "the network to derive addresses for, either mainnet or testnet",
		Value: string(keymanager.Testnet),
	}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "connect CLI"
	app.Usage = "Command line interface for connectd daemon operators"
	app.Flags = []cli.Flag{&datadirFlag, &networkFlag}
	app.Commands = append(
		app.Commands,
		&genseed,
		&createwallet,
		&spoofwallet,
		&listwallets,
		&setactive,
		&deletewallet,
		&origins,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

// getWalletService opens the store the daemon also uses, so it must not run
// while the daemon holds the badger lock.
func getWalletService(ctx *cli.Context) (*application.WalletService, func(), error) {
	db, cleanup, err := openDb(ctx)
	if err != nil {
		return nil, nil, err
	}
	return application.NewWalletService(dbbadger.NewWalletRepositoryImpl(db)),
		cleanup, nil
}

func getPermissionRepository(ctx *cli.Context) (domain.PermissionRepository, func(), error) {
	db, cleanup, err := openDb(ctx)
	if err != nil {
		return nil, nil, err
	}
	return dbbadger.NewPermissionRepositoryImpl(db), cleanup, nil
}

func openDb(ctx *cli.Context) (*dbbadger.DbManager, func(), error) {
	dbDir := filepath.Join(ctx.String("datadir"), "db")
	db, err := dbbadger.NewDbManager(dbDir, nil)
	if err != nil {
		return nil, nil, fmt.Errorf(
			"could not open wallet store (is the daemon running?): %w", err,
		)
	}
	cleanup := func() {
		// nolint
		db.Close()
	}
	return db, cleanup, nil
}

func getNetwork(ctx *cli.Context) (keymanager.Network, error) {
	network := keymanager.Network(ctx.String("network"))
	if network != keymanager.Mainnet && network != keymanager.Testnet {
		return "", fmt.Errorf("network must be either mainnet or testnet")
	}
	return network, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[connect] %v\n", err)
	os.Exit(1)
}
