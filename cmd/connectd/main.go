package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cardanoconnect/connectd/internal/config"
	"github.com/cardanoconnect/connectd/internal/core/application"
	"github.com/cardanoconnect/connectd/internal/core/domain"
	"github.com/cardanoconnect/connectd/internal/core/ports"
	"github.com/cardanoconnect/connectd/internal/infrastructure/approval"
	"github.com/cardanoconnect/connectd/internal/infrastructure/chainsource/blockfrost"
	dbbadger "github.com/cardanoconnect/connectd/internal/infrastructure/storage/db/badger"
	"github.com/cardanoconnect/connectd/internal/infrastructure/storage/db/inmemory"
	wsinterface "github.com/cardanoconnect/connectd/internal/interfaces/ws"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	walletRepo, permissionRepo, closeDb, err := openStores()
	if err != nil {
		log.WithError(err).Fatal("could not open datastore")
	}
	defer closeDb()

	prompter, err := approval.NewService(config.GetString(config.ApprovalEndpointKey))
	if err != nil {
		log.WithError(err).Fatal("invalid approval endpoint")
	}

	var chainSource ports.ChainSource
	if chainSourceURL := config.GetString(config.ChainSourceURLKey); len(chainSourceURL) > 0 {
		chainSource, err = blockfrost.NewService(
			chainSourceURL, config.GetString(config.ChainSourceKeyKey),
		)
		if err != nil {
			log.WithError(err).Fatal("invalid chain source")
		}
	} else {
		log.Warn("no chain source configured, utxo requests will answer empty sets")
	}

	approvalTTL := time.Duration(config.GetInt(config.ApprovalTimeoutKey)) * time.Second
	connectorSvc := application.NewConnectorService(
		walletRepo,
		permissionRepo,
		application.NewPendingRequestTable(approvalTTL),
		prompter,
		chainSource,
	)

	relay, err := wsinterface.NewRelay(wsinterface.RelayOpts{
		Address: fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey)),
		Service: connectorSvc,
	})
	if err != nil {
		log.WithError(err).Fatal("could not setup relay interface")
	}

	log.Debug("starting daemon")

	var group errgroup.Group
	group.Go(relay.Start)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	relay.Stop()
	if err := group.Wait(); err != nil {
		log.WithError(err).Error("relay interface stopped with error")
	}

	log.Debug("exiting")
}

func openStores() (
	domain.WalletRepository, domain.PermissionRepository, func(), error,
) {
	switch config.GetString(config.DBTypeKey) {
	case config.DBInMemory:
		db := inmemory.NewDbManager()
		return inmemory.NewWalletRepositoryImpl(db),
			inmemory.NewPermissionRepositoryImpl(db),
			func() {}, nil
	default:
		dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
		db, err := dbbadger.NewDbManager(dbDir, log.New())
		if err != nil {
			return nil, nil, nil, err
		}
		closeDb := func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("could not close datastore cleanly")
			}
		}
		return dbbadger.NewWalletRepositoryImpl(db),
			dbbadger.NewPermissionRepositoryImpl(db),
			closeDb, nil
	}
}
