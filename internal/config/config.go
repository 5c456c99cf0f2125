package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of the daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// ListeningPortKey is the port where the relay interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// NetworkKey selects the chain the wallet keys are derived for, either mainnet or testnet
	NetworkKey = "NETWORK"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// ChainSourceURLKey is the base url of the Blockfrost-compatible chain data provider,
	// optional: without it utxo requests answer with an empty set
	ChainSourceURLKey = "CHAIN_SOURCE_URL"
	// ChainSourceKeyKey is the project id sent to the chain data provider
	ChainSourceKeyKey = "CHAIN_SOURCE_KEY"
	// ApprovalEndpointKey is the http endpoint the approval surface is notified on,
	// optional: without it every enable of an unknown origin fails fast
	ApprovalEndpointKey = "APPROVAL_ENDPOINT"
	// ApprovalTimeoutKey is the duration in seconds a pending approval request may
	// wait for a human decision before expiring
	ApprovalTimeoutKey = "APPROVAL_TIMEOUT"

	// DbLocation is the folder inside the datadir containing db files
	DbLocation = "db"

	// DBBadger ...
	DBBadger = "badger"
	// DBInMemory ...
	DBInMemory = "inmemory"

	// NetworkMainnet ...
	NetworkMainnet = "mainnet"
	// NetworkTestnet ...
	NetworkTestnet = "testnet"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("connectd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("CONNECTD")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(ListeningPortKey, 9945)
	vip.SetDefault(NetworkKey, NetworkTestnet)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(ApprovalTimeoutKey, 120)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBBadger && dbType != DBInMemory {
		return fmt.Errorf(
			"%s must be either %s or %s", DBTypeKey, DBBadger, DBInMemory,
		)
	}

	network := GetString(NetworkKey)
	if network != NetworkMainnet && network != NetworkTestnet {
		return fmt.Errorf(
			"%s must be either %s or %s", NetworkKey, NetworkMainnet, NetworkTestnet,
		)
	}

	if GetInt(ApprovalTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be a positive number of seconds", ApprovalTimeoutKey)
	}

	port := GetInt(ListeningPortKey)
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be a valid port number", ListeningPortKey)
	}

	return nil
}

func initDatadir() error {
	if GetString(DBTypeKey) != DBBadger {
		return nil
	}
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
