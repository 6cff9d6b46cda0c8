// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/spf13/viper"
)

const (
	configDir  = "config"
	configFile = "querynode.toml"
)

type StorageType string

const (
	MemoryStorage StorageType = "memory"
	BadgerStorage StorageType = "badger"
)

// DefaultLogLevels is the default set of log rules.
const DefaultLogLevels = "error;node=info;query=info;submission=info"

type Config struct {
	// RootDir is the node's working directory. It is not stored.
	RootDir string `toml:"-" mapstructure:"-"`

	Node            Node            `toml:"node" mapstructure:"node"`
	Logging         Logging         `toml:"logging" mapstructure:"logging"`
	Consensus       Consensus       `toml:"consensus" mapstructure:"consensus"`
	Storage         Storage         `toml:"storage" mapstructure:"storage"`
	Query           Query           `toml:"query" mapstructure:"query"`
	Fees            Fees            `toml:"fees" mapstructure:"fees"`
	Throttle        Throttle        `toml:"throttle" mapstructure:"throttle"`
	Accounts        Accounts        `toml:"accounts" mapstructure:"accounts"`
	Ingest          Ingest          `toml:"ingest" mapstructure:"ingest"`
	Instrumentation Instrumentation `toml:"instrumentation" mapstructure:"instrumentation"`
}

type Node struct {
	// AccountID is the account that receives query payments.
	AccountID       string        `toml:"account-id" mapstructure:"account-id"`
	ListenAddress   string        `toml:"listen-address" mapstructure:"listen-address"`
	ShutdownTimeout time.Duration `toml:"shutdown-timeout" mapstructure:"shutdown-timeout"`

	// MaxConnections limits the number of open query connections. Zero means
	// no limit.
	MaxConnections int `toml:"max-connections" mapstructure:"max-connections"`
}

type Logging struct {
	// Level is a rule set such as "error;query=debug".
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`

	// Output is stderr, stdout, or a file path relative to the root.
	Output     string `toml:"output" mapstructure:"output"`
	MaxSizeMB  int    `toml:"max-size-mb" mapstructure:"max-size-mb"`
	MaxBackups int    `toml:"max-backups" mapstructure:"max-backups"`
	MaxAgeDays int    `toml:"max-age-days" mapstructure:"max-age-days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

type Consensus struct {
	// RPCAddress is the CometBFT RPC endpoint. If it is empty the node runs
	// standalone and records payments locally.
	RPCAddress string        `toml:"rpc-address" mapstructure:"rpc-address"`
	Timeout    time.Duration `toml:"timeout" mapstructure:"timeout"`
}

type Storage struct {
	Type StorageType `toml:"type" mapstructure:"type"`
	Path string      `toml:"path" mapstructure:"path"`
}

type Query struct {
	// ChargeQueries enables throttling of queries.
	ChargeQueries bool `toml:"charge-queries" mapstructure:"charge-queries"`

	// MissingPaymentCode is the precheck code for a paid query that carries
	// no payment.
	MissingPaymentCode string `toml:"missing-payment-code" mapstructure:"missing-payment-code"`

	MaxConcurrent   int   `toml:"max-concurrent" mapstructure:"max-concurrent"`
	MaxRequestBytes int64 `toml:"max-request-bytes" mapstructure:"max-request-bytes"`
}

type Fees struct {
	// Schedule is the path of a YAML fee schedule. If empty the built-in
	// schedule is used.
	Schedule string `toml:"schedule" mapstructure:"schedule"`

	// HbarEquiv hbars are worth CentEquiv cents.
	HbarEquiv int32 `toml:"hbar-equiv" mapstructure:"hbar-equiv"`
	CentEquiv int32 `toml:"cent-equiv" mapstructure:"cent-equiv"`
}

type Throttle struct {
	// CapacitySplit is the number of nodes sharing the network's capacity.
	CapacitySplit int      `toml:"capacity-split" mapstructure:"capacity-split"`
	Buckets       []Bucket `toml:"buckets" mapstructure:"buckets"`
}

type Bucket struct {
	Name            string        `toml:"name" mapstructure:"name"`
	OpsPerSec       float64       `toml:"ops-per-sec" mapstructure:"ops-per-sec"`
	BurstPeriod     time.Duration `toml:"burst-period" mapstructure:"burst-period"`
	Functionalities []string      `toml:"functionalities" mapstructure:"functionalities"`
}

type Accounts struct {
	SuperUsers  []string     `toml:"super-users" mapstructure:"super-users"`
	Permissions []Permission `toml:"permissions" mapstructure:"permissions"`
}

// Permission grants a functionality to a range of account numbers, such as
// "0-*" or "2-50".
type Permission struct {
	Functionality string `toml:"functionality" mapstructure:"functionality"`
	Accounts      string `toml:"accounts" mapstructure:"accounts"`
}

type Ingest struct {
	MinValidDuration time.Duration `toml:"min-valid-duration" mapstructure:"min-valid-duration"`
	MaxValidDuration time.Duration `toml:"max-valid-duration" mapstructure:"max-valid-duration"`
	MaxMemoBytes     int           `toml:"max-memo-bytes" mapstructure:"max-memo-bytes"`
	ClockSkew        time.Duration `toml:"clock-skew" mapstructure:"clock-skew"`
	MaxTransfers     int           `toml:"max-transfers" mapstructure:"max-transfers"`
}

type Instrumentation struct {
	Prometheus       bool   `toml:"prometheus" mapstructure:"prometheus"`
	PrometheusListen string `toml:"prometheus-listen" mapstructure:"prometheus-listen"`
	Tracing          bool   `toml:"tracing" mapstructure:"tracing"`
}

func Default() *Config {
	c := new(Config)
	c.Node.AccountID = "0.0.3"
	c.Node.ListenAddress = "127.0.0.1:50211"
	c.Node.ShutdownTimeout = 10 * time.Second
	c.Node.MaxConnections = 1024
	c.Logging.Level = DefaultLogLevels
	c.Logging.Format = "plain"
	c.Logging.Output = "stderr"
	c.Logging.MaxSizeMB = 10
	c.Logging.MaxBackups = 5
	c.Logging.MaxAgeDays = 28
	c.Logging.Compress = true
	c.Consensus.Timeout = 5 * time.Second
	c.Storage.Type = BadgerStorage
	c.Storage.Path = filepath.Join("data", "state.db")
	c.Query.ChargeQueries = true
	c.Query.MissingPaymentCode = "INSUFFICIENT_TX_FEE"
	c.Query.MaxConcurrent = 256
	c.Query.MaxRequestBytes = 6 << 10
	c.Fees.HbarEquiv = 1
	c.Fees.CentEquiv = 12
	c.Throttle.CapacitySplit = 1
	c.Throttle.Buckets = DefaultBuckets()
	c.Accounts.SuperUsers = []string{"0.0.2", "0.0.50"}
	c.Accounts.Permissions = []Permission{
		{Functionality: "NetworkGetExecutionTime", Accounts: "2-50"},
		{Functionality: "GetAccountDetails", Accounts: "2-50"},
	}
	c.Ingest.MinValidDuration = 15 * time.Second
	c.Ingest.MaxValidDuration = 180 * time.Second
	c.Ingest.MaxMemoBytes = 100
	c.Ingest.ClockSkew = 10 * time.Second
	c.Ingest.MaxTransfers = 10
	c.Instrumentation.Prometheus = true
	c.Instrumentation.PrometheusListen = "127.0.0.1:9464"
	return c
}

// DefaultBuckets returns throttle buckets that admit every query.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{
			Name:        "ThroughputLimits",
			OpsPerSec:   10000,
			BurstPeriod: time.Second,
			Functionalities: []string{
				"CryptoTransfer",
				"ConsensusSubmitMessage",
			},
		},
		{
			Name:        "FreeQueryLimits",
			OpsPerSec:   1000000,
			BurstPeriod: time.Second,
			Functionalities: []string{
				"CryptoGetAccountBalance",
				"TransactionGetReceipt",
			},
		},
		{
			Name:        "QueryLimits",
			OpsPerSec:   10000,
			BurstPeriod: time.Second,
			Functionalities: []string{
				"GetByKey",
				"GetBySolidityID",
				"ContractCallLocal",
				"ContractGetInfo",
				"ContractGetBytecode",
				"ContractGetRecords",
				"CryptoGetAccountRecords",
				"CryptoGetInfo",
				"CryptoGetLiveHash",
				"CryptoGetProxyStakers",
				"FileGetContents",
				"FileGetInfo",
				"TransactionGetRecord",
				"TransactionGetFastRecord",
				"ConsensusGetTopicInfo",
				"NetworkGetVersionInfo",
				"TokenGetInfo",
				"ScheduleGetInfo",
				"TokenGetAccountNftInfos",
				"TokenGetNftInfo",
				"TokenGetNftInfos",
				"NetworkGetExecutionTime",
				"GetAccountDetails",
			},
		},
	}
}

// SetRoot sets the root directory.
func (c *Config) SetRoot(dir string) { c.RootDir = dir }

// MakeAbsolute resolves path relative to the root directory.
func (c *Config) MakeAbsolute(path string) string {
	return MakeAbsolute(c.RootDir, path)
}

func MakeAbsolute(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// Load reads the configuration from dir/config/querynode.toml. Values not in
// the file keep their defaults.
func Load(dir string) (*Config, error) {
	return LoadFile(dir, filepath.Join(dir, configDir, configFile))
}

func LoadFile(dir, file string) (*Config, error) {
	c := Default()
	err := load(dir, file, c)
	if err != nil {
		return nil, err
	}
	c.SetRoot(dir)

	err = c.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return c, nil
}

// Store writes the configuration to RootDir/config/querynode.toml.
func Store(config *Config) error {
	dir := filepath.Join(config.RootDir, configDir)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, configFile))
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(config)
}

func load(dir, file string, c *Config) error {
	v := viper.New()
	v.SetConfigFile(file)
	v.AddConfigPath(dir)
	err := v.ReadInConfig()
	if err != nil {
		return fmt.Errorf("read: %v", err)
	}

	// Lists replace the defaults instead of being merged into them
	if v.IsSet("throttle.buckets") {
		c.Throttle.Buckets = nil
	}
	if v.IsSet("accounts.super-users") {
		c.Accounts.SuperUsers = nil
	}
	if v.IsSet("accounts.permissions") {
		c.Accounts.Permissions = nil
	}

	err = v.Unmarshal(c)
	if err != nil {
		return fmt.Errorf("unmarshal: %v", err)
	}

	return nil
}
