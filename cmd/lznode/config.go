package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/maticnetwork/lzapp/endpoint"
	"github.com/maticnetwork/lzapp/lzscan"
	"github.com/maticnetwork/lzapp/relay"
	"github.com/maticnetwork/lzapp/relay/relayws"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "<dumpfile (optional)>",
	Flags:       nodeFlags,
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

const (
	kindBlocking    = "blocking"
	kindNonblocking = "nonblocking"
)

var errAppKind = errors.New("unknown application kind")

type nodeConfig struct {
	DataDir         string
	DBEngine        string
	DatabaseCache   int
	DatabaseHandles int
	RPCAddr         string
	HTTPCors        []string `toml:",omitempty"`
	WSOrigins       []string `toml:",omitempty"`
	Metrics         bool
	MetricsAddr     string
}

type endpointConfig struct {
	Address  common.Address
	ChainID  uint16
	Deployer common.Address
	Relayers []common.Address `toml:",omitempty"`
	Fees     endpoint.FeeConfig
}

type trustedRemoteConfig struct {
	ChainID uint16
	Path    hexutil.Bytes
}

type appConfig struct {
	Address        common.Address
	Owner          common.Address
	Kind           string
	TrustedRemotes []trustedRemoteConfig `toml:",omitempty"`
}

type relayConfig struct {
	Client    relayws.Config
	Deliverer relay.Config
}

type lznodeConfig struct {
	Node     nodeConfig
	Endpoint endpointConfig
	Apps     []appConfig `toml:",omitempty"`
	Relay    relayConfig
	Scan     lzscan.Config
}

func defaultConfig() lznodeConfig {
	return lznodeConfig{
		Node: nodeConfig{
			DBEngine:        "pebble",
			DatabaseCache:   64,
			DatabaseHandles: 256,
			RPCAddr:         "127.0.0.1:8645",
			MetricsAddr:     "127.0.0.1:6060",
		},
		Endpoint: endpointConfig{
			Address:  common.HexToAddress("0x3c2269811836af69497E5F486A85D7316753cf62"),
			ChainID:  1,
			Deployer: common.HexToAddress("0x01"),
			Fees:     endpoint.DefaultFeeConfig(),
		},
		Relay: relayConfig{
			Client:    relayws.DefaultConfig,
			Deliverer: relay.DefaultConfig,
		},
	}
}

func loadConfig(file string, cfg *lznodeConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

func (cfg *lznodeConfig) validate() error {
	seen := make(map[common.Address]bool)
	for _, app := range cfg.Apps {
		if app.Kind != kindBlocking && app.Kind != kindNonblocking {
			return fmt.Errorf("%w: %q", errAppKind, app.Kind)
		}
		if app.Address == cfg.Endpoint.Address || seen[app.Address] {
			return fmt.Errorf("duplicate contract address %s", app.Address)
		}
		seen[app.Address] = true
	}
	return nil
}

// makeConfig loads the configuration file, if any, and applies the command
// line flags on top of it.
func makeConfig(ctx *cli.Context) (*lznodeConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return nil, err
		}
	}
	if ctx.IsSet(dataDirFlag.Name) {
		cfg.Node.DataDir = ctx.String(dataDirFlag.Name)
	}
	if ctx.IsSet(dbEngineFlag.Name) {
		cfg.Node.DBEngine = ctx.String(dbEngineFlag.Name)
	}
	if ctx.IsSet(rpcAddrFlag.Name) {
		cfg.Node.RPCAddr = ctx.String(rpcAddrFlag.Name)
	}
	if ctx.IsSet(rpcCorsFlag.Name) {
		cfg.Node.HTTPCors = ctx.StringSlice(rpcCorsFlag.Name)
	}
	if ctx.IsSet(relayURLFlag.Name) {
		cfg.Relay.Client.URL = ctx.String(relayURLFlag.Name)
	}
	if ctx.IsSet(metricsFlag.Name) {
		cfg.Node.Metrics = ctx.Bool(metricsFlag.Name)
	}
	if ctx.IsSet(metricsAddrFlag.Name) {
		cfg.Node.MetricsAddr = ctx.String(metricsAddrFlag.Name)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
