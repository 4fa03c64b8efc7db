// lznode hosts an endpoint and its applications on a local chain, serves
// them over JSON-RPC and delivers packets relayed from remote chains.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	dataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the database (in-memory when empty)",
	}
	dbEngineFlag = &cli.StringFlag{
		Name:  "db.engine",
		Usage: "Backing database implementation to use ('pebble' or 'leveldb')",
	}
	rpcAddrFlag = &cli.StringFlag{
		Name:  "rpc.addr",
		Usage: "HTTP and WebSocket JSON-RPC listening address",
	}
	relayURLFlag = &cli.StringFlag{
		Name:  "relay.url",
		Usage: "WebSocket URL of the relay feed",
	}
	metricsFlag = &cli.BoolFlag{
		Name:  "metrics",
		Usage: "Enable metrics collection and the Prometheus endpoint",
	}
	metricsAddrFlag = &cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Prometheus endpoint listening address",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "Write logs to a rotated file instead of the terminal",
	}
	logMaxSizeFlag = &cli.IntFlag{
		Name:  "log.maxsize",
		Usage: "Maximum size in megabytes of the log file before it gets rotated",
		Value: 100,
	}
	logMaxBackupsFlag = &cli.IntFlag{
		Name:  "log.maxbackups",
		Usage: "Maximum number of log files to retain",
		Value: 10,
	}
	logCompressFlag = &cli.BoolFlag{
		Name:  "log.compress",
		Usage: "Compress rotated log files",
	}
	rpcCorsFlag = &cli.StringSliceFlag{
		Name:  "rpc.corsdomain",
		Usage: "Domains from which to accept cross origin HTTP requests",
	}
	fromNonceFlag = &cli.Uint64Flag{
		Name:  "from",
		Usage: "First nonce to audit",
		Value: 1,
	}

	nodeFlags = []cli.Flag{
		configFileFlag,
		dataDirFlag,
		dbEngineFlag,
		rpcAddrFlag,
		rpcCorsFlag,
		relayURLFlag,
		metricsFlag,
		metricsAddrFlag,
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "lznode",
		Usage: "cross-chain application node",
		Flags: append([]cli.Flag{
			verbosityFlag,
			logFileFlag,
			logMaxSizeFlag,
			logMaxBackupsFlag,
			logCompressFlag,
		}, nodeFlags...),
		Before: func(ctx *cli.Context) error {
			w := ctx.App.ErrWriter
			if file := ctx.String(logFileFlag.Name); file != "" {
				w = &lumberjack.Logger{
					Filename:   file,
					MaxSize:    ctx.Int(logMaxSizeFlag.Name),
					MaxBackups: ctx.Int(logMaxBackupsFlag.Name),
					Compress:   ctx.Bool(logCompressFlag.Name),
				}
			}
			setupLogging(w, ctx.Int(verbosityFlag.Name))
			return nil
		},
		Action: runNode,
		Commands: []*cli.Command{
			runCommand,
			inspectCommand,
			exportCommand,
			importCommand,
			auditCommand,
			dumpConfigCommand,
		},
	}
}

// setupLogging installs a terminal logger on w, colored when w is a
// terminal.
func setupLogging(w io.Writer, verbosity int) {
	if w == nil {
		w = os.Stderr
	}
	usecolor := false
	if f, ok := w.(*os.File); ok {
		usecolor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
		if usecolor && f == os.Stderr {
			w = colorable.NewColorableStderr()
		}
	}
	glogger := log.NewGlogHandler(log.NewTerminalHandler(w, usecolor))
	glogger.Verbosity(log.FromLegacyLevel(verbosity))
	log.SetDefault(log.NewLogger(glogger))
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
