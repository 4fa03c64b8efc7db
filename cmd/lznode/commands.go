package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/maticnetwork/lzapp/export"
	"github.com/maticnetwork/lzapp/lzapp"
	"github.com/maticnetwork/lzapp/lzscan"
)

var (
	inspectCommand = &cli.Command{
		Action:    inspect,
		Name:      "inspect",
		Usage:     "List the failed messages of a nonblocking application",
		ArgsUsage: "<app>",
		Flags:     nodeFlags,
	}
	exportCommand = &cli.Command{
		Action:    exportQueue,
		Name:      "export",
		Usage:     "Export the failed messages of a nonblocking application",
		ArgsUsage: "<app> <dumpfile>",
		Flags:     nodeFlags,
	}
	importCommand = &cli.Command{
		Action:    importQueue,
		Name:      "import",
		Usage:     "Import exported failed messages into a nonblocking application",
		ArgsUsage: "<app> <dumpfile>",
		Flags:     nodeFlags,
		Description: `
The failed messages are stored by the current owner of the application.
Messages already pending retry are skipped.`,
	}
	auditCommand = &cli.Command{
		Action:    audit,
		Name:      "audit",
		Usage:     "Check that every message accepted on a path was delivered or is pending retry",
		ArgsUsage: "<app> <srcChainId> <srcPath>",
		Flags:     append([]cli.Flag{fromNonceFlag}, nodeFlags...),
	}
)

var errArgs = errors.New("wrong number of arguments")

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// openApp opens the node and returns the nonblocking application named by
// the first argument.
func openApp(ctx *cli.Context, nargs int) (*node, *lzapp.NonblockingApp, error) {
	if ctx.NArg() != nargs {
		return nil, nil, fmt.Errorf("%w: want %s", errArgs, ctx.Command.ArgsUsage)
	}
	addr, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return nil, nil, err
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	n, err := openNode(cfg)
	if err != nil {
		return nil, nil, err
	}
	app, err := n.nonblocking(addr)
	if err != nil {
		n.Close()
		return nil, nil, err
	}
	return n, app, nil
}

func inspect(ctx *cli.Context) error {
	n, app, err := openApp(ctx, 1)
	if err != nil {
		return err
	}
	defer n.Close()

	reader, err := lzapp.NewReader(app, 0)
	if err != nil {
		return err
	}
	failed, err := reader.FailedMessages()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Chain", "Path", "Nonce", "Payload hash", "Payload"})
	for _, fm := range failed {
		payload := "unknown"
		if p := reader.Preimage(fm.PayloadHash); p != nil {
			payload = hexutil.Encode(p)
		}
		table.Append([]string{
			strconv.FormatUint(uint64(fm.SrcChainID), 10),
			hexutil.Encode(fm.SrcPath),
			strconv.FormatUint(fm.Nonce, 10),
			fm.PayloadHash.Hex(),
			payload,
		})
	}
	table.SetFooter([]string{"", "", "", "Total", strconv.Itoa(len(failed))})
	table.Render()
	return nil
}

func exportQueue(ctx *cli.Context) error {
	n, app, err := openApp(ctx, 2)
	if err != nil {
		return err
	}
	defer n.Close()

	reader, err := lzapp.NewReader(app, 0)
	if err != nil {
		return err
	}
	dump, err := export.Dump(reader, app.Address(), n.ep.ChainID())
	if err != nil {
		return err
	}

	f, err := os.OpenFile(ctx.Args().Get(1), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := dump.EncodeCompressed(f, export.DefaultCompressionConfig()); err != nil {
		return err
	}
	log.Info("Exported failed messages", "app", app.Address(), "entries", len(dump.Entries), "file", f.Name())
	return nil
}

func importQueue(ctx *cli.Context) error {
	n, app, err := openApp(ctx, 2)
	if err != nil {
		return err
	}
	defer n.Close()

	data, err := os.ReadFile(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	var dump export.QueueDump
	if err := dump.DecodeCompressed(data); err != nil {
		return err
	}
	if dump.App != app.Address() || dump.ChainID != n.ep.ChainID() {
		log.Warn("Importing messages of another deployment", "app", dump.App, "chain", dump.ChainID)
	}

	imported, err := export.Import(n.chain, app, app.Owner(n.chain.State()), &dump)
	if err != nil {
		return err
	}
	log.Info("Imported failed messages", "app", app.Address(), "imported", imported, "skipped", len(dump.Entries)-imported)
	return nil
}

func audit(ctx *cli.Context) error {
	if ctx.NArg() != 3 {
		return fmt.Errorf("%w: want %s", errArgs, ctx.Command.ArgsUsage)
	}
	addr, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	chainID, err := strconv.ParseUint(ctx.Args().Get(1), 0, 16)
	if err != nil {
		return fmt.Errorf("invalid chain id: %w", err)
	}
	path, err := hexutil.Decode(ctx.Args().Get(2))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	n, err := openNode(cfg)
	if err != nil {
		return err
	}
	defer n.Close()

	var deliveries lzscan.DeliveryReader
	switch app := n.apps[addr].(type) {
	case *lzapp.NonblockingApp:
		deliveries = app
	case *lzapp.BlockingApp:
		deliveries = lzscan.Blocking{BlockingApp: app}
	default:
		return fmt.Errorf("%w: %s", errNotFound, addr)
	}

	scanner := lzscan.NewScanner(n.ep, deliveries, cfg.Scan)
	res, err := scanner.Scan(ctx.Context, n.chain.State(), uint16(chainID), path, ctx.Uint64(fromNonceFlag.Name))
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "Nonces  %d-%d\n", res.From, res.To)
	fmt.Fprintf(ctx.App.Writer, "Failed  %v\n", res.Failed)
	fmt.Fprintf(ctx.App.Writer, "Missing %v\n", res.Missing)
	if len(res.Missing) > 0 {
		return fmt.Errorf("%d messages missing", len(res.Missing))
	}
	return nil
}
