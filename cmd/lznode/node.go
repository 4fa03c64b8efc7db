package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/metrics/prometheus"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/endpoint"
	"github.com/maticnetwork/lzapp/lzapi"
	"github.com/maticnetwork/lzapp/lzapp"
	"github.com/maticnetwork/lzapp/relay"
	"github.com/maticnetwork/lzapp/relay/relayws"
)

var runCommand = &cli.Command{
	Action: runNode,
	Name:   "run",
	Usage:  "Run the node",
	Flags:  nodeFlags,
}

var errNotFound = errors.New("no application configured at address")

// node is an opened chain with its endpoint and applications attached.
type node struct {
	cfg   *lznodeConfig
	db    ethdb.Database
	chain *host.Chain
	ep    *endpoint.Local
	apps  map[common.Address]interface{}
}

func (n *node) Chain() *host.Chain        { return n.chain }
func (n *node) Endpoint() *endpoint.Local { return n.ep }

func openDatabase(cfg *nodeConfig) (ethdb.Database, error) {
	if cfg.DataDir == "" {
		return rawdb.NewMemoryDatabase(), nil
	}
	dir, err := homedir.Expand(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return rawdb.Open(rawdb.OpenOptions{
		Type:      cfg.DBEngine,
		Directory: dir,
		Namespace: "lznode/db/",
		Cache:     cfg.DatabaseCache,
		Handles:   cfg.DatabaseHandles,
	})
}

// openNode opens the database and attaches the endpoint and applications.
// Contracts without committed state are deployed; the others are attached
// to their existing storage.
func openNode(cfg *lznodeConfig) (*node, error) {
	db, err := openDatabase(&cfg.Node)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	n := &node{
		cfg:   cfg,
		db:    db,
		chain: host.NewChain(db),
		apps:  make(map[common.Address]interface{}),
	}
	if err := n.attach(); err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func (n *node) attach() error {
	epCfg := endpoint.Config{
		ChainID:  n.cfg.Endpoint.ChainID,
		Fees:     n.cfg.Endpoint.Fees,
		Relayers: n.cfg.Endpoint.Relayers,
	}
	ep, err := endpoint.Deploy(n.chain, n.cfg.Endpoint.Deployer, n.cfg.Endpoint.Address, epCfg)
	if err != nil {
		return err
	}
	if relayer := n.cfg.Relay.Deliverer.Relayer; relayer != (common.Address{}) {
		ep.AddRelayer(relayer)
	}
	n.ep = ep

	for _, ac := range n.cfg.Apps {
		base, contract, err := n.attachApp(ac, lzapp.Config{Owner: ac.Owner, Endpoint: ep, Application: lzapp.Inbox{}})
		if err != nil {
			return err
		}
		n.apps[ac.Address] = contract
		n.configure(base, ac)
	}
	return nil
}

// attachApp deploys the application described by ac, or attaches it to its
// committed storage when its constructor already ran.
func (n *node) attachApp(ac appConfig, cfg lzapp.Config) (*lzapp.LzApp, interface{}, error) {
	deployed := lzapp.Deployed(n.chain.State(), ac.Address)
	if deployed {
		log.Info("Attaching application", "address", ac.Address, "kind", ac.Kind)
	} else {
		log.Info("Deploying application", "address", ac.Address, "kind", ac.Kind)
	}

	switch ac.Kind {
	case kindBlocking:
		if !deployed {
			app, err := lzapp.DeployBlocking(n.chain, ac.Address, cfg)
			if err != nil {
				return nil, nil, err
			}
			return app.LzApp, app, nil
		}
		app := lzapp.NewBlocking(n.chain, ac.Address, cfg)
		return app.LzApp, app, n.chain.Deploy(common.Address{}, ac.Address, app, nil)
	case kindNonblocking:
		if !deployed {
			app, err := lzapp.DeployNonblocking(n.chain, ac.Address, cfg)
			if err != nil {
				return nil, nil, err
			}
			return app.LzApp, app, nil
		}
		app := lzapp.NewNonblocking(n.chain, ac.Address, cfg)
		return app.LzApp, app, n.chain.Deploy(common.Address{}, ac.Address, app, nil)
	}
	return nil, nil, fmt.Errorf("%w: %q", errAppKind, ac.Kind)
}

// configure brings the trusted remotes of app in line with ac.
func (n *node) configure(app *lzapp.LzApp, ac appConfig) {
	for _, tr := range ac.TrustedRemotes {
		if bytes.Equal(app.TrustedRemote(n.chain.State(), tr.ChainID), tr.Path) {
			continue
		}
		owner := app.Owner(n.chain.State())
		_, err := n.chain.Transact(owner, app.Address(), nil, func(f *host.Frame) error {
			return app.SetTrustedRemote(f, tr.ChainID, tr.Path)
		})
		if err != nil {
			log.Warn("Failed to set trusted remote", "app", app.Address(), "chain", tr.ChainID, "err", err)
		}
	}
}

func (n *node) nonblocking(addr common.Address) (*lzapp.NonblockingApp, error) {
	contract, ok := n.apps[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotFound, addr)
	}
	app, ok := contract.(*lzapp.NonblockingApp)
	if !ok {
		return nil, fmt.Errorf("application %s keeps no failed messages", addr)
	}
	return app, nil
}

func (n *node) Close() {
	n.chain.Close()
	if err := n.db.Close(); err != nil {
		log.Error("Failed to close database", "err", err)
	}
}

func isWebsocket(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}

func newCorsHandler(srv http.Handler, allowedOrigins []string) http.Handler {
	// disable CORS support if user has not specified a custom CORS configuration
	if len(allowedOrigins) == 0 {
		return srv
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodGet},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(srv)
}

// newRPCHandler serves the lz API over HTTP and WebSocket on one handler.
func newRPCHandler(n *node) (http.Handler, *rpc.Server, error) {
	srv := rpc.NewServer()
	for _, api := range lzapi.APIs(n) {
		if err := srv.RegisterName(api.Namespace, api.Service); err != nil {
			return nil, nil, err
		}
	}
	ws := srv.WebsocketHandler(n.cfg.Node.WSOrigins)
	h := newCorsHandler(srv, n.cfg.Node.HTTPCors)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isWebsocket(r) {
			ws.ServeHTTP(w, r)
			return
		}
		h.ServeHTTP(w, r)
	}), srv, nil
}

func serve(addr string, handler http.Handler, name string) (*http.Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	server := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "name", name, "err", err)
		}
	}()
	log.Info("Server started", "name", name, "addr", listener.Addr())
	return server, nil
}

// runNode is the run command and the default action.
func runNode(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	n, err := openNode(cfg)
	if err != nil {
		return err
	}
	defer n.Close()

	sigctx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var servers []*http.Server
	defer func() {
		for _, s := range servers {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = s.Shutdown(shutdownCtx)
			cancel()
		}
	}()

	if cfg.Node.RPCAddr != "" {
		handler, srv, err := newRPCHandler(n)
		if err != nil {
			return err
		}
		defer srv.Stop()

		s, err := serve(cfg.Node.RPCAddr, handler, "rpc")
		if err != nil {
			return err
		}
		servers = append(servers, s)
	}

	if cfg.Node.Metrics {
		if !metrics.Enabled {
			log.Warn("Metrics collection is disabled, start with --metrics to enable it")
		}
		mux := http.NewServeMux()
		mux.Handle("/debug/metrics/prometheus", prometheus.Handler(metrics.DefaultRegistry))
		s, err := serve(cfg.Node.MetricsAddr, mux, "metrics")
		if err != nil {
			return err
		}
		servers = append(servers, s)
	}

	if cfg.Relay.Client.URL != "" {
		client := relayws.NewClient(cfg.Relay.Client)
		defer client.Close()

		deliverer := relay.NewDeliverer(n.chain, n.ep, cfg.Relay.Deliverer)
		done := make(chan struct{})
		go func() {
			deliverer.Run(sigctx, client)
			close(done)
		}()
		defer func() { <-done }()
	}

	log.Info("Node started", "chain", cfg.Endpoint.ChainID, "endpoint", cfg.Endpoint.Address, "apps", len(n.apps))
	<-sigctx.Done()
	log.Info("Shutting down")
	return nil
}
