package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dkwon/toychain/internal/bootstrap"
	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/internal/config"
	"github.com/dkwon/toychain/internal/node"
	"github.com/dkwon/toychain/internal/peerstore"
	"github.com/dkwon/toychain/internal/store"
)

var (
	configFile    string
	listenAddr    string
	dataDir       string
	peerAddrs     []string
	snapshotEvery time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "toychain-node",
		Short: "toychain node: accepts peers, gossips blocks, serves miner templates",
		RunE:  runNode,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", ":9000", "address to accept peer connections on")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "directory for chain and peer databases")
	rootCmd.PersistentFlags().StringSliceVar(&peerAddrs, "peers", nil, "comma-separated addresses of bootstrap peers")
	rootCmd.PersistentFlags().DurationVar(&snapshotEvery, "snapshot-interval", 30*time.Second, "how often to persist a chain snapshot")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runNode(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := buildConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	chainStore, err := store.Open(cfg.SnapshotPath)
	if err != nil {
		return fmt.Errorf("open chain store: %w", err)
	}
	defer chainStore.Close()

	peers, err := peerstore.Open(cfg.PeerstorePath)
	if err != nil {
		return fmt.Errorf("open peerstore: %w", err)
	}
	defer peers.Close()

	remembered, err := peers.All(context.Background())
	if err != nil {
		return fmt.Errorf("read known peers: %w", err)
	}
	bootstrapPeers := mergePeerAddrs(cfg.Peers, remembered)

	bc, ok, err := chainStore.Load()
	if err != nil {
		return fmt.Errorf("load chain snapshot: %w", err)
	}
	if !ok {
		bc = chain.New()
		if err := bootstrap.FromPeers(bc, bootstrapPeers, logger); err != nil {
			logger.Warn("bootstrap failed, starting from an empty chain", zap.Error(err))
		}
	}

	srv := node.New(bc, logger, peers)

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}
	logger.Info("node listening", zap.String("addr", cfg.ListenAddr))

	stop := make(chan struct{})
	go store.RunPeriodicSnapshots(chainStore, bc, cfg.SnapshotPeriod, stop, logger)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		close(stop)
		return fmt.Errorf("serve: %w", err)
	case <-sig:
		logger.Info("shutting down")
		close(stop)
		ln.Close()
		if err := chainStore.Save(bc); err != nil {
			logger.Warn("final snapshot failed", zap.Error(err))
		}
		return nil
	}
}

// mergePeerAddrs combines the CLI-supplied peer list with addresses
// remembered from a previous run, deduplicated, CLI order first.
func mergePeerAddrs(configured, remembered []string) []string {
	seen := make(map[string]struct{}, len(configured)+len(remembered))
	merged := make([]string, 0, len(configured)+len(remembered))
	for _, addr := range configured {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		merged = append(merged, addr)
	}
	for _, addr := range remembered {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		merged = append(merged, addr)
	}
	return merged
}

func loadConfig() error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

func buildConfig() config.Node {
	cfg := config.Node{
		ListenAddr:     listenAddr,
		DataDir:        dataDir,
		Peers:          peerAddrs,
		SnapshotPeriod: snapshotEvery,
	}
	if v := viper.GetString("listen"); v != "" {
		cfg.ListenAddr = v
	}
	if v := viper.GetString("data_dir"); v != "" {
		cfg.DataDir = v
	}
	cfg.SnapshotPath = cfg.DataDir + "/chain.db"
	cfg.PeerstorePath = cfg.DataDir + "/peers.db"
	return cfg
}
