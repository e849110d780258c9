package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dkwon/toychain/internal/config"
	"github.com/dkwon/toychain/internal/miner"
)

var (
	configFile string
	nodeAddr   string
	keyPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "toychain-miner",
		Short: "toychain miner: fetches block templates from a node and mines them",
		RunE:  runMiner,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&nodeAddr, "node", "127.0.0.1:9000", "address of the node to mine against")
	rootCmd.PersistentFlags().StringVar(&keyPath, "key", "./miner.key", "path to the coinbase private key file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runMiner(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := buildConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	key, err := config.LoadOrCreateKey(cfg.KeyPath)
	if err != nil {
		return fmt.Errorf("load coinbase key: %w", err)
	}

	client, err := miner.DialNode(cfg.NodeAddr)
	if err != nil {
		return fmt.Errorf("dial node %s: %w", cfg.NodeAddr, err)
	}
	defer client.Close()

	m := miner.New(client, key.PublicKey(), logger)
	logger.Info("mining started", zap.String("node", cfg.NodeAddr))
	m.Run()
	return nil
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

func buildConfig() config.Miner {
	cfg := config.Miner{NodeAddr: nodeAddr, KeyPath: keyPath}
	if v := viper.GetString("node"); v != "" {
		cfg.NodeAddr = v
	}
	if v := viper.GetString("key"); v != "" {
		cfg.KeyPath = v
	}
	return cfg
}
