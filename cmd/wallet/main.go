package main

import (
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/internal/config"
	"github.com/dkwon/toychain/internal/wire"
	"github.com/dkwon/toychain/pkg/btckey"
	"github.com/dkwon/toychain/pkg/hash"
)

var (
	nodeAddr string
	keyPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "toychain-wallet",
		Short: "toychain wallet: key management and transaction submission",
	}
	rootCmd.PersistentFlags().StringVar(&nodeAddr, "node", "127.0.0.1:9000", "address of a node to submit transactions to")
	rootCmd.PersistentFlags().StringVar(&keyPath, "key", "./wallet.key", "path to this wallet's private key file")

	rootCmd.AddCommand(keygenCmd())
	rootCmd.AddCommand(sendCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "generate a key and print its public address",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.LoadOrCreateKey(keyPath)
			if err != nil {
				return err
			}
			fmt.Printf("address: %s\n", hex.EncodeToString(key.PublicKey().Bytes()))
			return nil
		},
	}
}

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <prev-output-hash-hex> <value> <to-address-hex>",
		Short: "spend a UTXO you own to a new address and submit the transaction",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.LoadOrCreateKey(keyPath)
			if err != nil {
				return fmt.Errorf("load key: %w", err)
			}

			prevHashBytes, err := hex.DecodeString(args[0])
			if err != nil || len(prevHashBytes) != 32 {
				return fmt.Errorf("prev-output-hash must be 32 bytes of hex")
			}
			var prevHashArr [32]byte
			copy(prevHashArr[:], prevHashBytes)
			prevHash := hash.FromBytes(prevHashArr)

			value, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value: %w", err)
			}

			toBytes, err := hex.DecodeString(args[2])
			if err != nil {
				return fmt.Errorf("invalid recipient address: %w", err)
			}
			to, err := btckey.PublicKeyFromBytes(toBytes)
			if err != nil {
				return fmt.Errorf("parse recipient address: %w", err)
			}

			sig := key.Sign(prevHash.Bytes())
			tx := chain.Transaction{
				Inputs:  []chain.TransactionInput{{PrevOutputHash: prevHash, Signature: sig}},
				Outputs: []chain.TransactionOutput{chain.NewTransactionOutput(value, to)},
			}

			conn, err := net.Dial("tcp", nodeAddr)
			if err != nil {
				return fmt.Errorf("dial node %s: %w", nodeAddr, err)
			}
			defer conn.Close()
			codec := wire.NewCodec(conn)
			if err := codec.WriteMessage(wire.NewTransactionMessage(tx)); err != nil {
				return fmt.Errorf("submit transaction: %w", err)
			}
			fmt.Printf("submitted transaction %s\n", tx.Hash())
			return nil
		},
	}
}
