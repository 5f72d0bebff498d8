package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/attestd/scorevault-contract/internal/audit"
	"github.com/attestd/scorevault-contract/rpc/scorevault"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	contractAddress := flag.String("contract", "", "ScoreVault contract address (LE hex)")
	timeout := flag.Duration("timeout", 15*time.Second, "Timeout of the RPC requests")

	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	switch {
	case *neoRPCEndpoint == "":
		logger.Fatal("missing Neo RPC endpoint")
	case *contractAddress == "":
		logger.Fatal("missing contract address")
	}

	contract, err := util.Uint160DecodeStringLE(*contractAddress)
	if err != nil {
		logger.Fatal("invalid contract address", zap.Error(err))
	}

	err = _audit(context.Background(), logger, *neoRPCEndpoint, contract, *timeout)
	if err != nil {
		logger.Fatal("audit failed", zap.Error(err))
	}

	logger.Info("ScoreVault contract storage is consistent")
}

func _audit(ctx context.Context, l *zap.Logger, neoBlockchainRPCEndpoint string, contract util.Uint160, timeout time.Duration) error {
	b, err := newRemoteBlockChain(ctx, neoBlockchainRPCEndpoint, timeout)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	l = l.With(zap.Stringer("contract", contract), zap.Uint32("height", b.height))

	ctr, err := b.getContractState(contract)
	if err != nil {
		return err
	}

	l.Info("contract found", zap.String("name", ctr.Manifest.Name), zap.Uint16("update counter", ctr.UpdateCounter))

	reader := scorevault.NewReader(b.inv, contract)

	version, err := reader.Version()
	if err != nil {
		return fmt.Errorf("get contract version: %w", err)
	}

	onChain, err := reader.GetStats()
	if err != nil {
		return fmt.Errorf("get contract statistics: %w", err)
	}

	var c audit.Collector

	err = b.iterateContractStorage(contract, c.Write)
	if err != nil {
		return fmt.Errorf("iterate contract storage: %w", err)
	}

	rep, err := c.Report()
	if err != nil {
		return err
	}

	if rep.Config == nil {
		l.Info("contract is not initialized", zap.Stringer("version", version))
		return nil
	}

	err = audit.CompareStats(rep.Stats, *onChain)
	if err != nil {
		return fmt.Errorf("statistics returned by the contract: %w", err)
	}

	l.Info("contract storage audited",
		zap.Stringer("version", version),
		zap.Int("records", rep.Records),
		zap.Int("credentials", rep.Credentials),
		zap.Int64("sequence", rep.Sequence),
		zap.Stringer("count", rep.Stats.Count),
		zap.Stringer("sum", rep.Stats.Sum),
	)

	return nil
}
