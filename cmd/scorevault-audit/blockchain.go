package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// wrapper over rpcNeo providing blockchain services needed for current command.
// All reads are done at the state of the same block.
type remoteBlockchain struct {
	rpc *rpcclient.Client
	inv *invoker.Invoker

	height uint32
}

// newRemoteBlockChain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection. Connection and all requests are done within given
// timeout.
func newRemoteBlockChain(ctx context.Context, blockChainRPCEndpoint string, timeout time.Duration) (*remoteBlockchain, error) {
	c, err := rpcclient.New(ctx, blockChainRPCEndpoint, rpcclient.Options{
		DialTimeout:    timeout,
		RequestTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	nLatestBlock, err := c.GetBlockCount()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("get number of the latest block: %w", err)
	}

	// state root of the latest block may be not yet computed
	height := nLatestBlock - 1
	if height > 0 {
		height--
	}

	return &remoteBlockchain{
		rpc:    c,
		inv:    invoker.NewHistoricAtHeight(height, c, nil),
		height: height,
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

func (x *remoteBlockchain) getContractState(contract util.Uint160) (state.Contract, error) {
	contractState, err := x.rpc.GetContractStateByHash(contract)
	if err != nil {
		return state.Contract{}, fmt.Errorf("get state of the requested contract by hash '%s': %w", contract.StringLE(), err)
	}

	return *contractState, nil
}

// iterateContractStorage iterates over all storage items of the Neo smart
// contract referenced by given address and passes them into f.
// iterateContractStorage breaks on any f's error and returns it.
func (x *remoteBlockchain) iterateContractStorage(contract util.Uint160, f func(key, value []byte) error) error {
	stateRoot, err := x.rpc.GetStateRootByHeight(x.height)
	if err != nil {
		return fmt.Errorf("get state root at block #%d: %w", x.height, err)
	}

	var start []byte

	for {
		res, err := x.rpc.FindStates(stateRoot.Root, contract, nil, start, nil)
		if err != nil {
			return fmt.Errorf("get historical storage items of the requested contract at state root '%s': %w", stateRoot.Root, err)
		}

		for i := range res.Results {
			err = f(res.Results[i].Key, res.Results[i].Value)
			if err != nil {
				return err
			}
		}

		if !res.Truncated {
			return nil
		}

		start = res.Results[len(res.Results)-1].Key
	}
}
