package ethutil

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// WaitForTx waits for a transaction to be mined and returns its receipt.
// It tries to subscribe to new heads for near-instant notification (requires
// a WebSocket connection). If subscriptions aren't supported (HTTP), it falls
// back to polling at the given interval.
func WaitForTx(ctx context.Context, client *ethclient.Client, tx *types.Transaction, pollInterval time.Duration) (*types.Receipt, error) {
	heads := make(chan *types.Header, 1)
	sub, subErr := client.SubscribeNewHead(ctx, heads)
	if subErr != nil {
		return pollForReceipt(ctx, client, tx, pollInterval)
	}
	defer sub.Unsubscribe()

	for {
		receipt, err := client.TransactionReceipt(ctx, tx.Hash())
		if err == nil {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err := <-sub.Err():
			if err != nil {
				return nil, errors.Wrap(err, "head subscription error while waiting for tx")
			}
			return nil, errors.New("head subscription closed unexpectedly")
		case <-heads:
		}
	}
}

func pollForReceipt(ctx context.Context, client *ethclient.Client, tx *types.Transaction, pollInterval time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := client.TransactionReceipt(ctx, tx.Hash())
		if err == nil {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// EnsureTxSucceeded waits for the transaction and fails if it reverted.
// A reverted transaction is re-executed as a call at its block to surface
// the revert reason.
func EnsureTxSucceeded(ctx context.Context, client *ethclient.Client, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := WaitForTx(ctx, client, tx, time.Second)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, errors.New("expected receipt")
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		from, err := client.TransactionSender(ctx, tx, receipt.BlockHash, receipt.TransactionIndex)
		if err != nil {
			return nil, errors.Wrap(err, "could not recover sender of reverted tx")
		}
		callMsg := ethereum.CallMsg{
			From:       from,
			To:         tx.To(),
			Gas:        tx.Gas(),
			GasPrice:   tx.GasPrice(),
			GasFeeCap:  tx.GasFeeCap(),
			GasTipCap:  tx.GasTipCap(),
			Value:      tx.Value(),
			Data:       tx.Data(),
			AccessList: tx.AccessList(),
		}
		_, err = client.CallContract(ctx, callMsg, receipt.BlockNumber)
		if err != nil {
			return nil, errors.Wrapf(err, "tx %v reverted", tx.Hash())
		}
		return nil, errors.Errorf("tx %v failed but call succeeded", tx.Hash())
	}
	return receipt, nil
}
