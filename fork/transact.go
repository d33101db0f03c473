package fork

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pkg/errors"
)

// WaitForReceipt polls for the receipt of a transaction submitted through
// the node's own signer, where no signed *types.Transaction exists locally.
// Only not-found keeps the poll going; any other error is returned.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, errors.Wrapf(err, "waiting for receipt of tx %v", hash)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// TransactFrom packs a contract call, submits it from an impersonated
// account and waits for it to be mined. It fails if the call reverts.
func (c *Client) TransactFrom(ctx context.Context, from common.Address, contract common.Address, contractABI *abi.ABI, method string, args ...interface{}) (*types.Receipt, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "packing %s", method)
	}
	hash, err := c.SendTransactionFrom(ctx, from, &contract, nil, data)
	if err != nil {
		return nil, errors.Wrapf(err, "sending %s from %v", method, from)
	}
	receipt, err := c.WaitForReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, errors.Errorf("%s from %v reverted (tx %v)", method, from, hash)
	}
	return receipt, nil
}

// TransferFrom moves raw ether from an impersonated account.
func (c *Client) TransferFrom(ctx context.Context, from, to common.Address, value *big.Int) (*types.Receipt, error) {
	hash, err := c.SendTransactionFrom(ctx, from, &to, value, nil)
	if err != nil {
		return nil, err
	}
	receipt, err := c.WaitForReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, errors.Errorf("ether transfer from %v reverted", from)
	}
	return receipt, nil
}
