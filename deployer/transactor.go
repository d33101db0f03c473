package deployer

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/therealmonoloco/liquity-eth-trove-strategy/fork"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/ethutil"
)

// Transactor submits a contract call and waits for it to succeed.
// Governance calls come from a locally held key when the harness deployed
// its own governance, or from an impersonated live address on a fork.
type Transactor interface {
	Transact(ctx context.Context, to common.Address, contractABI *abi.ABI, method string, args ...interface{}) (*types.Receipt, error)
	From() common.Address
}

// KeyedTransactor signs with a local key.
type KeyedTransactor struct {
	Opts   *bind.TransactOpts
	Client *ethclient.Client
}

func (k *KeyedTransactor) Transact(ctx context.Context, to common.Address, contractABI *abi.ABI, method string, args ...interface{}) (*types.Receipt, error) {
	bound := bind.NewBoundContract(to, *contractABI, k.Client, k.Client, k.Client)
	tx, err := bound.Transact(k.Opts, method, args...)
	if err != nil {
		return nil, err
	}
	return ethutil.EnsureTxSucceeded(ctx, k.Client, tx)
}

func (k *KeyedTransactor) From() common.Address {
	return k.Opts.From
}

// ImpersonatedTransactor routes through the fork node's signer for
// addresses the harness holds no key for.
type ImpersonatedTransactor struct {
	Client  *fork.Client
	Account common.Address
}

func (i *ImpersonatedTransactor) Transact(ctx context.Context, to common.Address, contractABI *abi.ABI, method string, args ...interface{}) (*types.Receipt, error) {
	return i.Client.TransactFrom(ctx, i.Account, to, contractABI, method, args...)
}

func (i *ImpersonatedTransactor) From() common.Address {
	return i.Account
}
