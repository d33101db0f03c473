package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// VaultABI is the subset of the Yearn v2 vault interface the harness uses.
// The vault is vyper, so share decimals come back as uint256 and the
// strategies getter flattens its struct into nine outputs.
const VaultABI = `[
	{"type":"function","name":"initialize","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"governance","type":"address"},{"name":"rewards","type":"address"},{"name":"nameOverride","type":"string"},{"name":"symbolOverride","type":"string"},{"name":"guardian","type":"address"},{"name":"management","type":"address"}],"outputs":[]},
	{"type":"function","name":"setDepositLimit","stateMutability":"nonpayable","inputs":[{"name":"limit","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"setManagement","stateMutability":"nonpayable","inputs":[{"name":"management","type":"address"}],"outputs":[]},
	{"type":"function","name":"addStrategy","stateMutability":"nonpayable","inputs":[{"name":"strategy","type":"address"},{"name":"debtRatio","type":"uint256"},{"name":"minDebtPerHarvest","type":"uint256"},{"name":"maxDebtPerHarvest","type":"uint256"},{"name":"performanceFee","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"deposit","stateMutability":"nonpayable","inputs":[{"name":"_amount","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"maxShares","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"strategies","stateMutability":"view","inputs":[{"name":"arg0","type":"address"}],"outputs":[{"name":"performanceFee","type":"uint256"},{"name":"activation","type":"uint256"},{"name":"debtRatio","type":"uint256"},{"name":"minDebtPerHarvest","type":"uint256"},{"name":"maxDebtPerHarvest","type":"uint256"},{"name":"lastReport","type":"uint256"},{"name":"totalDebt","type":"uint256"},{"name":"totalGain","type":"uint256"},{"name":"totalLoss","type":"uint256"}]},
	{"type":"function","name":"totalAssets","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"pricePerShare","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"token","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"governance","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"management","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"guardian","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"rewards","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"depositLimit","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"arg0","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

// StrategyParams mirrors the vault's per-strategy accounting struct.
type StrategyParams struct {
	PerformanceFee    *big.Int
	Activation        *big.Int
	DebtRatio         *big.Int
	MinDebtPerHarvest *big.Int
	MaxDebtPerHarvest *big.Int
	LastReport        *big.Int
	TotalDebt         *big.Int
	TotalGain         *big.Int
	TotalLoss         *big.Int
}

type Vault struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

func NewVault(address common.Address, backend bind.ContractBackend) (*Vault, error) {
	parsed, err := abi.JSON(strings.NewReader(VaultABI))
	if err != nil {
		return nil, err
	}
	return &Vault{
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (v *Vault) Address() common.Address {
	return v.address
}

func (v *Vault) ABI() *abi.ABI {
	return &v.abi
}

func (v *Vault) Initialize(opts *bind.TransactOpts, token, governance, rewards common.Address, nameOverride, symbolOverride string, guardian, management common.Address) (*types.Transaction, error) {
	return v.contract.Transact(opts, "initialize", token, governance, rewards, nameOverride, symbolOverride, guardian, management)
}

func (v *Vault) SetDepositLimit(opts *bind.TransactOpts, limit *big.Int) (*types.Transaction, error) {
	return v.contract.Transact(opts, "setDepositLimit", limit)
}

func (v *Vault) SetManagement(opts *bind.TransactOpts, management common.Address) (*types.Transaction, error) {
	return v.contract.Transact(opts, "setManagement", management)
}

func (v *Vault) AddStrategy(opts *bind.TransactOpts, strategy common.Address, debtRatio, minDebtPerHarvest, maxDebtPerHarvest, performanceFee *big.Int) (*types.Transaction, error) {
	return v.contract.Transact(opts, "addStrategy", strategy, debtRatio, minDebtPerHarvest, maxDebtPerHarvest, performanceFee)
}

func (v *Vault) Deposit(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return v.contract.Transact(opts, "deposit", amount)
}

func (v *Vault) Withdraw(opts *bind.TransactOpts, maxShares *big.Int) (*types.Transaction, error) {
	return v.contract.Transact(opts, "withdraw", maxShares)
}

func (v *Vault) Strategies(opts *bind.CallOpts, strategy common.Address) (StrategyParams, error) {
	var out []interface{}
	if err := v.contract.Call(opts, &out, "strategies", strategy); err != nil {
		return StrategyParams{}, err
	}
	return StrategyParams{
		PerformanceFee:    abi.ConvertType(out[0], new(big.Int)).(*big.Int),
		Activation:        abi.ConvertType(out[1], new(big.Int)).(*big.Int),
		DebtRatio:         abi.ConvertType(out[2], new(big.Int)).(*big.Int),
		MinDebtPerHarvest: abi.ConvertType(out[3], new(big.Int)).(*big.Int),
		MaxDebtPerHarvest: abi.ConvertType(out[4], new(big.Int)).(*big.Int),
		LastReport:        abi.ConvertType(out[5], new(big.Int)).(*big.Int),
		TotalDebt:         abi.ConvertType(out[6], new(big.Int)).(*big.Int),
		TotalGain:         abi.ConvertType(out[7], new(big.Int)).(*big.Int),
		TotalLoss:         abi.ConvertType(out[8], new(big.Int)).(*big.Int),
	}, nil
}

func (v *Vault) TotalAssets(opts *bind.CallOpts) (*big.Int, error) {
	return v.callUint(opts, "totalAssets")
}

func (v *Vault) PricePerShare(opts *bind.CallOpts) (*big.Int, error) {
	return v.callUint(opts, "pricePerShare")
}

func (v *Vault) DepositLimit(opts *bind.CallOpts) (*big.Int, error) {
	return v.callUint(opts, "depositLimit")
}

func (v *Vault) Decimals(opts *bind.CallOpts) (*big.Int, error) {
	return v.callUint(opts, "decimals")
}

func (v *Vault) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []interface{}
	if err := v.contract.Call(opts, &out, "balanceOf", account); err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func (v *Vault) Token(opts *bind.CallOpts) (common.Address, error) {
	return v.callAddress(opts, "token")
}

func (v *Vault) Governance(opts *bind.CallOpts) (common.Address, error) {
	return v.callAddress(opts, "governance")
}

func (v *Vault) Management(opts *bind.CallOpts) (common.Address, error) {
	return v.callAddress(opts, "management")
}

func (v *Vault) Guardian(opts *bind.CallOpts) (common.Address, error) {
	return v.callAddress(opts, "guardian")
}

func (v *Vault) Rewards(opts *bind.CallOpts) (common.Address, error) {
	return v.callAddress(opts, "rewards")
}

func (v *Vault) callUint(opts *bind.CallOpts, method string) (*big.Int, error) {
	var out []interface{}
	if err := v.contract.Call(opts, &out, method); err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func (v *Vault) callAddress(opts *bind.CallOpts, method string) (common.Address, error) {
	var out []interface{}
	if err := v.contract.Call(opts, &out, method); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}
