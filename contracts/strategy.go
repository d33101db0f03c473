package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// StrategyABI is the subset of the BaseStrategy interface the harness uses.
const StrategyABI = `[
	{"type":"function","name":"setKeeper","stateMutability":"nonpayable","inputs":[{"name":"_keeper","type":"address"}],"outputs":[]},
	{"type":"function","name":"setHealthCheck","stateMutability":"nonpayable","inputs":[{"name":"_healthCheck","type":"address"}],"outputs":[]},
	{"type":"function","name":"setDoHealthCheck","stateMutability":"nonpayable","inputs":[{"name":"_doHealthCheck","type":"bool"}],"outputs":[]},
	{"type":"function","name":"harvest","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"harvestTrigger","stateMutability":"view","inputs":[{"name":"callCostInWei","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"estimatedTotalAssets","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"vault","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"want","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"keeper","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"strategist","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"healthCheck","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"doHealthCheck","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"event","name":"Harvested","anonymous":false,"inputs":[{"name":"profit","type":"uint256","indexed":false},{"name":"loss","type":"uint256","indexed":false},{"name":"debtPayment","type":"uint256","indexed":false},{"name":"debtOutstanding","type":"uint256","indexed":false}]}
]`

type Strategy struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

func NewStrategy(address common.Address, backend bind.ContractBackend) (*Strategy, error) {
	parsed, err := abi.JSON(strings.NewReader(StrategyABI))
	if err != nil {
		return nil, err
	}
	return &Strategy{
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (s *Strategy) Address() common.Address {
	return s.address
}

func (s *Strategy) ABI() *abi.ABI {
	return &s.abi
}

func (s *Strategy) SetKeeper(opts *bind.TransactOpts, keeper common.Address) (*types.Transaction, error) {
	return s.contract.Transact(opts, "setKeeper", keeper)
}

func (s *Strategy) SetHealthCheck(opts *bind.TransactOpts, healthCheck common.Address) (*types.Transaction, error) {
	return s.contract.Transact(opts, "setHealthCheck", healthCheck)
}

func (s *Strategy) SetDoHealthCheck(opts *bind.TransactOpts, doHealthCheck bool) (*types.Transaction, error) {
	return s.contract.Transact(opts, "setDoHealthCheck", doHealthCheck)
}

func (s *Strategy) Harvest(opts *bind.TransactOpts) (*types.Transaction, error) {
	return s.contract.Transact(opts, "harvest")
}

func (s *Strategy) HarvestTrigger(opts *bind.CallOpts, callCostInWei *big.Int) (bool, error) {
	var out []interface{}
	if err := s.contract.Call(opts, &out, "harvestTrigger", callCostInWei); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (s *Strategy) EstimatedTotalAssets(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	if err := s.contract.Call(opts, &out, "estimatedTotalAssets"); err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func (s *Strategy) Vault(opts *bind.CallOpts) (common.Address, error) {
	return s.callAddress(opts, "vault")
}

func (s *Strategy) Want(opts *bind.CallOpts) (common.Address, error) {
	return s.callAddress(opts, "want")
}

func (s *Strategy) Keeper(opts *bind.CallOpts) (common.Address, error) {
	return s.callAddress(opts, "keeper")
}

func (s *Strategy) Strategist(opts *bind.CallOpts) (common.Address, error) {
	return s.callAddress(opts, "strategist")
}

func (s *Strategy) HealthCheck(opts *bind.CallOpts) (common.Address, error) {
	return s.callAddress(opts, "healthCheck")
}

func (s *Strategy) DoHealthCheck(opts *bind.CallOpts) (bool, error) {
	var out []interface{}
	if err := s.contract.Call(opts, &out, "doHealthCheck"); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (s *Strategy) Name(opts *bind.CallOpts) (string, error) {
	var out []interface{}
	if err := s.contract.Call(opts, &out, "name"); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (s *Strategy) callAddress(opts *bind.CallOpts, method string) (common.Address, error) {
	var out []interface{}
	if err := s.contract.Call(opts, &out, method); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}
