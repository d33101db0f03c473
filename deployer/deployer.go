package deployer

import (
	"context"
	"encoding/json"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"

	"github.com/pkg/errors"

	"github.com/therealmonoloco/liquity-eth-trove-strategy/contracts"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/bigmath"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/ethutil"
)

// VaultParams describes a vault deployment. Zero-value name and symbol
// keep the token's own metadata, as the upstream fixtures do.
type VaultParams struct {
	Token          common.Address
	Governance     common.Address
	Rewards        common.Address
	Guardian       common.Address
	Management     common.Address
	NameOverride   string
	SymbolOverride string
	DepositLimit   *big.Int
}

// StrategyConfig describes how a freshly deployed strategy is wired into
// its vault.
type StrategyConfig struct {
	Keeper            common.Address
	HealthCheck       common.Address
	DoHealthCheck     bool
	DebtRatio         *big.Int
	MinDebtPerHarvest *big.Int
	MaxDebtPerHarvest *big.Int
	PerformanceFee    *big.Int
}

// DefaultStrategyConfig mirrors the parameters the strategy is registered
// with upstream: full debt ratio, unbounded harvest debt, 10% performance
// fee, health checks on.
func DefaultStrategyConfig(keeper common.Address) StrategyConfig {
	return StrategyConfig{
		Keeper:            keeper,
		HealthCheck:       HealthCheck,
		DoHealthCheck:     true,
		DebtRatio:         big.NewInt(10_000),
		MinDebtPerHarvest: big.NewInt(0),
		MaxDebtPerHarvest: bigmath.MaxUint256,
		PerformanceFee:    big.NewInt(1_000),
	}
}

// DeployVault deploys and initializes a vault for the given want token.
// The guardian deploys, matching the upstream fixture.
func DeployVault(ctx context.Context, client *ethclient.Client, guardian *bind.TransactOpts, artifact *contracts.Artifact, params VaultParams) (*contracts.Vault, error) {
	address, tx, err := artifact.Deploy(guardian, client)
	if err != nil {
		return nil, err
	}
	if _, err := ethutil.EnsureTxSucceeded(ctx, client, tx); err != nil {
		return nil, errors.Wrap(err, "vault deployment")
	}
	log.Info("vault deployed", "address", address, "token", params.Token)

	vault, err := contracts.NewVault(address, client)
	if err != nil {
		return nil, err
	}
	tx, err = vault.Initialize(guardian, params.Token, params.Governance, params.Rewards, params.NameOverride, params.SymbolOverride, params.Guardian, params.Management)
	if err != nil {
		return nil, errors.Wrap(err, "vault initialize")
	}
	if _, err := ethutil.EnsureTxSucceeded(ctx, client, tx); err != nil {
		return nil, errors.Wrap(err, "vault initialize")
	}
	return vault, nil
}

// ConfigureVault performs the governance-only vault setup: deposit limit
// and management assignment.
func ConfigureVault(ctx context.Context, vault *contracts.Vault, gov Transactor, params VaultParams) error {
	limit := params.DepositLimit
	if limit == nil {
		limit = bigmath.MaxUint256
	}
	if _, err := gov.Transact(ctx, vault.Address(), vault.ABI(), "setDepositLimit", limit); err != nil {
		return errors.Wrap(err, "setDepositLimit")
	}
	if _, err := gov.Transact(ctx, vault.Address(), vault.ABI(), "setManagement", params.Management); err != nil {
		return errors.Wrap(err, "setManagement")
	}
	log.Info("vault configured", "vault", vault.Address(), "depositLimit", limit, "management", params.Management)
	return nil
}

// DeployStrategy deploys the trove strategy against its vault and the
// yVault it routes LUSD through.
func DeployStrategy(ctx context.Context, client *ethclient.Client, strategist *bind.TransactOpts, artifact *contracts.Artifact, vault, yVault common.Address) (*contracts.Strategy, error) {
	address, tx, err := artifact.Deploy(strategist, client, vault, yVault)
	if err != nil {
		return nil, err
	}
	if _, err := ethutil.EnsureTxSucceeded(ctx, client, tx); err != nil {
		return nil, errors.Wrap(err, "strategy deployment")
	}
	log.Info("strategy deployed", "address", address, "vault", vault, "yvault", yVault)
	return contracts.NewStrategy(address, client)
}

// ConfigureStrategy wires a deployed strategy into its vault: keeper
// assignment by the strategist, then health checking and vault
// registration by governance.
func ConfigureStrategy(ctx context.Context, client *ethclient.Client, strategist *bind.TransactOpts, gov Transactor, vault *contracts.Vault, strategy *contracts.Strategy, config StrategyConfig) error {
	tx, err := strategy.SetKeeper(strategist, config.Keeper)
	if err != nil {
		return errors.Wrap(err, "setKeeper")
	}
	if _, err := ethutil.EnsureTxSucceeded(ctx, client, tx); err != nil {
		return errors.Wrap(err, "setKeeper")
	}
	if config.DoHealthCheck {
		if (config.HealthCheck != common.Address{}) {
			if _, err := gov.Transact(ctx, strategy.Address(), strategy.ABI(), "setHealthCheck", config.HealthCheck); err != nil {
				return errors.Wrap(err, "setHealthCheck")
			}
		}
		if _, err := gov.Transact(ctx, strategy.Address(), strategy.ABI(), "setDoHealthCheck", true); err != nil {
			return errors.Wrap(err, "setDoHealthCheck")
		}
	}
	_, err = gov.Transact(ctx, vault.Address(), vault.ABI(), "addStrategy",
		strategy.Address(), config.DebtRatio, config.MinDebtPerHarvest, config.MaxDebtPerHarvest, config.PerformanceFee)
	if err != nil {
		return errors.Wrap(err, "addStrategy")
	}
	log.Info("strategy configured", "strategy", strategy.Address(), "keeper", config.Keeper, "debtRatio", config.DebtRatio)
	return nil
}

// Deployment records the addresses of a finished deployment, written out
// by cmd/deploy and consumed by operators pointing tooling at the fork.
type Deployment struct {
	Token    common.Address `json:"token"`
	YVault   common.Address `json:"yvault"`
	Vault    common.Address `json:"vault"`
	Strategy common.Address `json:"strategy"`
}

func (d *Deployment) WriteToFile(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func ReadDeploymentFile(path string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var deployment Deployment
	if err := json.Unmarshal(data, &deployment); err != nil {
		return nil, errors.Wrapf(err, "parsing deployment file %s", path)
	}
	return &deployment, nil
}
