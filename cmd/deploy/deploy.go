package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/therealmonoloco/liquity-eth-trove-strategy/cmd/genericconf"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/cmd/util/confighelpers"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/contracts"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/deployer"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/fork"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/retry"
)

type DeployConfig struct {
	Conf        genericconf.ConfConfig        `koanf:"conf"`
	Node        fork.ClientConfig             `koanf:"node"`
	LogLevel    string                        `koanf:"log-level"`
	LogType     string                        `koanf:"log-type"`
	FileLogging genericconf.FileLoggingConfig `koanf:"file-logging"`

	// PrivateKey signs as both guardian and strategist. Governance actions
	// go through impersonation of the governance address instead.
	PrivateKey string `koanf:"private-key"`

	Artifacts  string `koanf:"artifacts"`
	Token      string `koanf:"token"`
	YVault     string `koanf:"yvault"`
	Governance string `koanf:"governance"`
	Rewards    string `koanf:"rewards"`
	Management string `koanf:"management"`
	Keeper     string `koanf:"keeper"`

	Deployment string `koanf:"deployment"`
}

var DeployConfigDefault = DeployConfig{
	Conf:        genericconf.ConfConfigDefault,
	Node:        fork.DefaultClientConfig,
	LogLevel:    "info",
	LogType:     "plaintext",
	FileLogging: genericconf.DefaultFileLoggingConfig,
	Artifacts:   "build",
	Token:       deployer.LUSD.Hex(),
	YVault:      deployer.YVaultLUSD.Hex(),
	Governance:  deployer.Governance.Hex(),
	Deployment:  "deploy.json",
}

func parseDeployConfig(args []string) (*DeployConfig, error) {
	f := flag.NewFlagSet("deploy", flag.ContinueOnError)
	genericconf.ConfConfigAddOptions("conf", f)
	fork.ClientConfigAddOptions("node", f, &DeployConfigDefault.Node)
	f.String("log-level", DeployConfigDefault.LogLevel, "log level, valid values are \"trace\", \"debug\", \"info\", \"warn\", \"error\", \"crit\", or a legacy numeric verbosity (0-5)")
	f.String("log-type", DeployConfigDefault.LogType, "log type (plaintext or json)")
	genericconf.FileLoggingConfigAddOptions("file-logging", f)
	f.String("private-key", "", "hex-encoded private key of the deployer (guardian and strategist)")
	f.String("artifacts", DeployConfigDefault.Artifacts, "directory holding the Vault.json and Strategy.json build artifacts")
	f.String("token", DeployConfigDefault.Token, "want token address")
	f.String("yvault", DeployConfigDefault.YVault, "address of the vault the strategy routes want through")
	f.String("governance", DeployConfigDefault.Governance, "governance address (impersonated on the fork)")
	f.String("rewards", "", "rewards address (defaults to the deployer)")
	f.String("management", "", "management address (defaults to the deployer)")
	f.String("keeper", "", "keeper address (defaults to the deployer)")
	f.String("deployment", DeployConfigDefault.Deployment, "file to write the deployed addresses to")

	k, err := confighelpers.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var config DeployConfig
	if err := confighelpers.EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	if config.Conf.Dump {
		err = confighelpers.DumpConfig(k, map[string]interface{}{
			"private-key": "",
		})
		if err != nil {
			return nil, errors.Wrap(err, "error removing extra parameters before dump")
		}
	}
	if err := config.Node.Validate(); err != nil {
		return nil, err
	}
	if config.PrivateKey == "" {
		return nil, errors.New("--private-key is required")
	}
	return &config, nil
}

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, errors.Errorf("invalid %s address %q", name, value)
	}
	return common.HexToAddress(value), nil
}

func addressOrDefault(name, value string, fallback common.Address) (common.Address, error) {
	if value == "" {
		return fallback, nil
	}
	return parseAddress(name, value)
}

func mainImpl() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config, err := parseDeployConfig(os.Args[1:])
	if err != nil {
		return err
	}
	logLevel, err := genericconf.ToSlogLevel(config.LogLevel)
	if err != nil {
		return err
	}
	if err := genericconf.InitLog(config.LogType, logLevel, &config.FileLogging); err != nil {
		return err
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(config.PrivateKey, "0x"))
	if err != nil {
		return errors.Wrap(err, "invalid private key")
	}
	deployerAddress := crypto.PubkeyToAddress(privateKey.PublicKey)

	token, err := parseAddress("token", config.Token)
	if err != nil {
		return err
	}
	yVault, err := parseAddress("yvault", config.YVault)
	if err != nil {
		return err
	}
	governance, err := parseAddress("governance", config.Governance)
	if err != nil {
		return err
	}
	rewards, err := addressOrDefault("rewards", config.Rewards, deployerAddress)
	if err != nil {
		return err
	}
	management, err := addressOrDefault("management", config.Management, deployerAddress)
	if err != nil {
		return err
	}
	keeper, err := addressOrDefault("keeper", config.Keeper, deployerAddress)
	if err != nil {
		return err
	}

	client := fork.NewClient(func() *fork.ClientConfig { return &config.Node })
	if err := client.Start(ctx); err != nil {
		return errors.Wrap(err, "connecting to fork node")
	}
	defer client.Close()

	// a freshly started fork node can briefly error while it warms up
	chainId, err := retry.UntilSucceedsWithInterval(ctx, func() (*big.Int, error) {
		return client.Eth().ChainID(ctx)
	}, time.Second)
	if err != nil {
		return errors.Wrap(err, "reading chain id")
	}
	opts, err := bind.NewKeyedTransactorWithChainID(privateKey, chainId)
	if err != nil {
		return err
	}
	opts.Context = ctx

	// seed ether so neither the deployer nor governance runs dry
	etherBalance := new(big.Int).Mul(big.NewInt(100), big.NewInt(params.Ether))
	if err := client.SetBalance(ctx, deployerAddress, etherBalance); err != nil {
		return errors.Wrap(err, "funding deployer")
	}
	if err := client.ImpersonateAccount(ctx, governance); err != nil {
		return errors.Wrap(err, "impersonating governance")
	}
	if err := client.SetBalance(ctx, governance, etherBalance); err != nil {
		return errors.Wrap(err, "funding governance")
	}
	gov := &deployer.ImpersonatedTransactor{Client: client, Account: governance}

	vaultArtifact, err := contracts.LoadArtifactDir(config.Artifacts, "Vault")
	if err != nil {
		return err
	}
	strategyArtifact, err := contracts.LoadArtifactDir(config.Artifacts, "Strategy")
	if err != nil {
		return err
	}

	vaultParams := deployer.VaultParams{
		Token:      token,
		Governance: governance,
		Rewards:    rewards,
		Guardian:   deployerAddress,
		Management: management,
	}
	vault, err := deployer.DeployVault(ctx, client.Eth(), opts, vaultArtifact, vaultParams)
	if err != nil {
		return err
	}
	if err := deployer.ConfigureVault(ctx, vault, gov, vaultParams); err != nil {
		return err
	}

	strategy, err := deployer.DeployStrategy(ctx, client.Eth(), opts, strategyArtifact, vault.Address(), yVault)
	if err != nil {
		return err
	}
	strategyConfig := deployer.DefaultStrategyConfig(keeper)
	if err := deployer.ConfigureStrategy(ctx, client.Eth(), opts, gov, vault, strategy, strategyConfig); err != nil {
		return err
	}

	deployment := deployer.Deployment{
		Token:    token,
		YVault:   yVault,
		Vault:    vault.Address(),
		Strategy: strategy.Address(),
	}
	if err := deployment.WriteToFile(config.Deployment); err != nil {
		return errors.Wrap(err, "writing deployment file")
	}
	log.Info("deployment complete", "vault", vault.Address(), "strategy", strategy.Address(), "file", config.Deployment)
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
