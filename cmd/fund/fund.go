package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/therealmonoloco/liquity-eth-trove-strategy/cmd/genericconf"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/cmd/util/confighelpers"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/contracts"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/deployer"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/fork"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/bigmath"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/retry"
)

type FundConfig struct {
	Conf        genericconf.ConfConfig        `koanf:"conf"`
	Node        fork.ClientConfig             `koanf:"node"`
	LogLevel    string                        `koanf:"log-level"`
	LogType     string                        `koanf:"log-type"`
	FileLogging genericconf.FileLoggingConfig `koanf:"file-logging"`

	Token     string `koanf:"token"`
	Whale     string `koanf:"whale"`
	Recipient string `koanf:"recipient"`
	Amount    int64  `koanf:"amount"`
	Ether     int64  `koanf:"ether"`
}

var FundConfigDefault = FundConfig{
	Conf:        genericconf.ConfConfigDefault,
	Node:        fork.DefaultClientConfig,
	LogLevel:    "info",
	LogType:     "plaintext",
	FileLogging: genericconf.DefaultFileLoggingConfig,
	Token:       deployer.LUSD.Hex(),
	Whale:       deployer.LUSDWhale.Hex(),
	Amount:      10_000,
	Ether:       100,
}

func parseFundConfig(args []string) (*FundConfig, error) {
	f := flag.NewFlagSet("fund", flag.ContinueOnError)
	genericconf.ConfConfigAddOptions("conf", f)
	fork.ClientConfigAddOptions("node", f, &FundConfigDefault.Node)
	f.String("log-level", FundConfigDefault.LogLevel, "log level, valid values are \"trace\", \"debug\", \"info\", \"warn\", \"error\", \"crit\", or a legacy numeric verbosity (0-5)")
	f.String("log-type", FundConfigDefault.LogType, "log type (plaintext or json)")
	genericconf.FileLoggingConfigAddOptions("file-logging", f)
	f.String("token", FundConfigDefault.Token, "token to transfer")
	f.String("whale", FundConfigDefault.Whale, "whale address to impersonate")
	f.String("recipient", "", "address to fund")
	f.Int64("amount", FundConfigDefault.Amount, "whole tokens to transfer (0 = skip token transfer)")
	f.Int64("ether", FundConfigDefault.Ether, "ether balance to seed the recipient with (0 = skip)")

	k, err := confighelpers.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var config FundConfig
	if err := confighelpers.EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	if config.Conf.Dump {
		if err := confighelpers.DumpConfig(k, nil); err != nil {
			return nil, errors.Wrap(err, "error removing extra parameters before dump")
		}
	}
	if err := config.Node.Validate(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(config.Recipient) {
		return nil, errors.Errorf("invalid recipient address %q", config.Recipient)
	}
	if !common.IsHexAddress(config.Token) {
		return nil, errors.Errorf("invalid token address %q", config.Token)
	}
	if !common.IsHexAddress(config.Whale) {
		return nil, errors.Errorf("invalid whale address %q", config.Whale)
	}
	return &config, nil
}

func mainImpl() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config, err := parseFundConfig(os.Args[1:])
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

	client := fork.NewClient(func() *fork.ClientConfig { return &config.Node })
	if err := client.Start(ctx); err != nil {
		return errors.Wrap(err, "connecting to fork node")
	}
	defer client.Close()

	recipient := common.HexToAddress(config.Recipient)
	whale := common.HexToAddress(config.Whale)
	tokenAddress := common.HexToAddress(config.Token)

	if config.Ether > 0 {
		balance := new(big.Int).Mul(big.NewInt(config.Ether), big.NewInt(params.Ether))
		if err := client.SetBalance(ctx, recipient, balance); err != nil {
			return errors.Wrap(err, "seeding recipient ether")
		}
		log.Info("ether balance seeded", "recipient", recipient, "ether", config.Ether)
	}

	if config.Amount > 0 {
		if err := client.ImpersonateAccount(ctx, whale); err != nil {
			return errors.Wrap(err, "impersonating whale")
		}
		defer func() {
			if err := client.StopImpersonatingAccount(ctx, whale); err != nil {
				log.Warn("failed to stop impersonating whale", "whale", whale, "err", err)
			}
		}()
		// the whale pays gas for the transfer
		gasBalance := new(big.Int).Mul(big.NewInt(10), big.NewInt(params.Ether))
		if err := client.SetBalance(ctx, whale, gasBalance); err != nil {
			return errors.Wrap(err, "seeding whale ether")
		}

		token, err := contracts.NewERC20(tokenAddress, client.Eth())
		if err != nil {
			return err
		}
		// state reads can transiently fail while the fork node backfills
		// from its upstream RPC
		decimals, err := retry.UntilSucceedsWithInterval(ctx, func() (uint8, error) {
			return token.Decimals(&bind.CallOpts{Context: ctx})
		}, time.Second)
		if err != nil {
			return errors.Wrap(err, "reading token decimals")
		}
		amount := bigmath.InTokenUnits(config.Amount, decimals)
		whaleBalance, err := token.BalanceOf(&bind.CallOpts{Context: ctx}, whale)
		if err != nil {
			return errors.Wrap(err, "reading whale balance")
		}
		if whaleBalance.Cmp(amount) < 0 {
			return errors.Errorf("whale %v holds %v, cannot transfer %v", whale, whaleBalance, amount)
		}
		if _, err := client.TransactFrom(ctx, whale, tokenAddress, token.ABI(), "transfer", recipient, amount); err != nil {
			return errors.Wrap(err, "transferring tokens")
		}
		symbol, err := token.Symbol(&bind.CallOpts{Context: ctx})
		if err != nil {
			symbol = tokenAddress.Hex()
		}
		log.Info("tokens transferred", "recipient", recipient, "amount", config.Amount, "token", symbol, "whale", whale)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
