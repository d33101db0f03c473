package strategytest

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"

	"github.com/therealmonoloco/liquity-eth-trove-strategy/contracts"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/deployer"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/fork"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/bigmath"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/colors"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/ethutil"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/testhelpers"
	"github.com/therealmonoloco/liquity-eth-trove-strategy/util/testhelpers/env"
)

const (
	// whole LUSD tokens moved from the whale to the user during setup
	fundedWholeTokens = 10_000

	// relative tolerance for balance assertions, in parts per million
	tolerancePPM = 10
)

// harnessBuilder assembles a fork-backed test environment: named actors,
// whale funding, and a freshly deployed vault + strategy. Every piece of
// fork state it creates is rolled back in t.Cleanup through evm_revert.
type harnessBuilder struct {
	ctx          context.Context
	clientConfig fork.ClientConfig
	artifactsDir string
	fundTokens   int64
}

func newHarnessBuilder(ctx context.Context) *harnessBuilder {
	return &harnessBuilder{
		ctx:          ctx,
		clientConfig: fork.DefaultClientConfig,
		artifactsDir: env.ArtifactsDir(),
		fundTokens:   fundedWholeTokens,
	}
}

type strategyHarness struct {
	t      *testing.T
	ctx    context.Context
	Client *fork.Client
	Info   *HarnessTestInfo

	Gov      deployer.Transactor
	Want     *contracts.ERC20
	Vault    *contracts.Vault
	Strategy *contracts.Strategy

	// Amount is the user's funded want balance, in token units.
	Amount *big.Int
}

func (b *harnessBuilder) Build(t *testing.T) *strategyHarness {
	t.Helper()
	url := env.ForkURL()
	if url == "" {
		t.Skip("TEST_FORK_URL not set")
	}
	testhelpers.InitTestLog(t, log.LvlInfo)
	ctx := b.ctx

	b.clientConfig.URL = url
	client := fork.NewClient(func() *fork.ClientConfig { return &b.clientConfig })
	Require(t, client.Start(ctx))
	t.Cleanup(client.Close)
	colors.PrintGrey("connected to fork node at ", url)

	// Snapshot before touching any state. Cleanups run LIFO, so the revert
	// registered here undoes everything the rest of the setup does.
	snapshot, err := client.Snapshot(ctx)
	Require(t, err)
	t.Cleanup(func() {
		Require(t, client.RevertTo(ctx, snapshot))
	})

	chainId, err := client.Eth().ChainID(ctx)
	Require(t, err)
	info := NewHarnessTestInfo(t, types.LatestSignerForChainID(chainId), 0)
	info.GenerateRoles()
	info.SetContract("Gov", deployer.Governance)
	info.SetContract("Whale", deployer.LUSDWhale)

	h := &strategyHarness{
		t:      t,
		ctx:    ctx,
		Client: client,
		Info:   info,
		Gov:    &deployer.ImpersonatedTransactor{Client: client, Account: deployer.Governance},
	}

	h.impersonate(deployer.Governance)
	h.impersonate(deployer.LUSDWhale)

	etherBalance := new(big.Int).Mul(big.NewInt(100), big.NewInt(params.Ether))
	for _, name := range append([]string{"Gov", "Whale"}, roleNames...) {
		Require(t, client.SetBalance(ctx, info.GetAddress(name), etherBalance))
	}

	want, err := contracts.NewERC20(deployer.LUSD, client.Eth())
	Require(t, err)
	h.Want = want
	decimals, err := want.Decimals(h.callOpts())
	Require(t, err)
	h.Amount = bigmath.InTokenUnits(b.fundTokens, decimals)
	_, err = client.TransactFrom(ctx, deployer.LUSDWhale, want.Address(), want.ABI(),
		"transfer", info.GetAddress("User"), h.Amount)
	Require(t, err, "funding user from whale")

	vaultArtifact, err := contracts.LoadArtifactDir(b.artifactsDir, "Vault")
	Require(t, err)
	strategyArtifact, err := contracts.LoadArtifactDir(b.artifactsDir, "Strategy")
	Require(t, err)

	guardianOpts := info.GetDefaultTransactOpts("Guardian")
	guardianOpts.Context = ctx
	vaultParams := deployer.VaultParams{
		Token:      deployer.LUSD,
		Governance: deployer.Governance,
		Rewards:    info.GetAddress("Rewards"),
		Guardian:   info.GetAddress("Guardian"),
		Management: info.GetAddress("Management"),
	}
	vault, err := deployer.DeployVault(ctx, client.Eth(), &guardianOpts, vaultArtifact, vaultParams)
	Require(t, err)
	Require(t, deployer.ConfigureVault(ctx, vault, h.Gov, vaultParams))
	h.Vault = vault
	info.SetContract("Vault", vault.Address())
	colors.PrintBlue("deployed vault at ", vault.Address().Hex())

	strategistOpts := info.GetDefaultTransactOpts("Strategist")
	strategistOpts.Context = ctx
	strategy, err := deployer.DeployStrategy(ctx, client.Eth(), &strategistOpts, strategyArtifact,
		vault.Address(), deployer.YVaultLUSD)
	Require(t, err)
	Require(t, deployer.ConfigureStrategy(ctx, client.Eth(), &strategistOpts, h.Gov, vault, strategy,
		deployer.DefaultStrategyConfig(info.GetAddress("Keeper"))))
	h.Strategy = strategy
	info.SetContract("Strategy", strategy.Address())
	colors.PrintBlue("deployed strategy at ", strategy.Address().Hex())

	colors.PrintMint("harness ready, user holds ", h.Amount, " want")
	return h
}

func (h *strategyHarness) callOpts() *bind.CallOpts {
	return &bind.CallOpts{Context: h.ctx}
}

func (h *strategyHarness) transactOpts(name string) *bind.TransactOpts {
	h.t.Helper()
	opts := h.Info.GetDefaultTransactOpts(name)
	opts.Context = h.ctx
	return &opts
}

func (h *strategyHarness) impersonate(account common.Address) {
	h.t.Helper()
	Require(h.t, h.Client.ImpersonateAccount(h.ctx, account))
	h.t.Cleanup(func() {
		Require(h.t, h.Client.StopImpersonatingAccount(h.ctx, account))
	})
}

// DepositWant moves the user's want into the vault: approve then deposit.
func (h *strategyHarness) DepositWant(amount *big.Int) {
	h.t.Helper()
	userOpts := h.transactOpts("User")
	tx, err := h.Want.Approve(userOpts, h.Vault.Address(), amount)
	Require(h.t, err)
	_, err = ethutil.EnsureTxSucceeded(h.ctx, h.Client.Eth(), tx)
	Require(h.t, err, "approving vault")
	tx, err = h.Vault.Deposit(userOpts, amount)
	Require(h.t, err)
	_, err = ethutil.EnsureTxSucceeded(h.ctx, h.Client.Eth(), tx)
	Require(h.t, err, "depositing into vault")
}

// Harvest runs a keeper harvest after nudging chain time forward one second,
// the way the keeper would between reports.
func (h *strategyHarness) Harvest() {
	h.t.Helper()
	Require(h.t, h.Client.SleepAndMine(h.ctx, time.Second))
	tx, err := h.Strategy.Harvest(h.transactOpts("Keeper"))
	Require(h.t, err)
	_, err = ethutil.EnsureTxSucceeded(h.ctx, h.Client.Eth(), tx)
	Require(h.t, err, "harvesting")
}

// DisableHealthCheck lets a harvest report outsized profit, which the health
// check would otherwise reject as out of band.
func (h *strategyHarness) DisableHealthCheck() {
	h.t.Helper()
	_, err := h.Gov.Transact(h.ctx, h.Strategy.Address(), h.Strategy.ABI(), "setDoHealthCheck", false)
	Require(h.t, err, "disabling health check")
}

// AirdropWant sends want straight to the strategy from the whale, bypassing
// the vault accounting.
func (h *strategyHarness) AirdropWant(amount *big.Int) {
	h.t.Helper()
	_, err := h.Client.TransactFrom(h.ctx, deployer.LUSDWhale, h.Want.Address(), h.Want.ABI(),
		"transfer", h.Strategy.Address(), amount)
	Require(h.t, err, "airdropping want to strategy")
}

// AirdropToken sends an arbitrary token to the strategy from its whale,
// impersonating and seeding the whale on the fly.
func (h *strategyHarness) AirdropToken(token, whale common.Address, amount *big.Int) {
	h.t.Helper()
	h.impersonate(whale)
	etherBalance := new(big.Int).Mul(big.NewInt(10), big.NewInt(params.Ether))
	Require(h.t, h.Client.SetBalance(h.ctx, whale, etherBalance))
	erc20, err := contracts.NewERC20(token, h.Client.Eth())
	Require(h.t, err)
	_, err = h.Client.TransactFrom(h.ctx, whale, token, erc20.ABI(),
		"transfer", h.Strategy.Address(), amount)
	Require(h.t, err, "airdropping token to strategy")
}

// AirdropEther sends raw ether from the user to the strategy.
func (h *strategyHarness) AirdropEther(value *big.Int) {
	h.t.Helper()
	h.impersonate(h.Info.GetAddress("User"))
	_, err := h.Client.TransferFrom(h.ctx, h.Info.GetAddress("User"), h.Strategy.Address(), value)
	Require(h.t, err, "airdropping ether to strategy")
}

func (h *strategyHarness) EstimatedTotalAssets() *big.Int {
	h.t.Helper()
	assets, err := h.Strategy.EstimatedTotalAssets(h.callOpts())
	Require(h.t, err)
	return assets
}

func (h *strategyHarness) TotalGain() *big.Int {
	h.t.Helper()
	strategyParams, err := h.Vault.Strategies(h.callOpts(), h.Strategy.Address())
	Require(h.t, err)
	return strategyParams.TotalGain
}

func Require(t *testing.T, err error, text ...interface{}) {
	t.Helper()
	testhelpers.RequireImpl(t, err, text...)
}

func Fail(t *testing.T, printables ...interface{}) {
	t.Helper()
	testhelpers.FailImpl(t, printables...)
}
