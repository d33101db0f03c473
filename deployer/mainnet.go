package deployer

import (
	"github.com/ethereum/go-ethereum/common"
)

// Fixed mainnet addresses the fork inherits. Whales are live accounts with
// deep balances that the harness impersonates to source test funds.
var (
	// Yearn governance multisig
	Governance = common.HexToAddress("0xFEB4acf3df3cDEA7399794D0869ef76A6EfAff52")

	// yearn CommonHealthCheck
	HealthCheck = common.HexToAddress("0xDDCea799fF1699e98EDF118e0629A974Df7DF012")

	LUSD      = common.HexToAddress("0x5f98805A4E8be255a32880FDeC7F6728C6568bA0")
	LUSDWhale = common.HexToAddress("0x31F8Cc382c9898b273eff4e0b7626a6987C846E8")

	WETH      = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	WETHWhale = common.HexToAddress("0x2F0b23f53734252Bda2277357e97e1517d6B042A")

	// yvLUSD, the live vault the strategy routes LUSD through
	YVaultLUSD = common.HexToAddress("0x378cb52b00F9D0921cb46dFc099CFf73b42419dC")

	LQTY = common.HexToAddress("0x6DEA81C8171D0bA574754EF6F8b412F2Ed88c54D")
	// LQTY staking holds a large share of the supply
	LQTYWhale = common.HexToAddress("0x4f9Fbb3f1E99B56e0Fe2892e623Ed36A76Fc605d")
)
