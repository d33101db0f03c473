package strategytest

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// Role names the harness generates keys for. Governance is not listed: on a
// fork it is the live multisig, impersonated rather than keyed.
var roleNames = []string{"User", "Rewards", "Guardian", "Management", "Strategist", "Keeper"}

type AccountInfo struct {
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
	Nonce      uint64
}

// HarnessTestInfo tracks the named accounts and contracts of one test run.
// Keys are generated deterministically from keySeed so failures reproduce.
type HarnessTestInfo struct {
	T        *testing.T
	Signer   types.Signer
	Accounts map[string]*AccountInfo
	keySeed  int64
}

func NewHarnessTestInfo(t *testing.T, signer types.Signer, keySeed int64) *HarnessTestInfo {
	return &HarnessTestInfo{
		T:        t,
		Signer:   signer,
		Accounts: make(map[string]*AccountInfo),
		keySeed:  keySeed,
	}
}

func (h *HarnessTestInfo) GenerateAccount(name string) {
	h.T.Helper()

	seedBytes := common.BigToHash(big.NewInt(h.keySeed)).Bytes()
	seedBytes = append(seedBytes, seedBytes...)
	seedReader := bytes.NewReader(seedBytes)
	privateKey, err := ecdsa.GenerateKey(crypto.S256(), seedReader)
	if err != nil {
		h.T.Fatal(err)
	}
	h.keySeed += 1
	h.Accounts[name] = &AccountInfo{
		PrivateKey: privateKey,
		Address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		Nonce:      0,
	}
	log.Info("New Key ", "name", name, "Address", h.Accounts[name].Address)
}

func (h *HarnessTestInfo) GenerateRoles() {
	h.T.Helper()
	for _, name := range roleNames {
		h.GenerateAccount(name)
	}
}

// SetContract registers a keyless named address: a deployed contract or a
// live account the node impersonates for us.
func (h *HarnessTestInfo) SetContract(name string, address common.Address) {
	h.Accounts[name] = &AccountInfo{
		PrivateKey: nil,
		Address:    address,
	}
}

func (h *HarnessTestInfo) GetAddress(name string) common.Address {
	h.T.Helper()
	info := h.Accounts[name]
	if info == nil {
		h.T.Fatal("not found account: ", name)
	}
	return info.Address
}

func (h *HarnessTestInfo) GetInfoWithPrivKey(name string) *AccountInfo {
	h.T.Helper()
	info := h.Accounts[name]
	if info == nil {
		h.T.Fatal("not found account: ", name)
	}
	if info.PrivateKey == nil {
		h.T.Fatal("no private key for account: ", name)
	}
	return info
}

func (h *HarnessTestInfo) GetDefaultTransactOpts(name string) bind.TransactOpts {
	h.T.Helper()
	info := h.GetInfoWithPrivKey(name)
	return bind.TransactOpts{
		From:     info.Address,
		GasLimit: 4000000,
		Signer: func(address common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if address != info.Address {
				return nil, errors.New("bad address")
			}
			signature, err := crypto.Sign(h.Signer.Hash(tx).Bytes(), info.PrivateKey)
			if err != nil {
				return nil, err
			}
			info.Nonce += 1 // we don't set Nonce, but try to keep track..
			return tx.WithSignature(h.Signer, signature)
		},
	}
}
