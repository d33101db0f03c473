package contracts

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pkg/errors"
)

// Artifact is a compiled contract build in the brownie/hardhat JSON layout.
// The vault and strategy builds are external inputs to the harness; only
// their ABI and creation bytecode matter here.
type Artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     hexutil.Bytes   `json:"bytecode"`
}

func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading artifact %s", path)
	}
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, errors.Wrapf(err, "parsing artifact %s", path)
	}
	if len(artifact.ABI) == 0 {
		return nil, errors.Errorf("artifact %s has no abi", path)
	}
	if len(artifact.Bytecode) == 0 {
		return nil, errors.Errorf("artifact %s has no bytecode", path)
	}
	return &artifact, nil
}

// LoadArtifactDir loads <dir>/<name>.json.
func LoadArtifactDir(dir, name string) (*Artifact, error) {
	return LoadArtifact(filepath.Join(dir, name+".json"))
}

func (a *Artifact) ParsedABI() (abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(a.ABI))
	if err != nil {
		return abi.ABI{}, errors.Wrapf(err, "parsing abi of %s", a.ContractName)
	}
	return parsed, nil
}

// Deploy submits the creation transaction with the given constructor
// arguments and returns the future contract address. Callers wait for the
// deployment themselves, matching how other transactions are handled.
func (a *Artifact) Deploy(auth *bind.TransactOpts, backend bind.ContractBackend, args ...interface{}) (common.Address, *types.Transaction, error) {
	parsed, err := a.ParsedABI()
	if err != nil {
		return common.Address{}, nil, err
	}
	address, tx, _, err := bind.DeployContract(auth, parsed, []byte(a.Bytecode), backend, args...)
	if err != nil {
		return common.Address{}, nil, errors.Wrapf(err, "deploying %s", a.ContractName)
	}
	return address, tx, nil
}
