package contracts

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/common"
)

func TestLoadArtifact(t *testing.T) {
	artifact, err := LoadArtifactDir("testdata", "Token")
	require.NoError(t, err)
	require.Equal(t, "Token", artifact.ContractName)
	require.NotEmpty(t, []byte(artifact.Bytecode))

	parsed, err := artifact.ParsedABI()
	require.NoError(t, err)
	require.Contains(t, parsed.Methods, "transfer")
	require.Contains(t, parsed.Methods, "balanceOf")
	require.Len(t, parsed.Constructor.Inputs, 1)
}

func TestLoadArtifactRejectsEmptyBytecode(t *testing.T) {
	_, err := LoadArtifactDir("testdata", "NoBytecode")
	require.ErrorContains(t, err, "no bytecode")
}

func TestLoadArtifactMissingFile(t *testing.T) {
	_, err := LoadArtifact(filepath.Join("testdata", "DoesNotExist.json"))
	require.Error(t, err)
}

func TestConstructorPacking(t *testing.T) {
	artifact, err := LoadArtifactDir("testdata", "Token")
	require.NoError(t, err)
	parsed, err := artifact.ParsedABI()
	require.NoError(t, err)

	packed, err := parsed.Pack("", common.Big256)
	require.NoError(t, err)
	// constructor args are appended raw after the bytecode
	require.Len(t, packed, 32)
}
