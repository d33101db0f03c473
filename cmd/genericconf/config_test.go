package genericconf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/log"
)

func TestHandlerFromLogType(t *testing.T) {
	var buf bytes.Buffer

	handler, err := HandlerFromLogType("plaintext", &buf)
	require.NoError(t, err)
	logger := log.NewLogger(handler)
	logger.Info("vault deployed", "address", "0x01")
	require.Contains(t, buf.String(), "vault deployed")

	buf.Reset()
	handler, err = HandlerFromLogType("json", &buf)
	require.NoError(t, err)
	logger = log.NewLogger(handler)
	logger.Warn("whale balance low")
	require.Contains(t, buf.String(), `"whale balance low"`)

	_, err = HandlerFromLogType("yaml", &buf)
	require.Error(t, err)
}

func TestToSlogLevel(t *testing.T) {
	level, err := ToSlogLevel("info")
	require.NoError(t, err)
	require.Equal(t, log.LevelInfo, level)

	level, err = ToSlogLevel("trace")
	require.NoError(t, err)
	require.Equal(t, log.LevelTrace, level)

	// legacy numeric verbosities still parse
	level, err = ToSlogLevel("3")
	require.NoError(t, err)
	require.Equal(t, log.LevelInfo, level)

	level, err = ToSlogLevel("0")
	require.NoError(t, err)
	require.Equal(t, log.LevelCrit, level)

	_, err = ToSlogLevel("loud")
	require.Error(t, err)
}

func TestGlogVerbosityFilters(t *testing.T) {
	var buf bytes.Buffer
	handler, err := HandlerFromLogType("plaintext", &buf)
	require.NoError(t, err)
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(log.LevelInfo)
	logger := log.NewLogger(glogger)

	logger.Debug("below verbosity")
	logger.Info("at verbosity")
	require.NotContains(t, buf.String(), "below verbosity")
	require.Contains(t, buf.String(), "at verbosity")
}
