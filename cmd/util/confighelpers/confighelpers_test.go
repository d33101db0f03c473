package confighelpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	flag "github.com/spf13/pflag"
)

type testConfig struct {
	URL     string         `koanf:"url"`
	Timeout time.Duration  `koanf:"timeout"`
	Nested  nestedConfig   `koanf:"nested"`
	Conf    testConfConfig `koanf:"conf"`
}

type nestedConfig struct {
	Retries uint `koanf:"retries"`
}

// mirrors the conf options every command registers; EndCommonParse rejects
// unknown keys, so the struct has to account for them
type testConfConfig struct {
	Dump      bool     `koanf:"dump"`
	EnvPrefix string   `koanf:"env-prefix"`
	File      []string `koanf:"file"`
	String    string   `koanf:"string"`
}

func testFlagSet() *flag.FlagSet {
	f := flag.NewFlagSet("", flag.ContinueOnError)
	f.String("url", "http://127.0.0.1:8545", "node url")
	f.Duration("timeout", time.Minute, "timeout")
	f.Uint("nested.retries", 0, "retries")
	f.Bool("conf.dump", false, "dump config")
	f.String("conf.env-prefix", "", "env prefix")
	f.StringSlice("conf.file", nil, "config file")
	f.String("conf.string", "", "config string")
	return f
}

func parse(t *testing.T, args []string) testConfig {
	t.Helper()
	k, err := BeginCommonParse(testFlagSet(), args)
	require.NoError(t, err)
	var config testConfig
	require.NoError(t, EndCommonParse(k, &config))
	return config
}

func TestCommandLineParse(t *testing.T) {
	config := parse(t, []string{"--url", "http://fork:8545", "--nested.retries", "3"})
	require.Equal(t, "http://fork:8545", config.URL)
	require.Equal(t, time.Minute, config.Timeout)
	require.Equal(t, uint(3), config.Nested.Retries)
}

func TestConfigStringParse(t *testing.T) {
	config := parse(t, []string{"--conf.string", `{"timeout":"30s"}`})
	require.Equal(t, 30*time.Second, config.Timeout)
}

func TestCommandLineOverridesConfigString(t *testing.T) {
	config := parse(t, []string{"--conf.string", `{"url":"http://a"}`, "--url", "http://b"})
	require.Equal(t, "http://b", config.URL)
}

func TestEnvironmentParse(t *testing.T) {
	t.Setenv("HARNESS_NESTED__RETRIES", "7")
	config := parse(t, []string{"--conf.env-prefix", "HARNESS"})
	require.Equal(t, uint(7), config.Nested.Retries)
}

func TestRejectsPositionalArguments(t *testing.T) {
	_, err := BeginCommonParse(testFlagSet(), []string{"extra"})
	require.Error(t, err)
}
