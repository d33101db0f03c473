package confighelpers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/mitchellh/mapstructure"
	flag "github.com/spf13/pflag"
)

func ApplyOverrides(f *flag.FlagSet, k *koanf.Koanf) error {
	// Apply command line options and environment variables
	if err := applyOverrideOverrides(f, k); err != nil {
		return err
	}

	// Load configuration file from disk if provided
	for _, path := range k.Strings("conf.file") {
		if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
			return fmt.Errorf("error loading config file %s: %w", path, err)
		}
		// Command line overrides config file
		if err := applyOverrideOverrides(f, k); err != nil {
			return err
		}
	}

	// Load configuration string if provided
	if confString := k.String("conf.string"); confString != "" {
		if err := k.Load(rawbytes.Provider([]byte(confString)), koanfjson.Parser()); err != nil {
			return fmt.Errorf("error loading config string: %w", err)
		}
		// Command line overrides config string
		if err := applyOverrideOverrides(f, k); err != nil {
			return err
		}
	}
	return nil
}

// applyOverrideOverrides for configs that need to change how other configs are parsed
func applyOverrideOverrides(f *flag.FlagSet, k *koanf.Koanf) error {
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return fmt.Errorf("error loading command line config: %w", err)
	}

	// Environment variables may be set after command line flags were parsed
	if envPrefix := k.String("conf.env-prefix"); envPrefix != "" {
		if err := k.Load(env.Provider(envPrefix+"_", ".", func(s string) string {
			// FOO__BAR_BAZ -> foo.bar-baz
			lowerName := strings.ToLower(s)
			noPrefix := strings.TrimPrefix(lowerName, strings.ToLower(envPrefix)+"_")
			split := strings.Split(noPrefix, "__")
			return strings.ReplaceAll(strings.Join(split, "."), "_", "-")
		}), nil); err != nil {
			return fmt.Errorf("error loading environment variables: %w", err)
		}
		// Command line overrides environment variables
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return fmt.Errorf("error loading command line config: %w", err)
		}
	}
	return nil
}

func BeginCommonParse(f *flag.FlagSet, args []string) (*koanf.Koanf, error) {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			f.PrintDefaults()
			os.Exit(0)
		}
	}

	if err := f.Parse(args); err != nil {
		return nil, err
	}

	if f.NArg() != 0 {
		// Unexpected number of parameters
		return nil, errors.New("unexpected number of parameters")
	}

	var k = koanf.New(".")

	// Initial application of command line parameters and environment variables so other methods can be applied
	if err := ApplyOverrides(f, k); err != nil {
		return nil, err
	}

	return k, nil
}

func EndCommonParse(k *koanf.Koanf, config interface{}) error {
	decoderConfig := mapstructure.DecoderConfig{
		ErrorUnused: true,

		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc()),
		Metadata:         nil,
		Result:           config,
		WeaklyTypedInput: true,
	}
	err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{DecoderConfig: &decoderConfig})
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	return nil
}

// DumpConfig prints the currently active configuration and exits. The
// override fields let callers blank out secrets before printing.
func DumpConfig(k *koanf.Koanf, extraOverrideFields map[string]interface{}) error {
	overrideFields := map[string]interface{}{"conf.dump": false}

	for field, value := range extraOverrideFields {
		overrideFields[field] = value
	}

	if err := k.Load(confmap.Provider(overrideFields, "."), nil); err != nil {
		return fmt.Errorf("error removing extra parameters before dump: %w", err)
	}

	c, err := k.Marshal(koanfjson.Parser())
	if err != nil {
		return fmt.Errorf("unable to marshal config file to JSON: %w", err)
	}

	fmt.Println(string(c))
	os.Exit(0)
	return nil
}
