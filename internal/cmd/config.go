package cmd

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/openprobe/jaylink"
	"github.com/openprobe/jaylink/internal/configpaths"
	"github.com/openprobe/jaylink/internal/log"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands: the probe's raw
// configuration block and jaylinkctl's own configuration file.
type ConfigCommand struct {
	Read  ConfigRead  `cmd:"" help:"Dump the probe's raw configuration data"`
	Write ConfigWrite `cmd:"" help:"Write raw configuration data to the probe"`
	Init  ConfigInit  `cmd:"" help:"Generate a jaylinkctl configuration template"`
}

// ConfigRead dumps the raw configuration block of a probe.
type ConfigRead struct {
	Output string `help:"Write the raw bytes to this file instead of hex dumping to stdout" type:"path"`
}

func (c *ConfigRead) Run(cli *CLI, logger *slog.Logger, trace log.RawLogger) error {
	return withHandle(cli.Probe, logger, trace, func(h *jaylink.Handle) error {
		caps, err := h.GetCaps()
		if err != nil {
			return fmt.Errorf("read capabilities: %w", err)
		}
		if !caps.Has(jaylink.CapReadConfig) {
			return errors.New("probe does not support reading its configuration")
		}

		config, err := h.ReadRawConfig()
		if err != nil {
			return fmt.Errorf("read configuration: %w", err)
		}

		if c.Output != "" {
			return os.WriteFile(c.Output, config, 0o644)
		}
		fmt.Print(hex.Dump(config))
		return nil
	})
}

// ConfigWrite writes a raw configuration block to a probe.
type ConfigWrite struct {
	Input string `arg:"" help:"File holding the raw configuration bytes" type:"path"`
}

func (c *ConfigWrite) Run(cli *CLI, logger *slog.Logger, trace log.RawLogger) error {
	config, err := os.ReadFile(c.Input)
	if err != nil {
		return err
	}
	if len(config) != jaylink.ConfigSize {
		return fmt.Errorf("configuration must be exactly %d bytes, got %d",
			jaylink.ConfigSize, len(config))
	}

	return withHandle(cli.Probe, logger, trace, func(h *jaylink.Handle) error {
		caps, err := h.GetCaps()
		if err != nil {
			return fmt.Errorf("read capabilities: %w", err)
		}
		if !caps.Has(jaylink.CapWriteConfig) {
			return errors.New("probe does not support writing its configuration")
		}

		if err := h.WriteRawConfig(config); err != nil {
			return fmt.Errorf("write configuration: %w", err)
		}

		logger.Info("configuration written", "file", c.Input)
		return nil
	})
}

// ConfigInit scaffolds a jaylinkctl configuration file.
type ConfigInit struct {
	Format string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output string `help:"Destination file path (defaults to current directory)"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

// Run generates a configuration template dynamically via reflection of the
// flag structs and their tags.
func (c *ConfigInit) Run() error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	root := map[string]any{
		"log":   buildMapFromStruct(reflect.TypeOf(LogConfig{})),
		"probe": buildMapFromStruct(reflect.TypeOf(ProbeConfig{})),
	}

	dest := c.Output
	if dest == "" {
		dest = "jaylinkctl." + format
	}

	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(root, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(root)
	case "toml":
		data, err = toml.Marshal(root)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}

func buildMapFromStruct(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Tag.Get("kong") == "-" {
			continue
		}

		if _, ok := f.Tag.Lookup("embed"); ok {
			prefix := f.Tag.Get("prefix")
			name := strings.TrimSuffix(prefix, ".")
			sub := buildMapFromStruct(f.Type)
			if name != "" {
				out[name] = sub
			} else {
				for k, v := range sub {
					out[k] = v
				}
			}
			continue
		}

		key := lowerCamel(f.Name)
		def := f.Tag.Get("default")
		val := defaultValueForField(f.Type, def)
		if val != nil {
			out[key] = val
		}
	}
	return out
}

func defaultValueForField(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "time" && t.Name() == "Duration" {
		if def != "" {
			return def
		}
		return "0s"
	}
	switch t.Kind() {
	case reflect.String:
		return def // may be empty
	case reflect.Bool:
		if def == "" {
			return false
		}
		b, err := strconv.ParseBool(def)
		if err != nil {
			return false
		}
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if def == "" {
			return 0
		}
		n, err := strconv.ParseInt(def, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if def == "" {
			return 0
		}
		n, err := strconv.ParseUint(def, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case reflect.Float32, reflect.Float64:
		if def == "" {
			return 0
		}
		f, err := strconv.ParseFloat(def, 64)
		if err != nil {
			return 0
		}
		return f
	case reflect.Struct:
		return buildMapFromStruct(t)
	default:
		return nil
	}
}
