package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage featureio configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.featureio.yaml.",
		Example: `  featureio config                              # show all config
  featureio config set fasta /data/hg38.fa      # default FASTA collection
  featureio config set shared-handle true       # keep FASTA handles open
  featureio config get wrap                     # get a value`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func runConfigShow(out io.Writer) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintf(out, "# No configuration set. Config file: ~/%s.yaml\n", configName)
		return nil
	}

	b, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(out, string(b))
	return nil
}

func runConfigSet(out io.Writer, key, value string) error {
	switch key {
	case "fasta":
		viper.Set(key, []string{value})
	case "wrap", "workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return usagef("%s must be an integer, got %q", key, value)
		}
		viper.Set(key, n)
	default:
		switch value {
		case "true", "yes", "on":
			viper.Set(key, true)
		case "false", "no", "off":
			viper.Set(key, false)
		default:
			viper.Set(key, value)
		}
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(out io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(out, val)
	return nil
}
