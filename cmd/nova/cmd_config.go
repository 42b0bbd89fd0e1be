package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/nova-cli/nova/internal/config"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect Nova's effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.NewFileStore("")
		cfg, err := store.Load()
		if err != nil {
			return err
		}

		switch configFormat {
		case "json":
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		case "yaml", "":
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
		default:
			return fmt.Errorf("unknown format %q (want json or yaml)", configFormat)
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "output format: json or yaml")
	configCmd.AddCommand(configShowCmd)
}
