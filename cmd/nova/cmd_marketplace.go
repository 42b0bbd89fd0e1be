package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nova-cli/nova/internal/config"
	"github.com/nova-cli/nova/internal/log"
	"github.com/nova-cli/nova/internal/marketplace"
	"github.com/nova-cli/nova/internal/scope"
)

var (
	marketplaceScopeFlag    string
	marketplaceAddScopeFlag string
)

var marketplaceCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "Add, remove, and inspect marketplaces",
}

func newService() (*marketplace.Service, error) {
	store := config.NewFileStore("")
	cfg, err := store.Load()
	logger := log.Nop()
	if err == nil && cfg.Logging != nil {
		logger = log.New(cfg.Logging)
	}
	return marketplace.NewService(store, "", "", logger), nil
}

func parseScopeFlag(s string) (scope.Scope, error) {
	switch s {
	case "global":
		return scope.Global, nil
	case "project":
		return scope.Project, nil
	default:
		return "", fmt.Errorf("invalid --scope %q (want global or project)", s)
	}
}

func printInfo(info *marketplace.Info) {
	fmt.Printf("%s\n  source: %s\n  bundles: %d\n", info.Name, info.Source.String(), info.BundleCount)
	if info.Description != "" {
		fmt.Printf("  description: %s\n", info.Description)
	}
}

var marketplaceAddCmd = &cobra.Command{
	Use:   "add <source>",
	Short: "Fetch and register a marketplace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := parseScopeFlag(marketplaceAddScopeFlag)
		if err != nil {
			return err
		}
		svc, err := newService()
		if err != nil {
			return err
		}
		info, err := svc.Add(context.Background(), args[0], sc)
		if err != nil {
			return err
		}
		printInfo(info)
		return nil
	},
}

var marketplaceRemoveCmd = &cobra.Command{
	Use:   "remove <name-or-source>",
	Short: "Remove a marketplace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		var scopePtr *scope.Scope
		if marketplaceScopeFlag != "" {
			sc, err := parseScopeFlag(marketplaceScopeFlag)
			if err != nil {
				return err
			}
			scopePtr = &sc
		}
		info, err := svc.Remove(context.Background(), args[0], scopePtr)
		if err != nil {
			return err
		}
		fmt.Printf("removed %s\n", info.Name)
		return nil
	},
}

var marketplaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured marketplaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		infos, err := svc.List()
		if err != nil {
			return err
		}
		for _, info := range infos {
			printInfo(&info)
		}
		return nil
	},
}

var marketplaceShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a single marketplace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		info, err := svc.Get(args[0])
		if err != nil {
			return err
		}
		printInfo(info)
		return nil
	},
}

func init() {
	marketplaceAddCmd.Flags().StringVar(&marketplaceAddScopeFlag, "scope", "global", "scope to add into: global or project")
	marketplaceRemoveCmd.Flags().StringVar(&marketplaceScopeFlag, "scope", "", "scope to remove from (infers if omitted and unambiguous)")

	marketplaceCmd.AddCommand(marketplaceAddCmd)
	marketplaceCmd.AddCommand(marketplaceRemoveCmd)
	marketplaceCmd.AddCommand(marketplaceListCmd)
	marketplaceCmd.AddCommand(marketplaceShowCmd)
}
