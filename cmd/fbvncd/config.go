package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamdewolf/OpenCentauri-VNC/internal/config"
)

const defaultConfigPath = "fbvncd.toml"

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fbvncd config files",
	}
	cmd.AddCommand(configInitCmd(), configValidateCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented config template with the defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(output, force); err != nil {
				return err
			}
			fmt.Printf("Wrote config template to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", defaultConfigPath, "output path for the template")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a config file and report whether it is usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(input)
			if err != nil {
				return err
			}
			fmt.Printf("Validated %s: device=%s port=%d fps=%d\n", input, cfg.Device, cfg.Port, cfg.FPS)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", defaultConfigPath, "config path to validate")
	return cmd
}
