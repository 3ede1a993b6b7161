package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"usbflash/internal/apperr"
	"usbflash/internal/command"
	"usbflash/internal/config"
	"usbflash/internal/precheck"
	"usbflash/internal/prompt"
	"usbflash/internal/runner"
	"usbflash/internal/selection"
	"usbflash/internal/structures"
)

var (
	// Flags
	configPath string
	devPath    string
	imageURL   string
	debug      bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "usbflash",
	Short: "usbflash - prepare and supervise USB image flashing",
	Long: `usbflash resolves a provisioning configuration into a single
flashusb.sh invocation and supervises its execution, including clean
teardown when the run is interrupted.
`,
	Run: func(cmd *cobra.Command, args []string) {
		// Running without a subcommand prints help
		cmd.Help()
	},
}

// flashCmd runs the whole pipeline: precondition checks, image selection,
// command assembly, and supervised execution
var flashCmd = &cobra.Command{
	Use:   "flash",
	Short: "Flash a USB device with a provisioning image",
	Long: `Validate the environment, resolve the target image from the
configuration or a direct URL, and run flashusb.sh against the device.
WARNING: this will wipe out the target device.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(debug)

		checker := precheck.NewChecker(log)
		if err := checker.Check(devPath, imageURL, os.Geteuid() == 0); err != nil {
			return err
		}

		cfg, err := config.LoadProvisionConfig(configPath)
		if err != nil {
			return err
		}

		resolver := selection.NewResolver(prompt.New(os.Stdin, os.Stdout), log)
		sel, err := resolver.Resolve(cfg, imageURL)
		if err != nil {
			return err
		}

		spec, err := command.Build(cfg, devPath, sel)
		if err != nil {
			return err
		}

		// An interrupt during the run must take the script's whole process
		// group down with it
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runner.New(os.Stdout, log).Run(ctx, spec, cfg.Esp.DestDir)
	},
}

// profilesCmd prints the profiles and image settings from the config
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the profiles and images the config would flash",
	Long: `Read the provisioning configuration and show which profiles are
defined and which image files the flash command would look for.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProvisionConfig(configPath)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Profile", "Images"})

		if cfg.UsbImages.AllInOne {
			t.AppendRow(table.Row{1, selection.AllProfiles, strings.Join(imageNames(cfg, selection.AllProfiles), ", ")})
		} else {
			for i, name := range cfg.ProfileNames() {
				t.AppendRow(table.Row{i + 1, name, strings.Join(imageNames(cfg, name), ", ")})
			}
		}

		t.Render()

		fmt.Printf("build: %t, all_in_one: %t\n", cfg.UsbImages.Build, cfg.UsbImages.AllInOne)
		fmt.Printf("images are expected under: %s\n", cfg.UsbImages.OutputPath)
		return nil
	},
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of usbflash",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("usbflash v0.1.0")
	},
}

// imageNames lists the artifact names the naming contract produces for one
// profile, given the enabled bios types.
func imageNames(cfg *structures.ProvisionConfig, profile string) []string {
	var names []string
	if cfg.UsbImages.Bios {
		names = append(names, fmt.Sprintf("%s-%s.img", profile, selection.BiosLegacy))
	}
	if cfg.UsbImages.Efi {
		names = append(names, fmt.Sprintf("%s-%s.img", profile, selection.BiosEFI))
	}
	return names
}

// newLogger builds the diagnostic logger. Operator-facing output (menus,
// child output, tables) goes straight to stdout, this covers the rest.
func newLogger(debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts = &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "default_config.yml", "Configuration file PATH for USB flash")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Provide more verbose diagnostic information")

	// Flags for the flash command
	flashCmd.Flags().StringVarP(&devPath, "dev", "d", "", "Path to the USB device, for example '/dev/sdc'. WARNING: this will wipe out the target device")
	flashCmd.Flags().StringVarP(&imageURL, "url", "u", "", "URL of the USB image")

	rootCmd.AddCommand(flashCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(versionCmd)

	// Errors are reported once in main
	flashCmd.SilenceUsage = true
	flashCmd.SilenceErrors = true
	profilesCmd.SilenceUsage = true
	profilesCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(apperr.ExitCode(err))
	}
}
