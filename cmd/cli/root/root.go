package root

import (
	"strings"

	"github.com/crucial707/hci-itam/cmd/cli/config"
	"github.com/spf13/cobra"
)

var apiURLFlag string

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:           "hci",
	Short:         "HCI Asset Management CLI",
	Long:          "Command line interface for interacting with the HCI Asset Management API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "API base URL (overrides HCI_ASSET_API_URL and config.toml)")
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}

// Settings returns the effective settings, with --api-url applied on top of
// the config file and environment.
func Settings() (config.Settings, error) {
	s, err := config.Load()
	if err != nil {
		return s, err
	}
	if apiURLFlag != "" {
		s.APIURL = strings.TrimRight(apiURLFlag, "/")
	}
	return s, nil
}
