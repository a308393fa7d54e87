package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plumvelvet/capacities-cli/internal/api"
	"github.com/plumvelvet/capacities-cli/internal/config"
)

// loadConfigFromFlag loads config from --config if provided, otherwise from default path.
func loadConfigFromFlag() (*config.Config, error) {
	if strings.TrimSpace(configFile) != "" {
		return config.Load(configFile)
	}
	return config.ReadConfig()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

// resolveCredentials resolves token/space id with precedence:
// flags > env > keyring > config.
func resolveCredentials(cmd *cobra.Command, cfg *config.Config) (string, string, error) {
	token := strings.TrimSpace(apiToken)
	space := strings.TrimSpace(spaceID)

	// Flags (only if explicitly set)
	if !flagChanged(cmd, "token") {
		token = ""
	}
	if !flagChanged(cmd, "space") {
		space = ""
	}

	// Environment. The launcher host passes credentials through workflow
	// variables, so the legacy lowercase names are honored too.
	if token == "" {
		token = config.TokenFromEnv(envGet)
	}
	if space == "" {
		space = config.SpaceIDFromEnv(envGet)
	}

	// Keyring (only if still missing)
	if token == "" || space == "" {
		store, err := openSecretsStore()
		if err == nil {
			if creds, err := store.Get(defaultProfile); err == nil {
				if token == "" {
					token = creds.APIToken
				}
				if space == "" {
					space = creds.SpaceID
				}
			}
		}
	}

	// Config fallback
	if token == "" && cfg != nil {
		token = strings.TrimSpace(cfg.Token)
	}
	if space == "" && cfg != nil {
		space = strings.TrimSpace(cfg.SpaceID)
	}

	return token, space, nil
}

// clientOptionsFromConfig builds API client options from config.
func clientOptionsFromConfig(cfg *config.Config) []api.ClientOption {
	if cfg == nil {
		return nil
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil
	}
	return []api.ClientOption{api.WithBaseURL(strings.TrimSpace(cfg.BaseURL))}
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}
