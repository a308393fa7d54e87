package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/plumvelvet/capacities-cli/internal/api"
	"github.com/plumvelvet/capacities-cli/internal/config"
	"github.com/plumvelvet/capacities-cli/internal/secrets"
)

// defaultProfile is the profile name used for credentials
const defaultProfile = "default"

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication credentials",
	Long: `Manage authentication credentials for the Capacities API.

Credentials are stored securely in your system keychain (macOS Keychain,
Windows Credential Manager, or encrypted file on Linux).

Examples:
  cap auth login --token YOUR_API_TOKEN --space SPACE_ID
  cap auth login  # Interactive prompt for credentials
  cap auth status
  cap auth logout`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store API credentials",
	Long: `Store API credentials for Capacities.

To obtain an API token, open the Capacities desktop app and generate one
under Settings > Capacities API. The space id is optional; without it,
commands operate on every space the token can reach.

Examples:
  cap auth login                          # Interactive prompts
  cap auth login --token TOKEN            # Non-interactive
  cap auth login --token TOKEN --space SPACE_ID`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials",
	Long: `Clear stored API credentials from the system keychain.

Examples:
  cap auth logout`,
	RunE: runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current authentication status",
	Long: `Display the current authentication status.

Shows whether credentials are stored and which space is configured.
Can optionally verify the credentials against the Capacities API.

Examples:
  cap auth status
  cap auth status --verify  # Also verify credentials with API`,
	RunE: runStatus,
}

var (
	loginToken string
	loginSpace string
	verifyAuth bool
)

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(authCmd)

	loginCmd.Flags().StringVar(&loginToken, "token", "", "API token")
	loginCmd.Flags().StringVar(&loginSpace, "space", "", "Default space id")

	statusCmd.Flags().BoolVar(&verifyAuth, "verify", false, "Verify credentials with API")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	structured := structuredOutputRequested()

	token := loginToken
	if token == "" {
		token = config.TokenFromEnv(envGet)
	}
	space := loginSpace
	if space == "" {
		space = config.SpaceIDFromEnv(envGet)
	}

	// Prompt for whatever is still missing.
	if token == "" {
		var promptErr error
		token, promptErr = promptSecret(cmd.Context(), "Enter API token: ")
		if promptErr != nil {
			return fmt.Errorf("failed to read token: %w", promptErr)
		}
	}
	if token == "" {
		return fmt.Errorf("API token is required")
	}

	if space == "" && !structured {
		var promptErr error
		space, promptErr = promptString(cmd.Context(), "Enter default space id (optional): ")
		if promptErr != nil {
			return fmt.Errorf("failed to read space id: %w", promptErr)
		}
	}

	// Verify credentials by making a test API call.
	if !structured {
		fmt.Fprintln(stderrFromContext(cmd.Context()), "Verifying credentials...")
	}

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	testClient := newClientFunc(token, clientOptionsFromConfig(cfg)...)
	spaces, err := testClient.Spaces()
	if err != nil {
		var authErr api.AuthenticationError
		if errors.As(err, &authErr) {
			return fmt.Errorf("authentication failed: invalid API token")
		}
		// Other errors might be acceptable (rate limit, etc.) during login.
		if !structured {
			fmt.Fprintf(stderrFromContext(cmd.Context()), "Warning: could not verify credentials: %v\n", err)
			fmt.Fprintln(stderrFromContext(cmd.Context()), "Proceeding with credential storage...")
		}
	} else if !structured {
		fmt.Fprintf(stderrFromContext(cmd.Context()), "Credentials verified, %d space(s) accessible.\n", len(spaces))
	}

	creds := secrets.Credentials{
		Profile:   defaultProfile,
		APIToken:  token,
		SpaceID:   strings.TrimSpace(space),
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Set(defaultProfile, creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	if structured {
		return printStructured(map[string]interface{}{
			"status":   "authenticated",
			"space_id": creds.SpaceID,
		})
	}

	out := stdoutFromContext(cmd.Context())
	fmt.Fprintf(out, "\nAuthenticated successfully!\n")
	if creds.SpaceID != "" {
		fmt.Fprintf(out, "Default space: %s\n", creds.SpaceID)
	}
	fmt.Fprintln(out, "\nYou can now use cap commands without specifying --token or --space flags.")

	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	if err := store.Delete(defaultProfile); err != nil && !errors.Is(err, secrets.ErrNotFound) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(map[string]interface{}{
			"status": "logged_out",
		})
	}

	out := stdoutFromContext(cmd.Context())
	fmt.Fprintln(out, "Logged out successfully.")
	fmt.Fprintln(out, "Credentials have been removed from the system keychain.")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	structured := structuredOutputRequested()
	out := stdoutFromContext(cmd.Context())

	creds, err := store.Get(defaultProfile)
	if err != nil {
		if structured {
			return printStructured(map[string]interface{}{
				"authenticated": false,
			})
		}
		fmt.Fprintln(out, "Status: Not authenticated")
		fmt.Fprintln(out, "\nRun 'cap auth login' to authenticate.")
		return nil
	}

	var verified *bool
	var verifyError string
	if verifyAuth {
		if !structured {
			fmt.Fprintln(stderrFromContext(cmd.Context()), "Verifying credentials with API...")
		}

		cfg, err := loadConfigFromFlag()
		if err != nil {
			return formatConfigLoadError(err)
		}
		testClient := newClientFunc(creds.APIToken, clientOptionsFromConfig(cfg)...)
		if _, err := testClient.Spaces(); err != nil {
			var authErr api.AuthenticationError
			val := false
			verified = &val
			if errors.As(err, &authErr) {
				verifyError = "invalid or expired token"
			} else {
				verifyError = err.Error()
			}
			if !structured {
				fmt.Fprintf(out, "Verification: FAILED - %s\n", verifyError)
				return nil
			}
		} else {
			val := true
			verified = &val
			if !structured {
				fmt.Fprintln(out, "Verification: OK - Credentials are valid")
			}
		}
	}

	if structured {
		result := map[string]interface{}{
			"authenticated":    true,
			"profile":          creds.Profile,
			"space_id":         creds.SpaceID,
			"space_configured": creds.SpaceID != "",
		}
		if !creds.CreatedAt.IsZero() {
			result["authenticated_at"] = creds.CreatedAt.Format(time.RFC3339)
		}
		if creds.APIToken != "" {
			result["token_preview"] = maskToken(creds.APIToken)
		}
		if verifyAuth {
			result["verified"] = verified
			if verifyError != "" {
				result["verify_error"] = verifyError
			}
		}
		return printStructured(result)
	}

	fmt.Fprintln(out, "Status: Authenticated")
	fmt.Fprintf(out, "Profile: %s\n", creds.Profile)
	if !creds.CreatedAt.IsZero() {
		fmt.Fprintf(out, "Authenticated at: %s\n", creds.CreatedAt.Format(time.RFC3339))
	}
	if creds.SpaceID != "" {
		fmt.Fprintf(out, "Default space: %s\n", creds.SpaceID)
	} else {
		fmt.Fprintln(out, "Default space: Not configured")
	}
	if creds.APIToken != "" {
		fmt.Fprintf(out, "Token: %s\n", maskToken(creds.APIToken))
	}

	return nil
}

// promptString prompts for a string input
func promptString(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(stderrFromContext(ctx), prompt)
	reader := bufio.NewReader(stdinFromContext(ctx))
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// promptSecret prompts for a secret input (no echo)
func promptSecret(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(stderrFromContext(ctx), prompt)

	in := stdinFromContext(ctx)
	if file, ok := in.(*os.File); ok {
		if term.IsTerminal(int(file.Fd())) {
			password, err := term.ReadPassword(int(file.Fd()))
			fmt.Fprintln(stderrFromContext(ctx))
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(password)), nil
		}
	}

	// Fall back to regular input for non-terminal (e.g., piped input)
	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// maskToken masks a token for display, showing only first and last 4 characters
func maskToken(token string) string {
	if len(token) <= 12 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
