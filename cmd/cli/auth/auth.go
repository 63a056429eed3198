package auth

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/crucial707/hci-itam/cmd/cli/config"
	"github.com/crucial707/hci-itam/cmd/cli/root"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// InitAuth registers login and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd())
}

// loginCmd creates a command that logs in a user and stores the JWT token locally.
func loginCmd() *cobra.Command {
	var username string
	var register bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the HCI Asset API",
		Long: `Authenticate with the HCI Asset API and store a JWT token for subsequent CLI commands.
The password is prompted for; leave it empty for accounts without one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("username is required")
			}
			settings, err := root.Settings()
			if err != nil {
				return err
			}
			password, err := readPassword(cmd)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			creds := map[string]string{"username": username}
			if password != "" {
				creds["password"] = password
			}

			client := &http.Client{Timeout: 15 * time.Second}

			// Optionally register the user first
			if register {
				var user struct {
					Role string `json:"role"`
				}
				if err := callJSONEndpoint(cmd.Context(), client, settings.APIURL+"/auth/register", creds, &user); err != nil {
					return fmt.Errorf("failed to register user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (role: %s).\n", username, user.Role)
			}

			var loginResp struct {
				Token string `json:"token"`
			}
			if err := callJSONEndpoint(cmd.Context(), client, settings.APIURL+"/auth/login", creds, &loginResp); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if loginResp.Token == "" {
				return errors.New("login succeeded but no token returned")
			}

			if err := config.SaveToken(loginResp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to authenticate as")
	cmd.Flags().BoolVar(&register, "register", false, "Register the user before logging in")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.ClearToken()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and otherwise reads one line
// from the command's input.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func callJSONEndpoint(ctx context.Context, client *http.Client, url string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}

	return nil
}
