package cli

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitmaxhq/gitmax/internal/pkg/timeutil"
)

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Manage authentication for the GitMax CLI`,
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var (
		port    int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with GitHub",
		Long: `Authenticate with the GitMax server using GitHub OAuth.

Opens a browser for the GitHub authorization flow and captures the
callback on a local port.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			return loginWithBrowser(cmd.Context(), cliCtx, port, timeout)
		},
	}

	cmd.Flags().IntVar(&port, "callback-port", 8085, "Local port for the OAuth callback")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for the browser flow")

	return cmd
}

// loginWithBrowser runs the OAuth authorization code flow with a local
// callback listener.
func loginWithBrowser(ctx context.Context, cliCtx *CliContext, port int, timeout time.Duration) error {
	authURL, err := cliCtx.Client.LoginURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to start login: %w", err)
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("failed to start callback server on port %d: %w (is another instance running?)", port, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := successTemplate.Execute(w, nil); err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		codeChan <- code
	})

	server := &http.Server{Handler: mux}
	go func() {
		server.Serve(listener)
	}()
	defer server.Close()

	fmt.Println("\nOpening browser for authentication...")
	fmt.Printf("If the browser doesn't open automatically, visit:\n%s\n\n", authURL)

	if err := openBrowser(authURL); err != nil {
		fmt.Printf("Failed to open browser automatically: %v\n", err)
	}

	fmt.Println("Waiting for authentication...")

	var code string
	select {
	case code = <-codeChan:
		// Success
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return fmt.Errorf("authentication timeout")
	}

	user, err := cliCtx.Client.HandleCallback(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to complete login: %w", err)
	}

	fmt.Println("\n✓ Successfully authenticated!")
	fmt.Printf("  Logged in as: %s\n", user.Username)
	fmt.Printf("  Public repos: %d, followers: %d\n", user.PublicRepos, user.Followers)

	return nil
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the GitMax server",
		Long:  `Remove stored credentials and revoke the session on the server when reachable`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			if err := cliCtx.Client.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("failed to log out: %w", err)
			}

			fmt.Println("✓ Successfully logged out")
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			user, err := cliCtx.Client.CurrentUser(cmd.Context())
			if err != nil {
				fmt.Println("Not logged in")
				return nil
			}

			fmt.Printf("Logged in as: %s\n", user.Username)
			fmt.Printf("GitHub ID: %s\n", user.GitHubID)
			if user.Email != nil {
				fmt.Printf("Email: %s\n", *user.Email)
			}
			if user.LastSeen != nil {
				fmt.Printf("Last seen: %s\n", timeutil.RelativeToNow(*user.LastSeen))
			}

			return nil
		},
	}
}

// openBrowser tries to open the URL in a browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}

var successTemplate = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Authentication Successful</title>
	<style>
		body {
			font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
			text-align: center;
			padding: 50px;
			background: #f5f5f5;
		}
		.container {
			max-width: 500px;
			margin: 0 auto;
			background: white;
			padding: 40px;
			border-radius: 12px;
			box-shadow: 0 2px 8px rgba(0,0,0,0.1);
		}
		h1 {
			color: #10b981;
			margin: 0 0 10px 0;
		}
		.checkmark {
			color: #10b981;
			font-size: 48px;
		}
		.message {
			color: #666;
			margin: 20px 0;
		}
	</style>
</head>
<body>
	<div class="container">
		<div class="checkmark">✓</div>
		<h1>Authentication Successful!</h1>
		<p class="message">CLI authentication complete. You can close this window and return to the terminal.</p>
	</div>
</body>
</html>`))
