package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/productconsole/internal/session"
)

func (c *console) loginCommand() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the API token used for later commands",
		Long: `Store the bearer token issued by the login page. Pass --token - to read
it from standard input instead of the command line.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "-" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return usageErrorf("a token is required: --token <token> or --token -")
			}

			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			if err := a.Sessions().Set(cmd.Context(), token); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			info, err := session.Inspect(token)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if info.Subject != "" {
				fmt.Fprintf(out, "Logged in as %s.\n", info.Subject)
			} else {
				fmt.Fprintln(out, "Token saved.")
			}
			if info.Expired(time.Now()) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: token expired at %s\n", formatTime(info.ExpiresAt))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&token, "token", "t", "", "bearer token, or - to read it from stdin")
	return cmd
}

func (c *console) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			if err := a.Sessions().Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return err
		},
	}
}

// sessionStatus is the JSON form of `session status`.
type sessionStatus struct {
	Backend  string        `json:"backend"`
	LoggedIn bool          `json:"loggedIn"`
	Expired  bool          `json:"expired"`
	Token    *session.Info `json:"token,omitempty"`
}

func (c *console) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the stored API token",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show who the stored token belongs to and when it expires",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			token, err := a.Sessions().Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("read session: %w", err)
			}

			status := sessionStatus{Backend: a.Config().SessionBackend}
			if token != "" {
				info, err := session.Inspect(token)
				if err != nil {
					return err
				}
				status.LoggedIn = true
				status.Expired = info.Expired(time.Now())
				status.Token = &info
			}
			return c.emit(cmd, status, func(w io.Writer) error { return printSessionStatus(w, status) })
		},
	})
	return cmd
}

func printSessionStatus(w io.Writer, s sessionStatus) error {
	if !s.LoggedIn {
		_, err := fmt.Fprintf(w, "Not logged in (backend: %s).\n", s.Backend)
		return err
	}

	state := "valid"
	switch {
	case s.Token.Opaque:
		state = "opaque token"
	case s.Expired:
		state = "expired"
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Backend:\t%s\n", s.Backend)
	fmt.Fprintf(tw, "State:\t%s\n", state)
	if !s.Token.Opaque {
		fmt.Fprintf(tw, "Subject:\t%s\n", orDash(s.Token.Subject))
		fmt.Fprintf(tw, "Role:\t%s\n", orDash(s.Token.Role))
		fmt.Fprintf(tw, "Issuer:\t%s\n", orDash(s.Token.Issuer))
		fmt.Fprintf(tw, "Issued:\t%s\n", formatTime(s.Token.IssuedAt))
		fmt.Fprintf(tw, "Expires:\t%s\n", formatTime(s.Token.ExpiresAt))
	}
	return tw.Flush()
}
