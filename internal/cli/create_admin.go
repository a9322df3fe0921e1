package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knowlympics/knowlympics-backend/internal/repository"
	"github.com/knowlympics/knowlympics-backend/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const minPasswordLength = 6

func newCreateAdminCmd() *cobra.Command {
	var username, email, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			var err error
			if username, err = ask(in, out, "Username", username); err != nil {
				return err
			}
			if email, err = ask(in, out, "Email", email); err != nil {
				return err
			}
			if name, err = ask(in, out, "Name", name); err != nil {
				return err
			}
			password, err := readPassword(in, out)
			if err != nil {
				return err
			}

			e, err := connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			auth := service.NewAuthService(e.cfg, e.rdb, repository.NewUserRepository(e.pool), e.log)
			u, err := auth.CreateAdmin(cmd.Context(), username, email, name, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSuccess! Admin '%s' (%s) created with ID: %d\n", u.Username, u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

// ask prompts for a value unless one was given on the command line.
func ask(in *bufio.Reader, out io.Writer, label, current string) (string, error) {
	if current != "" {
		return current, nil
	}
	fmt.Fprintf(out, "Enter %s: ", label)
	v, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return v, nil
}

// readPassword reads without echo from a terminal, or a plain line when
// stdin is piped.
func readPassword(in *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter Password: ")

	var password string
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	} else {
		line, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return password, nil
}
