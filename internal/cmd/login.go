// Package cmd implements the command modes reachable from the eralove CLI
// entry point: interactive login/registration, session inspection, and
// one-off authenticated requests.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/eralove/eralove-go/sdk/config"
	"github.com/eralove/eralove-go/sdk/eralove"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// promptLine reads a single trimmed line from stdin after printing the prompt.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing when stdin is a terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return promptLine("")
}

func newClient(cfg *config.Config) (*eralove.Client, error) {
	return eralove.New(cfg, eralove.WithAuthExpiredHook(func(landingURL string) {
		fmt.Printf("Session expired. Please sign in again at %s\n", landingURL)
	}))
}

// DoLogin prompts for credentials, authenticates against the EraLove backend,
// and persists the resulting session to the credentials file.
func DoLogin(cfg *config.Config) {
	client, err := newClient(cfg)
	if err != nil {
		log.Errorf("failed to initialize client: %v", err)
		return
	}

	email, err := promptLine("Email: ")
	if err != nil {
		log.Errorf("failed to read email: %v", err)
		return
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		log.Errorf("failed to read password: %v", err)
		return
	}

	session, err := client.Login(context.Background(), email, password)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return
	}

	name := email
	if session.User != nil && session.User.DisplayName != "" {
		name = session.User.DisplayName
	}
	fmt.Printf("Signed in as %s. Credentials saved to %s\n", name, cfg.CredentialsFile)
}

// DoRegister prompts for account details and creates a new EraLove account.
func DoRegister(cfg *config.Config) {
	client, err := newClient(cfg)
	if err != nil {
		log.Errorf("failed to initialize client: %v", err)
		return
	}

	email, err := promptLine("Email: ")
	if err != nil {
		log.Errorf("failed to read email: %v", err)
		return
	}
	displayName, err := promptLine("Display name: ")
	if err != nil {
		log.Errorf("failed to read display name: %v", err)
		return
	}
	partnerEmail, err := promptLine("Partner email (optional): ")
	if err != nil {
		log.Errorf("failed to read partner email: %v", err)
		return
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		log.Errorf("failed to read password: %v", err)
		return
	}

	session, err := client.Register(context.Background(), eralove.RegisterParams{
		Email:        email,
		Password:     password,
		DisplayName:  displayName,
		PartnerEmail: partnerEmail,
	})
	if err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		return
	}

	fmt.Printf("Account created for %s. Credentials saved to %s\n", email, cfg.CredentialsFile)
	if session.Message != "" {
		fmt.Println(session.Message)
	}
}

// DoLogout revokes the persisted session and removes the credentials file.
func DoLogout(cfg *config.Config) {
	client, err := newClient(cfg)
	if err != nil {
		log.Errorf("failed to initialize client: %v", err)
		return
	}
	if !client.LoggedIn() {
		fmt.Println("No active session.")
		return
	}
	if err = client.Logout(context.Background()); err != nil {
		fmt.Printf("Logout failed: %v\n", err)
		return
	}
	fmt.Println("Signed out.")
}
