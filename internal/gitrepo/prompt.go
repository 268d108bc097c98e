package gitrepo

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

// CredentialPrompt supplies credentials for repositories that have none
// configured.
type CredentialPrompt interface {
	// Prompt asks the operator for credentials for the named repository.
	Prompt(repoName string) (*Credentials, error)
}

// TerminalPrompt asks for credentials interactively on the controlling
// terminal. The password is read without echo.
type TerminalPrompt struct{}

// NewTerminalPrompt creates an interactive credential prompt.
func NewTerminalPrompt() *TerminalPrompt {
	return &TerminalPrompt{}
}

// Prompt implements CredentialPrompt.
func (p *TerminalPrompt) Prompt(repoName string) (*Credentials, error) {
	rl, err := readline.New(fmt.Sprintf("Username for %s: ", repoName))
	if err != nil {
		return nil, fmt.Errorf("opening terminal: %w", err)
	}
	defer rl.Close()

	username, err := rl.Readline()
	if err != nil {
		return nil, fmt.Errorf("reading username: %w", err)
	}

	password, err := rl.ReadPassword(fmt.Sprintf("Password for %s: ", repoName))
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return &Credentials{
		Username: strings.TrimSpace(username),
		Password: string(password),
	}, nil
}
