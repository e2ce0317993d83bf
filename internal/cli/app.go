// Package cli is the interactive terminal front-end over the authentication
// manager: a small REPL with login, registration, and session commands. It
// renders outcomes; all decisions live in the auth package.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minestat/launcher/internal/auth"
	"github.com/minestat/launcher/internal/common"
	"github.com/minestat/launcher/internal/config"
	"github.com/minestat/launcher/internal/models"
)

type App struct {
	config *config.Config
	auth   *auth.Manager
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config, mgr *auth.Manager, reader *bufio.Reader, out io.Writer) *App {
	return &App{config: cfg, auth: mgr, reader: reader, out: out}
}

func (a *App) prompt() string {
	if p := a.auth.CurrentProfile(); p != nil {
		return fmt.Sprintf("launcher (%s)> ", p.Username)
	}
	return "launcher> "
}

// Run drives the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the launcher (type 'help' for commands)")

	if p := a.auth.CurrentProfile(); p != nil {
		fmt.Fprintf(a.out, "Restored session for %s\n", p.Username)
	}

	for {
		fmt.Fprint(a.out, a.prompt())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.auth.IsAuthenticated() {
				fmt.Fprintln(a.out, "Available commands: whoami, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: login, premium, legacy, register, exit")
			}
		case "login":
			a.loginLocal(ctx)
		case "premium":
			a.loginPremium(ctx)
		case "legacy":
			a.loginLegacy(ctx)
		case "register":
			a.register(ctx)
		case "whoami":
			a.whoami()
		case "logout":
			a.auth.Logout()
			fmt.Fprintln(a.out, "Logged out")
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", parts[0])
		}
	}
}

func (a *App) loginLocal(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if username == "" && a.config.LastUsername != "" {
		username = a.config.LastUsername
		fmt.Fprintf(a.out, "Using last username: %s\n", username)
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeBytes(password)

	remember, err := GetConfirm(a.reader, "Remember me?", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	res := a.auth.Login(ctx, auth.ModeLocal,
		auth.Credentials{Username: username, Password: string(password)}, remember)
	a.report(res)
}

func (a *App) loginPremium(ctx context.Context) {
	remember, err := GetConfirm(a.reader, "Remember me?", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	res := a.auth.Login(ctx, auth.ModeOAuth, auth.Credentials{}, remember)
	a.report(res)
}

func (a *App) loginLegacy(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter account email", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeBytes(password)

	remember, err := GetConfirm(a.reader, "Remember me?", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	res := a.auth.Login(ctx, auth.ModeLegacy,
		auth.Credentials{Username: email, Password: string(password)}, remember)
	a.report(res)
}

func (a *App) register(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeBytes(password)

	email, err := GetSimpleText(a.reader, "Email (optional, press Enter to skip)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	res := a.auth.Register(ctx, username, string(password), email)
	a.report(res)
	if res.Success {
		fmt.Fprintln(a.out, "Account created. Use 'login' to sign in.")
	}
}

func (a *App) whoami() {
	p := a.auth.CurrentProfile()
	if p == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return
	}
	kind := "local"
	if p.Kind.Premium() {
		kind = "premium"
	}
	fmt.Fprintf(a.out, "%s (%s account, id %s)\n", p.Username, kind, p.ID)
}

func (a *App) report(res *models.Result) {
	if res.Success {
		fmt.Fprintf(a.out, "Welcome, %s!\n", res.Profile.Username)
		return
	}
	fmt.Fprintln(a.out, res.Message)
}
