package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/ecoflow/internal/client/client"
	"github.com/dmitrijs2005/ecoflow/internal/client/workflow"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	sessionExpired() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error

	List(ctx context.Context) error
	Search(ctx context.Context, text string) error
	Status(ctx context.Context, arg string) error
	PageSize(ctx context.Context, arg string) error
	Page(ctx context.Context, delta int) error

	Show(ctx context.Context, arg string) error
	Create(ctx context.Context) error
	Transition(ctx context.Context, action workflow.Action) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context) error

	Upload(ctx context.Context, path string) error
	View(ctx context.Context, name string) error
	Save(ctx context.Context, name string) error
	Report(ctx context.Context) error

	Users(ctx context.Context) error
	AddUser(ctx context.Context) error
	DeleteUser(ctx context.Context, arg string) error
}

const (
	helpAnonymous = "Available commands: register, login, ping, exit"
	helpUser      = "Available commands: (l)ist, search <text>, status <STATUS|all>, pagesize <n>, next, prev, " +
		"show <id>, create, submit, approve, reject, upload <path>, view <file>, save <file>, report, ping, logout, exit"
	helpAdmin = helpUser + "\nAdmin commands: edit, delete, users, adduser, deluser <id>"
)

// runREPL starts a simple read–eval–print loop for the ECO CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'; the rest of the line is the argument.
// Unknown commands are reported back to the user. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// A command failing with client.ErrUnauthorized, or the session being ended
// by the server while the command ran, sends the user back to login.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("eco %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		err = dispatch(ctx, a, cmd, arg)
		if err != nil {
			printlnFn("Error:", err)
		}

		if errors.Is(err, client.ErrUnauthorized) || a.sessionExpired() {
			printlnFn("Your session has ended, please log in again.")
			if err := a.Login(ctx); err != nil {
				printlnFn("Error:", err)
			}
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd, arg string) error {
	switch cmd {
	case "help":
		switch {
		case !a.isLoggedIn():
			printlnFn(helpAnonymous)
		case a.isAdmin():
			printlnFn(helpAdmin)
		default:
			printlnFn(helpUser)
		}
		return nil

	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "ping":
		return a.Ping(ctx)
	}

	if !a.isLoggedIn() {
		printlnFn("Please log in first (type 'login').")
		return nil
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)

	case "l", "list":
		return a.List(ctx)
	case "search":
		return a.Search(ctx, arg)
	case "status":
		return a.Status(ctx, arg)
	case "pagesize":
		return a.PageSize(ctx, arg)
	case "next":
		return a.Page(ctx, 1)
	case "prev":
		return a.Page(ctx, -1)

	case "show":
		return a.Show(ctx, arg)
	case "create":
		return a.Create(ctx)
	case "submit", "approve", "reject":
		return a.Transition(ctx, workflow.Action(cmd))
	case "edit":
		return a.Edit(ctx)
	case "delete":
		return a.Delete(ctx)

	case "upload":
		return a.Upload(ctx, arg)
	case "view":
		return a.View(ctx, arg)
	case "save":
		return a.Save(ctx, arg)
	case "report":
		return a.Report(ctx)

	case "users":
		return a.Users(ctx)
	case "adduser":
		return a.AddUser(ctx)
	case "deluser":
		return a.DeleteUser(ctx, arg)
	}

	printlnFn("Unknown command:", cmd)
	return nil
}
