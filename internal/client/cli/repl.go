package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ListTools(ctx context.Context) error
	AddTool(ctx context.Context) error
	EditTool(ctx context.Context, args []string) error
	ToggleTool(ctx context.Context, args []string) error
	DeleteTool(ctx context.Context, args []string) error
	ShowTool(ctx context.Context, args []string) error
	DeviceInfo(ctx context.Context) error
	RefreshRate(ctx context.Context) error
	RootCheck(ctx context.Context) error
	StorageReport(ctx context.Context) error
	UploadAvatar(ctx context.Context, args []string) error
	SaveAvatar(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ShowProfile(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the Mod Toolkit CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           - show available commands
//	  - register       - create an account
//	  - login          - authenticate
//	  - device, refresh, root, storage - local device screens
//	  - exit | quit    - leave the program
//
//	Logged in, additionally:
//	  - (l)ist         - list the tool collection
//	  - add            - add a tool
//	  - edit <id>      - edit a tool
//	  - toggle <id>    - flip a tool's enabled switch
//	  - delete <id>    - delete a tool (asks for confirmation)
//	  - show <id>      - show a single tool
//	  - avatar <path>  - upload a profile avatar image
//	  - saveavatar     - download the avatar into the local cache
//	  - profile        - show the stored profile
//	  - editprofile    - edit display name and bio
//	  - logout         - log out
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mtk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, edit, toggle, delete, show, avatar, saveavatar, profile, editprofile, device, refresh, root, storage, logout, exit")
			} else {
				printlnFn("Available commands: register, login, device, refresh, root, storage, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.ListTools(ctx)

		case "add":
			_ = a.AddTool(ctx)

		case "edit":
			_ = a.EditTool(ctx, args)

		case "toggle":
			_ = a.ToggleTool(ctx, args)

		case "delete":
			_ = a.DeleteTool(ctx, args)

		case "show":
			_ = a.ShowTool(ctx, args)

		case "device":
			_ = a.DeviceInfo(ctx)

		case "refresh":
			_ = a.RefreshRate(ctx)

		case "root":
			_ = a.RootCheck(ctx)

		case "storage":
			_ = a.StorageReport(ctx)

		case "avatar":
			_ = a.UploadAvatar(ctx, args)

		case "saveavatar":
			_ = a.SaveAvatar(ctx)

		case "editprofile":
			_ = a.EditProfile(ctx)

		case "profile":
			_ = a.ShowProfile(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
