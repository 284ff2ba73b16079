package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/modtoolkit/internal/client/api"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getConfirmation = GetConfirmation

// Register prompts the user for an email and password and attempts to
// create a new account. On success the new account is signed in right away
// and the live view attaches to its push stream.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.Signup(ctx, email, password); err != nil {
		if errors.Is(err, api.ErrConflict) {
			log.Printf("An account with this email already exists")
		} else {
			log.Printf("Registration unsuccessful: %s", err.Error())
		}
		return err
	}

	printlnFn("Success!")
	return a.afterSignIn(ctx, email)
}

// Login prompts the user for credentials and tries to authenticate. On
// success the profile store remembers the email and the live view attaches
// to the push stream.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.Login(ctx, email, password); err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			log.Printf("Invalid email or password")
		case errors.Is(err, api.ErrUnavailable):
			log.Printf("Server unavailable: %s", err.Error())
		default:
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	log.Printf("Login successful")
	return a.afterSignIn(ctx, email)
}

func (a *App) afterSignIn(ctx context.Context, email string) error {
	a.userEmail = email

	if err := a.profile.SetEmail(ctx, email); err != nil {
		log.Printf("Error saving profile: %s", err.Error())
	}

	uid, err := a.api.UserID()
	if err != nil {
		log.Printf("Error reading user id: %s", err.Error())
		return err
	}

	if err := a.view.Attach(ctx, uid); err != nil {
		log.Printf("Error attaching live view: %s", err.Error())
		return err
	}
	return nil
}

// Logout detaches the live view, revokes the refresh token server-side and
// clears the local profile. Local state is dropped even when the server
// call fails.
func (a *App) Logout(ctx context.Context) error {
	a.view.Detach()
	a.userEmail = ""

	if err := a.profile.Clear(ctx); err != nil {
		log.Printf("Error clearing profile: %s", err.Error())
	}

	if err := a.api.Logout(ctx); err != nil {
		log.Printf("Error logging out: %s", err.Error())
		return err
	}
	printlnFn("Logged out")
	return nil
}
