package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/miniblog/internal/client/client"
	"github.com/dmitrijs2005/miniblog/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a display name, email and password and creates an
// account. The server signs the new user in right away.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	user, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %s\n", err.Error())
		return err
	}

	a.userName = user.Name
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	return nil
}

// Login prompts for credentials and signs in. A rejected login leaves the
// previous session state untouched.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	user, err := a.client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			fmt.Fprintln(a.out, "Server unavailable, try again later")
		} else {
			fmt.Fprintf(a.out, "Login unsuccessful: %s\n", err.Error())
		}
		return err
	}

	a.userName = user.Name
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout ends the server session. The local state is cleared even when
// the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx)
	a.userName = ""
	if err != nil {
		fmt.Fprintf(a.out, "Logout: %s\n", err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Me shows the profile behind the current session, re-read from the server.
func (a *App) Me(ctx context.Context) error {
	user, err := a.client.Me(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}
	if user == nil {
		a.userName = ""
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}

	a.userName = user.Name
	fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	if user.Bio != nil && *user.Bio != "" {
		fmt.Fprintln(a.out, *user.Bio)
	}
	return nil
}
