package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for username, email and password and creates the
// account. The server signs the new user in, so no separate login is
// needed.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
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
	defer wipe(password)

	res, err := a.api.Register(ctx, username, email, string(password))
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return err
	}

	a.user = &res.User
	fmt.Fprintf(a.out, "Welcome, %s!\n", res.User.Username)
	return nil
}

// Login prompts for email and password.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	res, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		return err
	}

	a.user = &res.User
	fmt.Fprintf(a.out, "Logged in as %s\n", res.User.Username)
	return nil
}

// Logout forgets the token. Tokens are not revoked server side; they
// simply expire.
func (a *App) Logout(ctx context.Context) error {
	a.api.SetToken("")
	a.user = nil
	return nil
}
