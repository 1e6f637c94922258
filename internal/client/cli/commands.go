package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/evently-client/internal/client/client"
	"github.com/dmitrijs2005/evently-client/internal/common"
)

// getSimpleText, getPassword and getYesNo are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getYesNo      = GetYesNo
)

// Login prompts for credentials and the remember-me choice, then signs in.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		a.printf("Already logged in as %s. Use logout first.\n", a.auth.Session().Snapshot().User.Email)
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getYesNo(a.reader, "Remember me on this device?", false, a.out)
	if err != nil {
		return err
	}

	res := a.auth.Login(ctx, email, string(password), remember)
	if !res.Success {
		a.println(res.Message)
		return res.Err
	}

	a.printf("Welcome, %s!\n", a.auth.Session().Snapshot().User.Name)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	res := a.auth.Logout(ctx)
	if !res.Success {
		a.println(res.Message)
		return res.Err
	}
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.auth.Session().Snapshot()
	if !snap.LoggedIn {
		a.println("Not logged in.")
		return nil
	}
	a.printf("%s <%s> (id %s)\n", snap.User.Name, snap.User.Email, snap.User.ID)
	return nil
}

// Get calls path on the API with the stored credentials and prints the
// answer's data.
func (a *App) Get(ctx context.Context, path string) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	resp, err := a.client.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var rejected *client.BackendError
		switch {
		case errors.Is(err, common.ErrSessionExpired):
			a.auth.Session().SetUser(nil)
			a.println(client.MsgSessionExpired)
		case errors.As(err, &rejected):
			a.printf("%d: %s\n", rejected.StatusCode, rejected.Message)
		default:
			msg, _ := a.client.Describe(ctx, err)
			a.println(msg)
		}
		return err
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		a.println(resp.Message)
		return nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Data, "", "  "); err != nil {
		a.println(string(resp.Data))
		return nil
	}
	a.println(pretty.String())
	return nil
}

func (a *App) Status(ctx context.Context) error {
	snap := a.auth.Session().Snapshot()
	a.printf("server: %s\n", a.Mode())
	if snap.LoggedIn {
		a.printf("session: %s\n", snap.User.Email)
	} else {
		a.println("session: none")
	}
	return nil
}
