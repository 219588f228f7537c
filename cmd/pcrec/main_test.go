package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pc-recommender/internal/backendtest"
)

// Тесты меняют ENV и cwd, поэтому t.Parallel() не используется.

type harness struct {
	t         *testing.T
	srv       *backendtest.Server
	tokenFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv := backendtest.New(backendtest.Options{})
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	h := &harness{t: t, srv: srv, tokenFile: filepath.Join(dir, "tokens.json")}

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ENV", "prod")
	t.Setenv("API_BASE_URL", srv.BaseURL())
	t.Setenv("TOKEN_STORE", "file")
	t.Setenv("TOKEN_FILE", h.tokenFile)

	return h
}

// exec запускает pcrec как отдельный процесс: новый App на каждый вызов.
func (h *harness) exec(stdin string, args ...string) (string, string, error) {
	h.t.Helper()

	var out, errOut bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)

	return out.String(), errOut.String(), err
}

func TestCLI_UserFlow(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("neo", "neo@matrix.io", "password1", false)

	_, errOut, err := h.exec("", "whoami")
	require.ErrorIs(t, err, errLoginRequired)
	require.Contains(t, errOut, "Session is not active")

	out, _, err := h.exec("password1\n", "login", "neo")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as neo")

	out, _, err = h.exec("", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "neo <neo@matrix.io>")
	require.Contains(t, out, "role=user")

	out, _, err = h.exec("", "recommend", "--budget", "40000", "--games", "Dota 2,CS2",
		"--explain", "2", "--save", "1", "--name", "My rig")
	require.NoError(t, err)
	require.Contains(t, out, "1. Value build")
	require.Contains(t, out, "2. Performance build")
	require.Contains(t, out, "Why build 2:")
	require.Contains(t, out, `Saved as #1 "My rig"`)

	out, _, err = h.exec("", "saved", "list")
	require.NoError(t, err)
	require.Contains(t, out, "My rig")

	_, _, err = h.exec("", "saved", "rename", "1", "Quiet", "build")
	require.NoError(t, err)

	_, _, err = h.exec("", "saved", "notes", "1", "buy", "in", "December")
	require.NoError(t, err)

	out, _, err = h.exec("", "saved", "show", "1")
	require.NoError(t, err)
	require.Contains(t, out, "#1 Quiet build")
	require.Contains(t, out, "Notes: buy in December")

	_, _, err = h.exec("", "admin", "stats")
	require.ErrorIs(t, err, errAdminRequired)

	_, _, err = h.exec("", "saved", "delete", "1")
	require.NoError(t, err)

	_, _, err = h.exec("", "saved", "show", "1")
	require.EqualError(t, err, "Not found.")

	out, _, err = h.exec("h\n", "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Logged out.")

	_, err = os.Stat(h.tokenFile)
	require.True(t, os.IsNotExist(err))

	_, _, err = h.exec("", "whoami")
	require.ErrorIs(t, err, errLoginRequired)
}

func TestCLI_LogsCarryCommand(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("neo", "neo@matrix.io", "password1", false)

	_, errOut, err := h.exec("password1\n", "login", "neo")
	require.NoError(t, err)
	require.Contains(t, errOut, `"msg":"login_succeeded"`)
	require.Contains(t, errOut, `"command":"pcrec login"`)

	_, errOut, err = h.exec("", "recommend", "--budget", "40000", "--save", "1")
	require.NoError(t, err)
	require.Contains(t, errOut, `"msg":"saved_spec_created"`)
	require.Contains(t, errOut, `"command":"pcrec recommend"`)
}

func TestCLI_SessionSurvivesExpiredAccess(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("neo", "neo@matrix.io", "password1", false)

	_, _, err := h.exec("", "login", "neo@matrix.io", "--password", "password1")
	require.NoError(t, err)

	h.srv.ExpireAccessTokens()

	out, _, err := h.exec("", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "neo")
	require.EqualValues(t, 1, h.srv.RefreshCalls())
}

func TestCLI_LoginErrors(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("neo", "neo@matrix.io", "password1", false)

	_, _, err := h.exec("", "login", "neo", "--password", "nope")
	require.EqualError(t, err, "Unable to log in with provided credentials.")

	_, _, err = h.exec("", "login", "neo")
	require.ErrorIs(t, err, errPasswordRequired)

	_, _, err = h.exec("", "register", "--username", "x", "--email", "bad", "--password", "short")
	require.Error(t, err)
	require.Contains(t, err.Error(), "email: Enter a valid email address.")
	require.Contains(t, err.Error(), "password1: This password is too short.")
}

func TestCLI_Register(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.exec("password1\npassword1\n", "register", "--username", "trinity", "--email", "trinity@matrix.io")
	require.NoError(t, err)
	require.Contains(t, out, "Registered and logged in as trinity")

	out, _, err = h.exec("", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "trinity")
}

func TestCLI_AdminFlow(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("root", "root@matrix.io", "password1", true)
	userID := h.srv.AddUser("neo", "neo@matrix.io", "password1", false)

	_, _, err := h.exec("", "login", "root", "-p", "password1")
	require.NoError(t, err)

	out, _, err := h.exec("", "admin", "stats")
	require.NoError(t, err)
	require.Contains(t, out, "Users: 2")

	out, _, err = h.exec("", "admin", "users")
	require.NoError(t, err)
	require.Contains(t, out, "neo@matrix.io")

	id := strconv.FormatInt(userID, 10)

	out, _, err = h.exec("", "admin", "toggle-staff", id)
	require.NoError(t, err)
	require.Contains(t, out, "neo: staff=yes active=yes")

	out, _, err = h.exec("", "admin", "toggle-active", id)
	require.NoError(t, err)
	require.Contains(t, out, "neo: staff=yes active=no")

	_, _, err = h.exec("", "admin", "delete-user", id)
	require.NoError(t, err)

	_, _, err = h.exec("", "admin", "delete-user", id)
	require.EqualError(t, err, "Not found.")

	_, _, err = h.exec("", "admin", "delete-spec", "abc")
	require.EqualError(t, err, `invalid id "abc"`)
}

func TestCLI_UnknownTokenStore(t *testing.T) {
	h := newHarness(t)
	t.Setenv("TOKEN_STORE", "etcd")

	_, _, err := h.exec("", "whoami")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown token store driver")
}
