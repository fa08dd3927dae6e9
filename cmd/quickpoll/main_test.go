// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youjianchi/quickPoll/client"
	"github.com/youjianchi/quickPoll/metrics"
	"github.com/youjianchi/quickPoll/models"
	"github.com/youjianchi/quickPoll/router"
	"github.com/youjianchi/quickPoll/testutil"
)

type cli struct {
	t          *testing.T
	apiURL     string
	configPath string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	store := testutil.SetupTestStore(t)
	srv := httptest.NewServer(router.NewRouter(store, testutil.NewFakeProvider(), metrics.NewMetricService(), testutil.GetTestConfig()))
	t.Cleanup(srv.Close)

	return &cli{t: t, apiURL: srv.URL, configPath: filepath.Join(t.TempDir(), "quickpoll", "config.yaml")}
}

func (c *cli) run(stdin string, args ...string) (code int, stdout, stderr string) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--config", c.configPath, "--api-url", c.apiURL, "--interval", "1h"}, args...)
	code = run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

var (
	pollIDPattern = regexp.MustCompile(`Poll #(\d+):`)
	optionPattern = regexp.MustCompile(`\[(\d+)\] (\w+)`)
)

func TestCLI_Workflow(t *testing.T) {
	c := newCLI(t)

	code, _, stderr := c.run("", "create", "Lunch?", "Pizza", "Tacos")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not signed in")

	code, stdout, stderr := c.run("", "signin", testutil.TestUser.Email, testutil.TestPassword)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Signed in as "+testutil.TestUser.Email)

	saved, err := os.ReadFile(c.configPath)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "access_token")

	code, stdout, _ = c.run("", "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, testutil.TestUser.Email)

	code, stdout, stderr = c.run("", "create", "Lunch?", "Pizza", "Tacos")
	require.Equal(t, 0, code, stderr)
	require.Regexp(t, pollIDPattern, stdout)
	pollID := pollIDPattern.FindStringSubmatch(stdout)[1]
	options := optionPattern.FindAllStringSubmatch(stdout, -1)
	require.Len(t, options, 2)
	assert.Equal(t, "Pizza", options[0][2])
	tacos := options[1][1]

	code, stdout, stderr = c.run("", "vote", pollID, tacos)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "1 vote (100%)")

	code, stdout, _ = c.run("", "show", pollID)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "1 vote total")

	code, stdout, _ = c.run("", "signout")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Signed out.")

	code, _, stderr = c.run("", "whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not signed in")
}

func TestCLI_Errors(t *testing.T) {
	c := newCLI(t)

	code, _, stderr := c.run("", "show", "999999")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Poll #999999 not found.")

	code, _, stderr = c.run("", "show", "abc")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "poll id must be a positive integer")

	code, _, stderr = c.run("", "dance")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: quickpoll")

	code, _, _ = c.run("", "vote", "1")
	assert.Equal(t, 2, code)

	code, _, _ = c.run("")
	assert.Equal(t, 2, code)
}

func TestCLI_Watch(t *testing.T) {
	c := newCLI(t)

	api := client.New(c.apiURL)
	session, err := api.SignIn(context.Background(), testutil.TestUser.Email, testutil.TestPassword)
	require.NoError(t, err)
	api.AccessToken = session.AccessToken
	poll, err := api.CreatePoll(context.Background(), "Lunch?", []string{"Pizza", "Tacos"})
	require.NoError(t, err)

	script := strings.Join([]string{
		"",
		"vote " + itoa(poll.Options[0].ID),
		"vote 999999",
		`load "not a number"`,
		"bogus",
		"load 999999",
		"vote 1",
		"quit",
		"vote " + itoa(poll.Options[0].ID),
	}, "\n")

	code, stdout, stderr := c.run(script, "watch", itoa(poll.ID))
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, stdout, "Poll #"+itoa(poll.ID)+": Lunch?")
	assert.Contains(t, stdout, "0 votes total")
	assert.Contains(t, stdout, "1 vote total")
	assert.Contains(t, stdout, "! Option not found for this poll.")
	assert.Contains(t, stdout, "! poll id must be a positive integer")
	assert.Contains(t, stdout, `! unknown command "bogus"`)
	assert.Contains(t, stdout, "! Poll #999999 not found.")
	assert.Contains(t, stdout, "(no poll loaded)")
	assert.Contains(t, stdout, "! no poll loaded; use: load POLL_ID")

	// Lines after quit are ignored
	fetched, err := api.FetchPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fetched.Options[0].Votes)
}

func TestCLI_WatchCreate(t *testing.T) {
	c := newCLI(t)
	code, _, _ := c.run("", "signin", testutil.TestUser.Email, testutil.TestPassword)
	require.Equal(t, 0, code)

	code, stdout, stderr := c.run(`create "Tea or coffee?" Tea Coffee`+"\nstop\n", "watch")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, ": Tea or coffee?")
	assert.Contains(t, stdout, "Stopped refreshing.")
}

func TestRenderPoll(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	poll := models.Poll{
		ID:        7,
		Question:  "Lunch?",
		CreatedAt: now.Add(-3 * time.Minute),
		Options: []models.Option{
			{ID: 11, Text: "Pizza", Votes: 1},
			{ID: 12, Text: "Tacos", Votes: 3},
		},
	}

	var buf bytes.Buffer
	renderPoll(&buf, poll, now)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, "Poll #7: Lunch?", lines[0])
	assert.Equal(t, "  created 3 minutes ago", lines[1])
	assert.Equal(t, "  [11] Pizza  #####...............  1 vote (25%)", lines[2])
	assert.Equal(t, "  [12] Tacos  ###############.....  3 votes (75%)", lines[3])
	assert.Equal(t, "  4 votes total", lines[4])
}

func TestRenderPoll_NoVotes(t *testing.T) {
	var buf bytes.Buffer
	renderPoll(&buf, models.Poll{ID: 1, Question: "Q?", Options: []models.Option{{ID: 1, Text: "A"}, {ID: 2, Text: "Longer"}}}, time.Now())

	out := buf.String()
	assert.Contains(t, out, "  [1] A       ....................  0 votes (0%)")
	assert.Contains(t, out, "0 votes total")
	assert.NotContains(t, out, "created")
}

func TestCountVotes(t *testing.T) {
	assert.Equal(t, "0 votes", countVotes(0))
	assert.Equal(t, "1 vote", countVotes(1))
	assert.Equal(t, "1,234 votes", countVotes(1234))
}

func TestSamePoll(t *testing.T) {
	a := models.Poll{ID: 1, Question: "Q", Options: []models.Option{{ID: 1, Text: "A", Votes: 1}}}
	b := a
	b.Options = []models.Option{{ID: 1, Text: "A", Votes: 2}}

	assert.True(t, samePoll(a, a))
	assert.False(t, samePoll(a, b))
	assert.False(t, samePoll(a, models.Poll{ID: 2, Question: "Q", Options: a.Options}))
}

func TestSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	st, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, client.DefaultBaseURL, st.APIURL())
	assert.Empty(t, st.AccessToken())

	st.SetAPIURL("https://polls.example.com")
	st.SetSession("a@b.c", "access", "refresh")
	require.NoError(t, st.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "https://polls.example.com", reloaded.APIURL())
	assert.Equal(t, "a@b.c", reloaded.Email())
	assert.Equal(t, "access", reloaded.AccessToken())
	assert.Equal(t, "refresh", reloaded.RefreshToken())
}

func TestSettings_EnvOverride(t *testing.T) {
	t.Setenv("QUICKPOLL_API_URL", "http://env.example:4000")

	st, err := loadSettings(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://env.example:4000", st.APIURL())
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
