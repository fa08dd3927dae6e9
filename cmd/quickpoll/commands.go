// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/youjianchi/quickPoll/models"
)

var errNotSignedIn = errors.New("not signed in; run: quickpoll signin EMAIL PASSWORD")

func (a *app) signUp(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	user, err := a.api.SignUp(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	a.printf("Account created for %s. Sign in with: quickpoll signin %s PASSWORD\n", user.Email, user.Email)
	return nil
}

func (a *app) signIn(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	session, err := a.api.SignIn(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	a.settings.SetSession(session.User.Email, session.AccessToken, session.RefreshToken)
	if err := a.settings.Save(); err != nil {
		return err
	}
	a.api.AccessToken = session.AccessToken
	a.printf("Signed in as %s.\n", session.User.Email)
	return nil
}

// signOut forgets the local session even when the server rejects the
// refresh token.
func (a *app) signOut(ctx context.Context) error {
	if err := a.api.SignOut(ctx, a.settings.RefreshToken()); err != nil {
		a.logger.Warn("sign-out request failed", "error", err)
	}

	a.settings.SetSession("", "", "")
	if err := a.settings.Save(); err != nil {
		return err
	}
	a.api.AccessToken = ""
	a.printf("Signed out.\n")
	return nil
}

func (a *app) whoAmI(ctx context.Context) error {
	if a.api.AccessToken == "" {
		return errNotSignedIn
	}
	user, err := a.api.Session(ctx)
	if err != nil {
		return err
	}
	a.printf("%s (%s)\n", user.Email, user.ID)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	poll, err := a.createPoll(ctx, args[0], args[1:])
	if err != nil {
		return err
	}
	a.showPoll(poll)
	return nil
}

func (a *app) createPoll(ctx context.Context, question string, options []string) (models.Poll, error) {
	if a.api.AccessToken == "" {
		return models.Poll{}, errNotSignedIn
	}
	return a.api.CreatePoll(ctx, question, options)
}

func (a *app) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	pollID, err := parseID("poll id", args[0])
	if err != nil {
		return err
	}
	poll, err := a.api.FetchPoll(ctx, pollID)
	if err != nil {
		return err
	}
	a.showPoll(poll)
	return nil
}

func (a *app) vote(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	pollID, err := parseID("poll id", args[0])
	if err != nil {
		return err
	}
	optionID, err := parseID("option id", args[1])
	if err != nil {
		return err
	}
	poll, err := a.api.Vote(ctx, pollID, optionID)
	if err != nil {
		return err
	}
	a.showPoll(poll)
	return nil
}

func (a *app) showPoll(poll models.Poll) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	renderPoll(a.out, poll, a.now())
}

func parseID(what, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", what, raw)
	}
	return id, nil
}
