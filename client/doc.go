// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is a Go client for the QuickPoll HTTP API.

	c := client.New("http://localhost:4000")
	session, err := c.SignIn(ctx, email, password)
	c.AccessToken = session.AccessToken

	poll, err := c.CreatePoll(ctx, "Lunch?", []string{"Pizza", "Tacos"})
	poll, err = c.Vote(ctx, poll.ID, poll.Options[0].ID)

Failed calls return an *APIError carrying the server's message. A 404 also
matches ErrNotFound:

	if errors.Is(err, client.ErrNotFound) { ... }
*/
package client
