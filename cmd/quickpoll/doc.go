// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Quickpoll is a command line client for the QuickPoll API.

	quickpoll signin you@example.com secret1
	quickpoll create "Lunch?" Pizza Tacos
	quickpoll vote 12 31
	quickpoll watch 12

The session is kept in ~/.config/quickpoll/config.yaml (see --config).
Keys can be overridden with QUICKPOLL_API_URL, QUICKPOLL_ACCESS_TOKEN and
so on.

watch re-fetches the poll every --interval and redraws it when the counts
change. While watching, stdin accepts load, vote, create, stop and quit;
arguments are split like a shell, so quote a question with spaces.
*/
package main
