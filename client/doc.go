// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is a small HTTP client for the ProperView API, used by pvctl.

	c, err := client.New("http://localhost:3318")
	page, err := c.Listings(ctx, "location=austin&view=map")

Non-2xx responses come back as *APIError carrying the status code and the
server's error message.
*/
package client
