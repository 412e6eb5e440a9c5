// Package client is a Go client for the marketsearch HTTP API.
//
//	c := client.New("http://localhost:8080", client.WithAPIKey(os.Getenv("ADMIN_API_KEY")))
//	if _, err := c.Train(ctx); err != nil { ... }
//	page, err := c.Query(ctx, "used ultrasound texas under 500", client.Page(1, 10))
//	if errors.Is(err, client.ErrNoMatches) { ... }
package client
