// Package api is a client for the Directus REST API.
//
// A Client resolves endpoints against two roots, <base>/api/ for
// unversioned calls and <base>/api/<version>/ for resource calls, injects
// the bearer token and static headers on every request, and normalizes
// failures into *RemoteError (the server sent a payload) or
// *TransportError (it did not).
//
// Resource methods live in a declarative catalog run through Call:
//
//	c, err := api.New(api.Options{URL: "https://cms.example.com"})
//	if err != nil {
//		return err
//	}
//	if _, err := c.Authenticate(ctx, email, password); err != nil {
//		return err
//	}
//	var rows api.ItemList
//	err = c.Call(ctx, "getItems", []string{"articles"}, map[string]any{
//		"filter": map[string]any{"status": []string{"published", "draft"}},
//	}, &rows)
package api
