// Package filters provides the client-side types for a policy engine's
// Compile API, which partially evaluates a policy into a data filter (UCAST
// or SQL) plus optional column masks.
//
// Select a Dialect, send a CompileRequest, and read the filter and masks
// from the CompileResponse:
//
//	client, err := filters.NewClient(filters.WithAPIURL("http://localhost:8181"))
//
//	resp, err := client.Compile(ctx, "filters/include", filters.SQLPostgreSQL, &filters.CompileRequest{
//	    Input:    map[string]any{"user": "alice"},
//	    Unknowns: []string{"input.tickets"},
//	    Options:  &filters.CompileOptions{MaskRule: "data.filters.masks"},
//	})
//	where, err := resp.Result.SQL()
//
// The types can also be used with any other HTTP client: Dialect.AcceptHeader
// gives the Accept header and Dialect.OptionString the payload value.
package filters
