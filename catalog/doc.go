// Package catalog is a registry of named markup templates and the host
// functions their expressions may call.
//
// A [Catalog] is the [lang.Host] of every render it starts: it resolves
// component elements to registered templates, serializes plain elements
// to HTML, and dispatches function calls by dotted name.
//
//	c := catalog.New()
//	_ = c.Register("Greeting", `<p class="hi">Hello, {name}!</p>`, nil)
//	out, _ := c.Render(ctx, "Greeting", map[string]any{"name": "World"})
//	// out == `<p class="hi">Hello, World!</p>`
//
// Templates may be declared in a YAML [Manifest] and loaded with
// [Catalog.Load].
package catalog
