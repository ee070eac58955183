// Package templates renders the dashboard pages and HTMX partials as templ
// components.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	templruntime "github.com/a-h/templ/runtime"
)

// out accumulates the first write error so components read top to bottom.
type out struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (o *out) raw(parts ...string) {
	for _, p := range parts {
		if o.err != nil {
			return
		}
		_, o.err = io.WriteString(o.w, p)
	}
}

// text writes s HTML-escaped.
func (o *out) text(s string) {
	o.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (o *out) attr(name, value string) {
	o.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// href writes a sanitized href attribute; unsafe schemes become about:invalid.
func (o *out) href(u templ.SafeURL) {
	o.attr("href", string(u))
}

func (o *out) child(c templ.Component) {
	if o.err != nil || c == nil {
		return
	}
	o.err = c.Render(o.ctx, o.w)
}

// component adapts a body writer into a templ.Component. Writes go through
// the pooled templ buffer; nested components share the outermost one.
func component(body func(o *out)) templ.Component {
	return templruntime.GeneratedTemplate(func(in templruntime.GeneratedComponentInput) (err error) {
		ctx := in.Context
		if err := ctx.Err(); err != nil {
			return err
		}
		buf, existing := templruntime.GetBuffer(in.Writer)
		if !existing {
			defer func() {
				if relErr := templruntime.ReleaseBuffer(buf); err == nil {
					err = relErr
				}
			}()
		}
		o := &out{ctx: templ.InitializeContext(ctx), w: buf}
		body(o)
		return o.err
	})
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
