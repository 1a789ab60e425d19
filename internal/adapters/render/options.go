package render

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithColor enables or disables ANSI styling. Styling is also dropped
// automatically when the writer is not a terminal.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
	}
}

// WithJSONIndent sets the indent used for JSON output. An empty indent gives
// compact output.
func WithJSONIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}
