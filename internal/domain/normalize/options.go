// Package normalize turns raw game rows into the canonical game list.
package normalize

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithDropDraws removes exact-score draws during normalization. The default
// policy keeps them.
func WithDropDraws() Option {
	return func(n *Normalizer) {
		n.dropDraws = true
	}
}
