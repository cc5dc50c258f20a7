package svcreg

import "strings"

// NameSeparator separates the components of a hierarchical name.
const NameSeparator = "/"

// DefaultEnvPrefix is the environment prefix stripped during lookup: a name
// of the form "env/leaf" resolves as "leaf". Override with WithEnvPrefix.
const DefaultEnvPrefix = "env"

// SplitName splits a hierarchical name into its components.
func SplitName(name string) []string {
	return strings.Split(name, NameSeparator)
}

// JoinName joins components into a hierarchical name.
func JoinName(parts ...string) string {
	return strings.Join(parts, NameSeparator)
}

// LeafName returns the last component of a hierarchical name.
func LeafName(name string) string {
	if idx := strings.LastIndex(name, NameSeparator); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// normalizeName translates names carrying the environment prefix to their
// leaf component, so "env/leaf" and "leaf" address the same binding.
func (r *Registry) normalizeName(name string) string {
	if r.envPrefix == "" {
		return name
	}

	idx := strings.LastIndex(name, NameSeparator)
	if idx < 0 || name[:idx] != r.envPrefix {
		return name
	}

	leaf := name[idx+1:]
	r.logger.Debug("Name translated for lookup", "from", name, "to", leaf)
	return leaf
}
