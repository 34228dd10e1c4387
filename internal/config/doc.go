// Package config loads, normalizes, and validates spreadgen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the ALCHEMY_API_KEY environment
// fallback. Template asset paths are derived from the template name when not
// set explicitly, so a config only needs to name the template it uses.
package config
