// Package config provides configuration structures and utilities for
// spiderkit. It defines the crawl options populated from CLI flags, the
// .spiderkit YAML file with per-domain overrides, and seed-list loading.
package config
