// Package main provides the entry point for the spiderkit CLI.
//
// Spiderkit crawls e-commerce sites, classifies every page it fetches
// (item, navigation, mixed, unknown), and steers the crawl according to
// a pluggable strategy: full discovery, navigation-only, items-only, or
// pagination-only.
//
// Usage:
//
//	spiderkit crawl https://shop.example/
//	spiderkit crawl --strategy items_only --seed-file seeds.txt
//
// See --help for all available options.
package main

// main is the entry point for spiderkit.
func main() {
	Execute()
}
