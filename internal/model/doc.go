// Package model defines the core data types shared across spiderkit:
// crawl requests, page records, page-type labels, and crawl strategy modes.
// Types here carry no behavior beyond validation and formatting so that
// every other package can depend on them without import cycles.
package model
