// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard
// slog package.
//
// A crawler logs URLs constantly, and real-world URLs carry secrets:
// session tokens in query strings, API keys pasted into seed lists,
// basic-auth userinfo. This package extends slog to provide:
//   - Automatic masking of sensitive attribute values (cookies, tokens)
//   - Scrubbing of credential-bearing query parameters inside logged URLs
//   - Configurable log levels with verbose mode support
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("page fetched",
//	    "cookie", "session=abc123",                       // masked entirely
//	    "url", "https://shop.example/cart?token=s3cr3t",  // token scrubbed
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
