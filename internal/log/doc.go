// Package log provides secure logging functionality with automatic redaction
// of personal data and secrets, built on top of the standard slog package.
//
// userclean processes user records, so anything resembling a person's name,
// email or street address must never reach the logs. The SecureHandler
// masks:
//   - attributes whose key names a personal field (name, email, address, ...)
//   - email addresses embedded in any string value, error or message
//   - credentials (passwords, tokens, URL userinfo such as a Pushgateway
//     basic-auth URL)
//
// These values are masked in verbose mode too.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("record rejected",
//	    "email", "jane@example.com", // masked
//	    "reason", "invalid_email",
//	)
//	slog.SetDefault(logger)
package log
