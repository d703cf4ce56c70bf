package bastion

import (
	"bytes"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// auditLog is an in-memory JSON sink kept alongside the stderr text
// handler, so a caller (or a test) can inspect what the Vault Manager
// logged about its own lifecycle transitions without parsing stderr.
var auditLog bytes.Buffer

// newLifecycleLogger builds the structured logger VaultManager uses for
// unlock and save transitions (Create logs through its Save): a human-readable stderr handler
// fanned out to an in-memory JSON handler via slog-multi, the way
// multi-sink logging is wired in the wider examples corpus. This never
// sits on the hot cryptographic path (KDF, AEAD, canonicalization stay
// silent and return errors instead).
func newLifecycleLogger() *slog.Logger {
	handler := slogmulti.Fanout(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&auditLog, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	return slog.New(handler)
}
