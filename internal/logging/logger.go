package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON logger on stdout as the process default. It
// runs before the database connects; once the Postgres sink is ready
// the default is replaced with a Fanout that includes it.
func Setup() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}
