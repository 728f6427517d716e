package config

import (
	"flag"
	"io"
)

// parses CLI flags for the server binary
func ParseServerFlags(args []string) (Flags, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	envFile := fs.String("env-file", "", "path to a .env file (defaults to ./.env when present)")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return Flags{EnvFile: *envFile}, nil
}
