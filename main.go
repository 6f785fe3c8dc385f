/*
Copyright © 2025 tieubaoca
*/
package main

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/tieubaoca/docqa/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// Credentials may also come from the process environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Error loading .env file", slog.String("error", err.Error()))
	}
}
