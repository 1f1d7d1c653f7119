// Package envx reads configuration overrides from the process environment,
// optionally seeded from a dotenv file.
package envx

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads a dotenv file into the environment without overriding variables
// that are already set. An empty path means ".env"; a missing file is not an
// error.
func Load(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// String returns the trimmed value of key, or def when unset or blank.
func String(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// Bool returns def unless key holds a value strconv.ParseBool accepts.
func Bool(key string, def bool) bool {
	v, err := strconv.ParseBool(String(key, ""))
	if err != nil {
		return def
	}
	return v
}

// Duration accepts Go duration strings ("3s") or plain integers as seconds.
func Duration(key string, def time.Duration) time.Duration {
	v := String(key, "")
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

// List splits a comma-separated value, dropping blanks.
func List(key string) []string {
	var out []string
	for _, part := range strings.Split(String(key, ""), ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
