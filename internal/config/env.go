package config

import (
	"strconv"
	"strings"
	"time"
)

// env reads optional values through a lookup function such as os.LookupEnv.
type env func(string) (string, bool)

func (e env) str(k, d string) string {
	if v, ok := e(k); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return d
}

func (e env) flag(k string, d bool) bool {
	switch strings.ToLower(e.str(k, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func (e env) num(k string, d int) int {
	if n, err := strconv.Atoi(e.str(k, "")); err == nil {
		return n
	}
	return d
}

func (e env) dur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(e.str(k, "")); err == nil {
		return dur
	}
	return d
}

func (e env) list(k string) []string {
	var out []string
	for _, p := range strings.Split(e.str(k, ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
