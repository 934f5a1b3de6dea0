package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

// ScriptReply is what a fake executable prints for one argument list.
type ScriptReply struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// WriteFakeExecutable writes a shell script named name that answers by its
// full argument list ("$*") and exits 1 with "unexpected arguments" on
// stderr for anything else. Returns the script path.
func WriteFakeExecutable(t *testing.T, name string, replies map[string]ScriptReply) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("#!/bin/sh\ncase \"$*\" in\n")

	keys := make([]string, 0, len(replies))
	for k := range replies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, args := range keys {
		reply := replies[args]
		sb.WriteString("  " + shellQuote(args) + ")\n")
		if reply.Stdout != "" {
			sb.WriteString("    printf '%s\\n' " + shellQuote(reply.Stdout) + "\n")
		}
		if reply.Stderr != "" {
			sb.WriteString("    printf '%s\\n' " + shellQuote(reply.Stderr) + " >&2\n")
		}
		sb.WriteString("    exit " + strconv.Itoa(reply.ExitCode) + " ;;\n")
	}
	sb.WriteString("esac\necho \"unexpected arguments: $*\" >&2\nexit 1\n")

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(sb.String()), 0o755); err != nil {
		t.Fatalf("failed to write fake executable %s: %v", name, err)
	}
	return path
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
