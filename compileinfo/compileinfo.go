// Package compileinfo reports which build of a tool produced a set of
// results, from the VCS stamps the Go toolchain embeds.
package compileinfo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
)

type CompileInfo struct {
	Tool       string
	Module     string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	commit := c.Commit
	if commit == "" {
		commit = "unknown"
	}
	if c.Modified {
		commit += "+dirty"
	}

	when := ""
	if c.CommitTime != "" {
		when = " (" + c.CommitTime + ")"
	}

	return fmt.Sprintf("%s from %s, built with %s at commit %s%s", c.Tool, c.Module, c.GoVersion, commit, when)
}

func Get() CompileInfo {
	out := CompileInfo{
		Tool: filepath.Base(os.Args[0]),
	}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Module = z.Main.Path
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// Fprint writes the build banner to w.
func Fprint(w io.Writer) {
	fmt.Fprintf(w, "%s\n", Get())
}
