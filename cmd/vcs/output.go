package main

import (
	"fmt"
	"io"

	"vcs/internal/digest"
	"vcs/internal/repository"
	"vcs/shared/types"

	"github.com/fatih/color"
)

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func printAdded(w io.Writer, name string, d digest.Digest) {
	fmt.Fprintf(w, "Added %s with hash %s\n", name, d)
}

func printFailure(w io.Writer, name string, err error) {
	fmt.Fprintf(w, "%s %s: %v\n", red("Failed to add"), name, err)
}

func printStaged(w io.Writer, entries []shared.Entry) {
	fmt.Fprintln(w, "Staged for commit:")
	for _, e := range entries {
		fmt.Fprintf(w, "  %s  %s\n", green(e.Digest.Short()), e.Name)
	}
}

func printHistory(w io.Writer, commits []shared.Commit) {
	if len(commits) == 0 {
		fmt.Fprintln(w, "No commit history found")
		return
	}

	for _, c := range commits {
		fmt.Fprintf(w, "\n%s\n", yellow("Commit "+c.ID))
		fmt.Fprintf(w, "Date: %s\n", c.DateString())
		for _, e := range c.Entries {
			fmt.Fprintf(w, "  %s: %s\n", e.Name, e.Digest)
		}
	}
}

func printObjectInfo(w io.Writer, info *repository.ObjectInfo) {
	fmt.Fprintf(w, "%s %s\n", cyan("Object"), info.Digest)
	fmt.Fprintf(w, "Algorithm: %s\n", info.Algorithm)
	fmt.Fprintf(w, "CID:       %s\n", info.CID)
	fmt.Fprintf(w, "Path:      %s\n", info.Path)
	fmt.Fprintf(w, "Size:      %d\n", info.Size)
	if info.Meta != nil {
		fmt.Fprintf(w, "Written:   %d times, last %s\n", info.Meta.Writes, info.Meta.WrittenAt.Local().Format("2006-01-02 15:04:05"))
	}
}

func printVerifyReport(w io.Writer, report *repository.VerifyReport) {
	for _, d := range report.Corrupt {
		fmt.Fprintf(w, "%s %s\n", red("corrupt"), d)
	}
	for _, d := range report.Missing {
		fmt.Fprintf(w, "%s %s\n", red("missing"), d)
	}
	if report.OK() {
		fmt.Fprintf(w, "%s %d objects checked\n", green("ok"), report.Checked)
		return
	}
	fmt.Fprintf(w, "%d objects checked\n", report.Checked)
}
