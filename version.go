package main

import (
	"fmt"
	"io"
	"strings"
)

const (
	Package = "wifi-band-analyzer"
)

var (
	GitCommit string
	Tag       string
	BuildTime string
	Authors   string
	BuildNo   string
)

func init() {
	Authors = strings.ReplaceAll(Authors, "SpAcE", " ")
	Tag = strings.ReplaceAll(Tag, ";", "; ")
	if GitCommit == "" {
		GitCommit = "unknown"
	}
	if Tag == "" {
		Tag = "dev"
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s Version information:\n|| Authors: %s\n|| Commit: %s\n|| Tag: %s\n|| Build No: %s\n|| Build Date: %s\n", Package, Authors, GitCommit, Tag, BuildNo, BuildTime)
}
