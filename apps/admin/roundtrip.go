package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/prefeitura-rio/gorio-admin/core/markdown"
)

var errNotFixedPoint = errors.New("document changes on round trip")

// roundTrip parses file the way the editor loads a description and renders it back.
// Any difference is printed as a unified diff.
func (cli *commandLine) roundTrip(file string) error {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return err
	}
	in := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	out := markdown.ToMarkdown(markdown.FromMarkdown(in))
	if in == out {
		fmt.Fprintln(cli.out, "ok")
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(in + "\n"),
		B:        difflib.SplitLines(out + "\n"),
		FromFile: file,
		ToFile:   file + " (round trip)",
		Context:  3,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(cli.out, diff)
	return errNotFixedPoint
}
