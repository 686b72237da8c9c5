package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/prefeitura-rio/gorio-admin/core/access"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out        io.Writer
	clientID   string
	policyFile string
	refresher  access.Refresher
	now        func() time.Time
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  check-access -route ROUTE -role ROLE [-policy FILE] - tell whether ROLE may open ROUTE")
	fmt.Fprintln(cli.out, "  menu -role ROLE [-policy FILE] - list the menu entries ROLE sees")
	fmt.Fprintln(cli.out, "  classify -file COURSE.json [-now RFC3339] - print the display status of courses")
	fmt.Fprintln(cli.out, "  roundtrip -file DOC.md - check that a markdown document survives the editor round trip")
	fmt.Fprintln(cli.out, "  refresh-token - exchange a refresh token (prompted next) for a new session")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	checkAccessCmd := cli.newFlagSet("check-access")
	checkAccessRoute := checkAccessCmd.String("route", "", "The console route, e.g. /gorio/courses.")
	checkAccessRole := checkAccessCmd.String("role", "", "One of "+roleNames()+" (the go: prefix is optional).")
	checkAccessPolicy := checkAccessCmd.String("policy", cli.policyFile, "A policy YAML file. Defaults to the built-in policy.")

	menuCmd := cli.newFlagSet("menu")
	menuRole := menuCmd.String("role", "", "One of "+roleNames()+".")
	menuPolicy := menuCmd.String("policy", cli.policyFile, "A policy YAML file. Defaults to the built-in policy.")

	classifyCmd := cli.newFlagSet("classify")
	classifyFile := classifyCmd.String("file", "", "A course, or a list of courses, as returned by the course API.")
	classifyNow := classifyCmd.String("now", "", "Classify at this RFC3339 time instead of now.")

	roundTripCmd := cli.newFlagSet("roundtrip")
	roundTripFile := roundTripCmd.String("file", "", "The markdown document.")

	refreshCmd := cli.newFlagSet("refresh-token")

	switch args[1] {
	case "check-access":
		if err := checkAccessCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *checkAccessRoute == "" || *checkAccessRole == "" {
			checkAccessCmd.Usage()
			return errHelp
		}
		return cli.checkAccess(*checkAccessPolicy, *checkAccessRoute, *checkAccessRole)

	case "menu":
		if err := menuCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *menuRole == "" {
			menuCmd.Usage()
			return errHelp
		}
		return cli.menu(*menuPolicy, *menuRole)

	case "classify":
		if err := classifyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *classifyFile == "" {
			classifyCmd.Usage()
			return errHelp
		}
		now := cli.now()
		if *classifyNow != "" {
			t, err := time.Parse(time.RFC3339, *classifyNow)
			if err != nil {
				return fmt.Errorf("invalid -now: %w", err)
			}
			now = t
		}
		return cli.classify(*classifyFile, now)

	case "roundtrip":
		if err := roundTripCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *roundTripFile == "" {
			roundTripCmd.Usage()
			return errHelp
		}
		return cli.roundTrip(*roundTripFile)

	case "refresh-token":
		if err := refreshCmd.Parse(args[2:]); err != nil {
			return err
		}
		fmt.Fprint(cli.out, "Enter refresh token:")
		token, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(token) == 0 {
			refreshCmd.Usage()
			return errHelp
		}
		return cli.refreshToken(string(token))

	default:
		cli.printUsage()
		return errHelp
	}
}
