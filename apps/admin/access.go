package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prefeitura-rio/gorio-admin/core/access"
)

var (
	errAccessDenied = errors.New("access denied")
	errUnknownRole  = errors.New("unknown role")
)

// roleNames lists the console roles, highest first.
func roleNames() string {
	names := make([]string, 0, len(access.AllRoles))
	for _, role := range access.AllRoles {
		names = append(names, string(role))
	}
	return strings.Join(names, ", ")
}

func loadPolicy(file string) (*access.Policy, error) {
	if file == "" {
		return access.DefaultPolicy(), nil
	}
	return access.LoadPolicyFile(file)
}

func (cli *commandLine) checkAccess(policyFile, route, roleName string) error {
	role, ok := access.ParseRole(roleName)
	if !ok {
		return fmt.Errorf("%w: %q, want one of %s", errUnknownRole, roleName, roleNames())
	}
	policy, err := loadPolicy(policyFile)
	if err != nil {
		return err
	}

	if policy.IsPublic(route) {
		fmt.Fprintf(cli.out, "%s: public\n", route)
		return nil
	}
	if !policy.HasAccess(route, role) {
		fmt.Fprintf(cli.out, "%s: denied for %s\n", route, role)
		return errAccessDenied
	}
	fmt.Fprintf(cli.out, "%s: allowed for %s\n", route, role)
	return nil
}

func (cli *commandLine) menu(policyFile, roleName string) error {
	role, ok := access.ParseRole(roleName)
	if !ok {
		return fmt.Errorf("%w: %q, want one of %s", errUnknownRole, roleName, roleNames())
	}
	policy, err := loadPolicy(policyFile)
	if err != nil {
		return err
	}
	for _, item := range policy.Menu(role) {
		fmt.Fprintf(cli.out, "%-24s %s\n", item.Title, item.URL)
	}
	return nil
}
