package main

import (
	"context"
	"fmt"

	"github.com/prefeitura-rio/gorio-admin/core/access"
)

// refreshToken exchanges token at the identity provider and describes the new session.
func (cli *commandLine) refreshToken(token string) error {
	pair, err := cli.refresher.Refresh(context.Background(), token)
	if err != nil {
		return err
	}
	var dec access.TokenDecoder
	claims, err := dec.Decode(pair.AccessToken)
	if err != nil {
		return err
	}

	sess := access.NewSession(claims, pair.AccessToken, cli.clientID)
	role := string(sess.Role)
	if role == "" {
		role = "none"
	}
	fmt.Fprintf(cli.out, "user:    %s <%s>\n", sess.Username, sess.Email)
	fmt.Fprintf(cli.out, "role:    %s\n", role)
	fmt.Fprintf(cli.out, "expires: %s\n", sess.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(cli.out, "access token:\n%s\n", pair.AccessToken)
	return nil
}
