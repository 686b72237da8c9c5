package main

import (
	"log"
	"os"
	"time"

	"github.com/prefeitura-rio/gorio-admin/core"
	"github.com/prefeitura-rio/gorio-admin/services/identity"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// start CLI
	cli := commandLine{
		out:        os.Stdout,
		clientID:   conf.Auth.ClientID,
		policyFile: conf.Auth.PolicyFile,
		refresher:  identity.NewProvider(conf.Auth, conf.Upstream.Timeout),
		now:        time.Now,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
