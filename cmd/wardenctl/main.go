package main

import (
	"log"
	"os"

	"github.com/floorwarden/warden/internal/client"
	"github.com/floorwarden/warden/internal/config"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "WARDEN : ", log.LstdFlags)

	c, err := client.New(config.Conf.GetString("PUBLIC_URL"), client.FileSession{Path: client.DefaultSessionPath()})
	if err != nil {
		logger.Fatal(err)
	}

	cli := commandLine{api: c, out: os.Stdout}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("error: %s", err)
		}
		os.Exit(1)
	}
}
