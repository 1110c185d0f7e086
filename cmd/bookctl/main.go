package main

import (
	"fmt"
	"os"

	"github.com/inkwell/bookstore/pkg/client"
	"github.com/inkwell/bookstore/pkg/version"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "bookctl",
		Usage:   "manage the book store from the terminal",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "base URL of the book store API",
				Value:   "http://localhost:5000",
				EnvVars: []string{"BOOKSTORE_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "request timeout",
				Value: client.DefaultTimeout,
			},
		},
		Commands: []*cli.Command{
			listCommand(),
			showCommand(),
			addCommand(),
			editCommand(),
			deleteCommand(),
			statsCommand(),
		},
	}
}

func newClient(c *cli.Context) *client.Client {
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}
	return client.New(c.String("url"), client.WithTimeout(timeout))
}
