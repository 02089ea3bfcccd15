// Command usersite fetches a batch of random users and renders them into a
// static site: paginated overview pages, one profile per user and users.json.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/patric-chuzhbe/usersite/internal/app"
)

func run() error {
	application, err := app.New()
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Run(context.Background())
}

func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func main() {
	exitOnError(run())
}
