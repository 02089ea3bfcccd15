package main

import (
	"fmt"
	"log"
	"os"
)

func exitOnError(err error) {
	if err != nil {
		os.Exit(1)
	}
}

func main() {
	defer fmt.Println("cleanup")

	exitOnError(nil)

	go func() {
		os.Exit(3)
	}()

	if len(os.Args) > 5 {
		log.Fatalf("too many arguments: %d", len(os.Args)) // want `avoid calling log.Fatalf in main.main`
	}

	os.Exit(2) // want `avoid calling os.Exit in main.main`
}
