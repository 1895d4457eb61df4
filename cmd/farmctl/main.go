package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophfarm/internal/cli"
)

func main() {
	if err := cli.NewApp().Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
