package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/modkeeper/cmd/modkeeper"
	"github.com/arthur-debert/modkeeper/internal/version"
)

func main() {
	rootCmd := modkeeper.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "MODKEEPER",
		Section: "1",
		Source:  "modkeeper " + version.Version,
		Manual:  "modkeeper manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
