// Command xaml tokenizes, parses and renders Xaml documents.
package main

import (
	"os"

	"github.com/xaml-go/xaml/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
