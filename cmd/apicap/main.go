package main

import (
	"os"

	"github.com/patrickjm/apicap/internal/app"
)

func main() {
	os.Exit(app.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
