package main

import (
	"os"

	"github.com/PontoAdmin/ponto-admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
