package main

import (
	"os"

	"github.com/Tetsuya81/QuickLang/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
