package app

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Tetsuya81/QuickLang/internal/auth"
)

func runHashToken(args []string) int {
	fs := flag.NewFlagSet("hash-token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	generate := fs.Bool("generate", false, "Generate a random token and print it with its hash")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	var token string
	switch {
	case *generate && fs.NArg() == 0:
		generated, err := auth.GenerateToken()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
			return 1
		}
		token = generated
	case !*generate && fs.NArg() == 1:
		token = strings.TrimSpace(fs.Arg(0))
	default:
		fmt.Fprintln(os.Stderr, "usage: quicklang hash-token <token> | quicklang hash-token --generate")
		return 2
	}

	hash, err := auth.HashToken(token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash token: %v\n", err)
		return 2
	}

	if *generate {
		fmt.Fprintf(os.Stdout, "API_TOKEN=%s\n", token)
	}
	fmt.Fprintf(os.Stdout, "API_TOKEN_HASH=%s\n", hash)
	return 0
}
