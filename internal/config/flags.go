package config

import (
	"flag"
	"os"

	"github.com/mlevkov/pagekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   API base URL of the hosting provider
//	-o string   repository owner
//	-r string   repository name
//	-b string   publish branch
//	-i string   App identifier
//	-k string   path to the PEM private key file
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-o", "-r", "-b", "-i", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL of the hosting provider")
	fs.StringVar(&cfg.Owner, "o", cfg.Owner, "repository owner")
	fs.StringVar(&cfg.Repo, "r", cfg.Repo, "repository name")
	fs.StringVar(&cfg.Branch, "b", cfg.Branch, "publish branch")
	fs.StringVar(&cfg.AppID, "i", cfg.AppID, "App identifier")
	fs.StringVar(&cfg.KeyPath, "k", cfg.KeyPath, "path to the PEM private key file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
