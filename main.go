package main

import (
	"os"

	"github.com/symfony-cli/console"

	"github.com/dkarlovi/podcastfy/commands"
)

var (
	// version is overridden at linking time
	version = "dev"
	// buildDate is overridden at linking time
	buildDate string
)

func main() {
	app := &console.Application{
		Name:        "podcastfy",
		Usage:       "Turn web pages into a two-voice podcast MP3",
		Description: "Runs the podcastfy generation library inside a managed Python virtualenv, validates the MP3 it produces and re-synthesizes it from the transcript when it is broken.",
		Version:     version,
		BuildDate:   buildDate,
		Channel:     "stable",
		Commands:    commands.All(),
	}

	app.Run(os.Args)
}
