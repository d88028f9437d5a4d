package main

import (
	cmd "github.com/getzep/nlp-annotator-api/cmd/annotator"
	"github.com/getzep/nlp-annotator-api/internal"
)

var log = internal.GetLogger()

func main() {
	log.Info("Starting annotator")
	cmd.Execute()
}
