package cmd

import (
	"flag"

	"github.com/etnz/folio/config"
	"github.com/etnz/folio/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the commands of c and their flags for shell completion.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(flag.CommandLine),
	}
	root.Flags["store"] = predict.Set{config.StoreDemo, config.StoreSheet, config.StoreSQLite}
	root.Flags["db"] = predict.Files("*.db")

	c.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		f := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
		sub.SetFlags(f)
		root.Sub[sub.Name()] = &complete.Command{Flags: flagPredictors(f), Args: predict.Nothing}
	})

	if topic, ok := root.Sub["topic"]; ok {
		topics, _ := docs.GetAllTopics()
		topic.Args = predict.Set(topics)
	}
	if publish, ok := root.Sub["publish"]; ok {
		publish.Flags["o"] = predict.Files("*")
		publish.Flags["frontmatter"] = predict.Files("*")
	}
	return root
}

// flagPredictors predicts nothing after boolean flags, and anything after the others.
func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	predictors := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			predictors[fl.Name] = predict.Nothing
			return
		}
		predictors[fl.Name] = predict.Something
	})
	return predictors
}
