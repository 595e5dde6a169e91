package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/folio/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `pcs topic [-l] [<topic>...]

  Show documentation for the given topics, '*' for all of them. Without
  topic, shows the list of topics.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "l", false, "Only list the topics names and titles.")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		topics, err := docs.GetAllTopics()
		if err != nil {
			return fail("Error listing topics: %v", err)
		}
		var b strings.Builder
		for _, topic := range topics {
			title, err := docs.Title(topic)
			if err != nil {
				return fail("Error reading topic %q: %v", topic, err)
			}
			fmt.Fprintf(&b, "%s\t%s\n", topic, title)
		}
		fmt.Fprint(stdout, b.String())
		return subcommands.ExitSuccess
	}

	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}

	doc, err := docs.GetTopics(topics...)
	if err != nil {
		return fail("Error reading doc: %v", err)
	}
	printMarkdown(doc)

	return subcommands.ExitSuccess
}
