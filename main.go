package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/rs/zerolog"

	riskgate "github.com/miltonvve/riskgate/src"
	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
)

var buildVersion = "dev"
var buildCommit = "dirty"

func main() {
	args := &CLI{}
	parser, err := parseArgs(args)
	abort(parser, err)

	logger := config.ConfigureLogger(args.Debug)

	domain.BuildInfo.Version = buildVersion
	domain.BuildInfo.Commit = buildCommit

	abort(parser, Run(parser, args, logger))
}

type CLI struct {
	Debug  bool                `arg:"--debug" help:"debugging output"`
	Start  *riskgate.StartCmd  `arg:"subcommand:start" help:"run the decision engine as a service"`
	Decide *riskgate.DecideCmd `arg:"subcommand:decide" help:"assess one change and recommend a strategy"`
	Record *riskgate.RecordCmd `arg:"subcommand:record" help:"append a deployment outcome to the ledger"`
}

func Version() string {
	return fmt.Sprintf("%s (%s)", buildVersion, buildCommit)
}

func (CLI) Version() string {
	return fmt.Sprintf("riskgate %s", Version())
}

func abort(parser *arg.Parser, err error) {
	switch err {
	case nil:
		return
	case arg.ErrHelp:
		parser.WriteHelp(os.Stderr)
		os.Exit(0)
	case arg.ErrVersion:
		fmt.Fprintln(os.Stdout, Version())
		os.Exit(0)
	default:
		fmt.Fprint(os.Stderr, err, "\n")
		os.Exit(1)
	}
}

func parseArgs(args *CLI) (parser *arg.Parser, err error) {
	parser, err = arg.NewParser(arg.Config{}, args)
	if err != nil {
		return
	}

	err = parser.Parse(os.Args[1:])
	return
}

func Run(parser *arg.Parser, args *CLI, logger *zerolog.Logger) error {
	switch {
	case args.Start != nil:
		return args.Start.Run(logger)
	case args.Decide != nil:
		return args.Decide.Run(logger)
	case args.Record != nil:
		return args.Record.Run(logger)
	default:
		parser.WriteHelp(os.Stderr)
	}
	return nil
}
