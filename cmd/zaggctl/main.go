// zaggctl encodes and runs sorted set aggregations from the command line.
//
//	zaggctl args --keys a,b --weights 2,0.5 --aggregate max
//	zaggctl union --addr localhost:6379 --keys a,b --dest out
//	zaggctl inter --addr localhost:6379 --keys a,b --with-scores
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/kailas-cloud/zagg"
	"github.com/kailas-cloud/zagg/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("subcommand required")
	}

	var err error
	switch args[0] {
	case "args":
		err = runArgs(args[1:], stdout)
	case "union", "inter":
		err = runCombine(ctx, args[0], args[1:], stdout)
	case "version", "--version":
		fmt.Fprintf(stdout, "zaggctl %s (%s)\n", version.Version, version.Commit)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\nRun 'zaggctl --help' for usage.", args[0])
	}
	if errors.Is(err, errHelpShown) {
		return nil
	}
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `zaggctl - sorted set aggregation for Valkey and Redis

Usage:
  zaggctl <command> [flags]

Commands:
  args    print the encoded argument block without contacting a server
  union   run ZUNION / ZUNIONSTORE
  inter   run ZINTER / ZINTERSTORE
  version print version
`)
}

// keyFlags describe the source key set shared by every command.
type keyFlags struct {
	Keys      []string
	Weights   []float64
	Aggregate string
}

// AddFlags registers the key set flags on flagSet.
func (k *keyFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringSliceVarP(&k.Keys, "keys", "k", nil, "source keys, comma separated")
	flagSet.Float64SliceVarP(&k.Weights, "weights", "w", nil, "one weight per key, comma separated")
	flagSet.StringVarP(&k.Aggregate, "aggregate", "a", "", "aggregate policy: sum, min or max")
}

// Options converts the flags into an encoder option block.
func (k *keyFlags) Options() (zagg.TextOptions, error) {
	var ks zagg.KeySet[string]
	if len(k.Weights) > 0 {
		var err error
		ks, err = zagg.WeightedKeys(k.Keys, k.Weights)
		if err != nil {
			return zagg.TextOptions{}, err
		}
	} else {
		ks = zagg.Keys(k.Keys...)
	}

	opts := zagg.NewOptions(ks)
	if k.Aggregate != "" {
		p, err := zagg.ParsePolicy(k.Aggregate)
		if err != nil {
			return zagg.TextOptions{}, err
		}
		opts = opts.WithAggregate(p)
	}
	return opts, nil
}

func runArgs(args []string, stdout io.Writer) error {
	var keys keyFlags
	flagSet := pflag.NewFlagSet("zaggctl args", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	keys.AddFlags(flagSet)

	if err := parseFlags(flagSet, args, stdout); err != nil {
		return err
	}

	opts, err := keys.Options()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, quoteTokens(opts.Args()))
	return nil
}

// connectionFlags describe how to reach the server.
type connectionFlags struct {
	Driver     string
	Addrs      []string
	Username   string
	Password   string
	ClientName string
	Standalone bool
	Timeout    time.Duration
}

// AddFlags registers the connection flags on flagSet.
func (c *connectionFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.Driver, "driver", "valkey", "server flavour: valkey or redis")
	flagSet.StringSliceVar(&c.Addrs, "addr", []string{"localhost:6379"}, "server or cluster seed addresses")
	flagSet.StringVar(&c.Username, "user", "", "ACL username")
	flagSet.StringVar(&c.Password, "password", os.Getenv("ZAGG_PASSWORD"), "password (default $ZAGG_PASSWORD)")
	flagSet.StringVar(&c.ClientName, "client-name", "zaggctl", "connection name reported to the server")
	flagSet.BoolVar(&c.Standalone, "standalone", false, "skip cluster topology discovery")
	flagSet.DurationVar(&c.Timeout, "timeout", 10*time.Second, "overall command timeout")
}

// ClientOptions converts the flags into SDK options.
func (c *connectionFlags) ClientOptions() ([]zagg.Option, error) {
	var opts []zagg.Option
	switch c.Driver {
	case "valkey":
		opts = append(opts, zagg.WithValkey(c.Password, c.Addrs...))
	case "redis":
		opts = append(opts, zagg.WithRedis(c.Password, c.Addrs...))
	default:
		return nil, fmt.Errorf("unknown driver %q (want valkey or redis)", c.Driver)
	}
	if c.Username != "" {
		opts = append(opts, zagg.WithCredentials(c.Username, c.Password))
	}
	if c.ClientName != "" {
		opts = append(opts, zagg.WithClientName(c.ClientName))
	}
	if c.Standalone {
		opts = append(opts, zagg.WithStandalone())
	}
	return opts, nil
}

func runCombine(ctx context.Context, op string, args []string, stdout io.Writer) error {
	var (
		keys       keyFlags
		conn       connectionFlags
		dest       string
		withScores bool
	)
	flagSet := pflag.NewFlagSet("zaggctl "+op, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	keys.AddFlags(flagSet)
	conn.AddFlags(flagSet)
	flagSet.StringVarP(&dest, "dest", "d", "", "store the result under this key")
	flagSet.BoolVar(&withScores, "with-scores", false, "print member scores")

	if err := parseFlags(flagSet, args, stdout); err != nil {
		return err
	}
	if dest != "" && withScores {
		return errors.New("--with-scores cannot be combined with --dest")
	}

	opts, err := keys.Options()
	if err != nil {
		return err
	}
	clientOpts, err := conn.ClientOptions()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, conn.Timeout)
	defer cancel()

	client, err := zagg.New(ctx, clientOpts...)
	if err != nil {
		return err
	}
	defer client.Close()

	if dest != "" {
		var n int64
		if op == "union" {
			n, err = client.UnionStore(ctx, dest, opts)
		} else {
			n, err = client.InterStore(ctx, dest, opts)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "(integer) %d\n", n)
		return nil
	}

	var members []zagg.Member
	switch {
	case op == "union" && withScores:
		members, err = client.UnionWithScores(ctx, opts)
	case withScores:
		members, err = client.InterWithScores(ctx, opts)
	default:
		var names []string
		if op == "union" {
			names, err = client.Union(ctx, opts)
		} else {
			names, err = client.Inter(ctx, opts)
		}
		for _, name := range names {
			members = append(members, zagg.Member{Name: name})
		}
	}
	if err != nil {
		return err
	}
	printMembers(stdout, members, withScores)
	return nil
}

// parseFlags parses args and rejects positional arguments.
func parseFlags(flagSet *pflag.FlagSet, args []string, stdout io.Writer) error {
	flagSet.BoolP("help", "h", false, "show help")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return printFlagHelp(flagSet, stdout)
		}
		return fmt.Errorf("%w\n\nRun '%s --help' for usage.", err, flagSet.Name())
	}
	if help, _ := flagSet.GetBool("help"); help {
		return printFlagHelp(flagSet, stdout)
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	return nil
}

var errHelpShown = errors.New("help shown")

func printFlagHelp(flagSet *pflag.FlagSet, w io.Writer) error {
	fmt.Fprintf(w, "Usage:\n  %s [flags]\n\nFlags:\n", flagSet.Name())
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
	return errHelpShown
}

func printMembers(w io.Writer, members []zagg.Member, withScores bool) {
	if len(members) == 0 {
		fmt.Fprintln(w, "(empty array)")
		return
	}
	for i, m := range members {
		if withScores {
			fmt.Fprintf(w, "%d) %s %s\n", i+1, strconv.Quote(m.Name),
				strconv.FormatFloat(m.Score, 'g', -1, 64))
			continue
		}
		fmt.Fprintf(w, "%d) %s\n", i+1, strconv.Quote(m.Name))
	}
}

func quoteTokens(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = strconv.Quote(t)
	}
	return strings.Join(quoted, " ")
}
