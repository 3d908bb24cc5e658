package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"treasurehunt/pkg/client"
)

const Prompt = "hunt> "

// maxListed 限制单次输出的区域数量
const maxListed = 50

// huntClient is the subset of *client.Client the REPL uses.
type huntClient interface {
	Hunt(regions, groups, treasures int, seed int64) (*client.RunResult, error)
	GetRun(id string) (*client.RunResult, error)
}

func main() {
	var serverAddr string

	cmd := &cobra.Command{
		Use:          "cli",
		Short:        "Interactive client for the treasurehunt TCP server",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "treasurehunt CLI (Target: %s)\n", serverAddr)
			fmt.Fprintln(out, "Connecting...")

			cli, err := client.Dial(serverAddr)
			if err != nil {
				fmt.Fprintln(out, "Tip: Ensure the server is running (e.g. treasurehunt serve).")
				return fmt.Errorf("connection failed: %w", err)
			}
			defer cli.Close()
			fmt.Fprintln(out, "Connected! Type 'help' for commands.")

			repl(cli, os.Stdin, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&serverAddr, "addr", "localhost:9090", "treasurehunt TCP server address")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func repl(cli huntClient, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, Prompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "hunt", "run":
			handleHunt(cli, parts, out)
		case "get":
			handleGet(cli, parts, out)
		case "help":
			printHelp(out)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintf(out, "Unknown command: '%s'. Type 'help'.\n", cmd)
		}
	}
}

func handleHunt(cli huntClient, parts []string, out io.Writer) {
	if len(parts) < 4 {
		fmt.Fprintln(out, "Usage: hunt <regions> <groups> <treasures> [seed]")
		return
	}

	var nums [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(parts[i+1])
		if err != nil {
			fmt.Fprintln(out, "Error: regions, groups and treasures must be integers")
			return
		}
		nums[i] = v
	}
	var seed int64
	if len(parts) > 4 {
		s, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			fmt.Fprintln(out, "Error: seed must be an integer")
			return
		}
		seed = s
	}

	start := time.Now()
	res, err := cli.Hunt(nums[0], nums[1], nums[2], seed)
	duration := time.Since(start)

	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	printResult(out, res, duration)
}

func handleGet(cli huntClient, parts []string, out io.Writer) {
	if len(parts) < 2 {
		fmt.Fprintln(out, "Usage: get <run_id>")
		return
	}

	start := time.Now()
	res, err := cli.GetRun(parts[1])
	duration := time.Since(start)

	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	printResult(out, res, duration)
}

func printResult(out io.Writer, res *client.RunResult, d time.Duration) {
	fmt.Fprintf(out, "Run %s: %d treasures in %d regions, %d groups, seed %d (%v)\n",
		res.ID, len(res.Discoveries), res.Params.Regions, res.Params.Groups, res.Params.Seed, d)

	regions := res.Regions()
	shown := regions
	if len(shown) > maxListed {
		shown = shown[:maxListed]
	}
	strs := make([]string, len(shown))
	for i, r := range shown {
		strs[i] = strconv.Itoa(r)
	}
	fmt.Fprintf(out, "  regions: %s", strings.Join(strs, " "))
	if len(regions) > maxListed {
		fmt.Fprintf(out, " ... and %d more", len(regions)-maxListed)
	}
	fmt.Fprintln(out)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `
Commands:
  hunt <R> <G> <T> [seed]   Run a hunt on the server
  get <run_id>              Show a saved run
  exit                      Exit CLI
	`)
}
