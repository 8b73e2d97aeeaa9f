package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srgchrksv/bitecast/models"
	"github.com/srgchrksv/bitecast/services"
)

var generatePrompt string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate playlists from the terminal",
	Long: `Generate playlists without the web app.

With --prompt: runs a single request and exits.

Without it: reads one request per line from stdin until "quit" or EOF,
remembering the topics of earlier playlists so suggestions do not repeat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, log, err := setup()
		if log != nil {
			defer log.Sync()
		}
		if err != nil {
			return err
		}
		svc, cleanup, err := buildServices(ctx, cfg, log)
		defer cleanup()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if generatePrompt != "" {
			_, err := runOnce(ctx, svc, out, generatePrompt, nil)
			return err
		}
		return runLoop(ctx, svc, cmd.InOrStdin(), out)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generatePrompt, "prompt", "p", "", "run a single request and exit")
}

// pipeline is the part of services.Services the terminal loop needs.
type pipeline interface {
	ProcessRequest(ctx context.Context, req models.Request) (models.Result, error)
}

var _ pipeline = (*services.Services)(nil)

func runLoop(ctx context.Context, p pipeline, in io.Reader, out io.Writer) error {
	var history []string
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nWhat would you like to learn about? (type 'quit' to exit) ")
		if !scanner.Scan() {
			break
		}
		prompt := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(prompt, "quit") {
			break
		}
		if prompt == "" {
			continue
		}
		topics, err := runOnce(ctx, p, out, prompt, history)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		history = append(history, topics...)
	}
	fmt.Fprintln(out, "Goodbye!")
	return scanner.Err()
}

func runOnce(ctx context.Context, p pipeline, out io.Writer, prompt string, history []string) ([]string, error) {
	res, err := p.ProcessRequest(ctx, models.Request{Prompt: prompt, History: history, SessionID: "cli"})
	if err != nil {
		fmt.Fprintf(out, "Playlist generation failed: %v\n", err)
		return nil, err
	}
	fmt.Fprintf(out, "%s\n  folder: %s\n  segments: %d\n", res.Title, res.FolderPath, len(res.Manifest.Segments))
	for _, seg := range res.Manifest.Segments {
		fmt.Fprintf(out, "  %d. %s (%s)\n", seg.Index, seg.Topic, seg.AudioFile)
	}
	return res.Topics, nil
}
