package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"market_assistant/internal/config"
	"market_assistant/internal/core"
	"market_assistant/internal/nodes"
	"market_assistant/src/logger"
	redisstore "market_assistant/src/storage"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var askJSON bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session. Type /clear to forget the conversation
and /exit (or Ctrl-D) to quit.`,
	RunE: runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var seedCacheCmd = &cobra.Command{
	Use:   "seed-cache",
	Short: "Publish the seed catalog to the redis catalog cache",
	RunE:  runSeedCache,
}

var toolCmd = &cobra.Command{
	Use:   "tool [name] [json-args]",
	Short: "List catalog tools or invoke one with JSON arguments",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runTool,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full processor output as JSON")

	rootCmd.AddCommand(chatCmd, askCmd, seedCacheCmd, toolCmd)
}

// readLines streams input lines until EOF or ctx is done, then closes the channel
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	app.background(ctx)

	sessionID := uuid.NewString()
	logger.Info().Str("session_id", sessionID).Msg("Chat session started")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Market Guide ready. Ask about prices, deals or comparisons. /exit to quit.")

	lines := readLines(ctx, cmd.InOrStdin())

	for {
		fmt.Fprint(out, "\n> ")

		var line string
		select {
		case <-ctx.Done():
			_ = app.processor.EndSession(sessionID)
			return nil
		case next, ok := <-lines:
			if !ok {
				_ = app.processor.EndSession(sessionID)
				return nil
			}
			line = strings.TrimSpace(next)
		}

		switch line {
		case "":
			continue
		case "/exit", "/quit":
			_ = app.processor.EndSession(sessionID)
			return nil
		case "/clear":
			_ = app.processor.EndSession(sessionID)
			sessionID = uuid.NewString()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		output, err := app.processor.Process(ctx, core.ProcessorInput{SessionID: sessionID, UserMessage: line})
		if err != nil {
			logger.Error().Err(err).Msg("Failed to process message")
			fmt.Fprintln(out, "Sorry, something went wrong. Please try again.")
			continue
		}
		fmt.Fprintln(out, output.Response)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	sessionID := uuid.NewString()

	output, err := app.processor.Process(ctx, core.ProcessorInput{
		SessionID:   sessionID,
		UserMessage: strings.Join(args, " "),
	})
	if err != nil {
		return err
	}
	defer app.processor.EndSession(sessionID)

	if askJSON {
		data, err := sonic.ConfigStd.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.Response)
	return nil
}

func runSeedCache(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if cfg.CatalogConfig.RedisURL == "" {
		return fmt.Errorf("CATALOG_REDIS_URL is required to seed the cache")
	}

	products, err := config.NewFileCatalogSource(cfg.CatalogConfig.SeedFile).Load(ctx)
	if err != nil {
		return err
	}

	client, err := redisstore.NewRedisClient(ctx, cfg.CatalogConfig.RedisURL)
	if err != nil {
		return err
	}
	cache := redisstore.NewCatalogCache(client, cfg.CatalogConfig.CacheTTL)
	defer cache.Close()

	if err := cache.Save(ctx, redisstore.CatalogSnapshot{Products: products, UpdatedAt: time.Now().UTC()}); err != nil {
		return err
	}

	logger.Info().Int("products", len(products)).Dur("ttl", cfg.CatalogConfig.CacheTTL).Msg("Catalog cache seeded")
	fmt.Fprintf(cmd.OutOrStdout(), "Published %d products to %s\n", len(products), redisstore.DefaultCatalogKey)
	return nil
}

func runTool(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	tools, err := nodes.GetTools(app.catalog)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, t := range tools {
			info, err := t.Info(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-18s %s\n", info.Name, info.Desc)
		}
		return nil
	}

	selected, err := nodes.FindTool(ctx, tools, args[0])
	if err != nil {
		return err
	}

	arguments := "{}"
	if len(args) == 2 {
		arguments = args[1]
	}

	result, err := selected.InvokableRun(ctx, arguments)
	if err != nil {
		return err
	}

	var decoded nodes.ToolResult
	if err := sonic.UnmarshalString(result, &decoded); err != nil {
		fmt.Fprintln(out, result)
		return nil
	}
	fmt.Fprintln(out, decoded.Reply)
	return nil
}
