// Command chatfield-cli runs an interview in the terminal: assistant
// turns print to stdout, answers are read from stdin, and the collected
// record prints at teardown. Threads checkpoint to the chosen backend,
// so a stopped conversation resumes under the same -thread.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	chatfield "github.com/chatfield/chatfield-go"
	"github.com/chatfield/chatfield-go/checkpoint"
	"github.com/chatfield/chatfield-go/interviewer"
	"github.com/chatfield/chatfield-go/llm"
)

func main() {
	var (
		modelID  = flag.String("model", interviewer.DefaultModelID, "chat model ID (openai:* or google:*)")
		baseURL  = flag.String("base-url", "", "override the model API base URL")
		thread   = flag.String("thread", "", "thread ID to start or resume (default: a new one)")
		stateDSN = flag.String("state", "memory", "checkpoint backend: memory, or a postgres/redis/mongo URL")
		inspect  = flag.Bool("inspect", false, "print the stored record for -thread and exit")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *modelID, *baseURL, *thread, *stateDSN, *inspect); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, modelID, baseURL, thread, stateDSN string, inspect bool) error {
	logger := newLogger()
	defer logger.Sync()
	ctx = ctxzap.ToContext(ctx, logger)

	store, closeStore, err := openStore(ctx, stateDSN)
	if err != nil {
		return err
	}
	defer closeStore()

	if inspect {
		return inspectThread(ctx, store, thread)
	}

	if thread == "" {
		thread = uuid.NewString()
	}

	// Peek at the stored thread first: a finished one just prints its
	// record, a mid-flight one resumes at the last question.
	opening := ""
	resumed := false
	data, err := store.Get(ctx, thread)
	switch {
	case err == nil:
		st, err := interviewer.RestoreState(data)
		if err != nil {
			return err
		}
		if st.Ended || st.Interview.Done() {
			fmt.Println(st.Interview.Pretty())
			return nil
		}
		opening = lastAssistantText(st)
		resumed = true
	case errors.Is(err, checkpoint.ErrNotFound):
	default:
		return err
	}

	iv, err := interviewer.New(ctx, demoInterview(),
		interviewer.WithThreadID(thread),
		interviewer.WithModelID(modelID),
		interviewer.WithBaseURL(baseURL),
		interviewer.WithAPIKey(apiKeyFromEnv(modelID)),
		interviewer.WithCheckpointStore(store),
		interviewer.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if resumed {
		fmt.Printf("resuming thread %s\n", thread)
	} else {
		fmt.Printf("thread %s\n", thread)
		opening, err = iv.Go(ctx, nil)
		if err != nil {
			return err
		}
	}

	return converse(ctx, iv, opening)
}

// converse runs the turn loop: print the assistant, read the user,
// advance one round. EOF ends the conversation early.
func converse(ctx context.Context, iv *interviewer.Interviewer, reply string) error {
	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		if reply != "" {
			fmt.Printf("\n%s\n", reply)
		}
		if iv.Interview().Done() {
			break
		}

		text, ok := readLine(in)
		if !ok {
			if err := iv.End(ctx); err != nil {
				return err
			}
			break
		}

		var err error
		reply, err = iv.Go(ctx, &text)
		if err != nil {
			return err
		}
	}

	fmt.Printf("\n%s\n", iv.Interview().Pretty())
	return in.Err()
}

// readLine prompts and reads one non-empty line. ok is false at EOF.
func readLine(in *bufio.Scanner) (string, bool) {
	for {
		fmt.Print("\n> ")
		if !in.Scan() {
			fmt.Println()
			return "", false
		}
		if text := strings.TrimSpace(in.Text()); text != "" {
			return text, true
		}
	}
}

// inspectThread prints the stored record for a thread without touching
// the model.
func inspectThread(ctx context.Context, store checkpoint.Store, thread string) error {
	if thread == "" {
		return errors.New("-inspect needs -thread")
	}

	data, err := store.Get(ctx, thread)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return fmt.Errorf("thread %q has no stored state", thread)
	}
	if err != nil {
		return err
	}

	st, err := interviewer.RestoreState(data)
	if err != nil {
		return err
	}

	fmt.Println(st.Interview.Pretty())
	return nil
}

// openStore picks the checkpoint backend from the -state value.
func openStore(ctx context.Context, dsn string) (checkpoint.Store, func(), error) {
	switch {
	case dsn == "" || dsn == "memory":
		return checkpoint.NewMemoryStore(0), func() {}, nil

	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := checkpoint.RunMigrations(dsn); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return checkpoint.NewPostgresStore(pool), pool.Close, nil

	case strings.HasPrefix(dsn, "redis://") || strings.HasPrefix(dsn, "rediss://"):
		opts, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return checkpoint.NewRedisStore(client, 0), func() { client.Close() }, nil

	case strings.HasPrefix(dsn, "mongodb://") || strings.HasPrefix(dsn, "mongodb+srv://"):
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(dsn))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		disconnect := func() { _ = client.Disconnect(context.Background()) }
		return checkpoint.NewMongoStore(client.Database("chatfield")), disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unrecognized -state value %q (memory or a postgres/redis/mongo URL)", dsn)
	}
}

// demoInterview is the built-in definition the CLI collects when run
// as is.
func demoInterview() *chatfield.Interview {
	return chatfield.New().
		Type("Restaurant Order").
		Desc("Taking a dinner order").
		Alice().Type("Waiter").Trait("courteous, keeps the order moving").
		Bob().Type("Diner").
		Field("starter").Desc("Starter or appetizer").
		Hint("soup, salad, or garlic bread").
		Field("main_course").Desc("Main course").
		Must("one of tonight's mains").
		AsOne("dish", "grilled salmon", "mushroom risotto", "steak frites").
		Field("wine_pairing").Desc("Whether they want the wine pairing").
		AsBool().
		Field("party_size").Desc("How many people are dining").
		AsInt().
		Must("between 1 and 12").
		Field("allergies").Desc("Food allergies in the party").
		Confidential().
		Field("mood").Desc("How satisfied the diner seemed while ordering").
		Conclude().
		AsOne("label", "pleased", "neutral", "grumpy").
		MustBuild()
}

func lastAssistantText(st *interviewer.ConversationState) string {
	for i := len(st.Messages) - 1; i >= 0; i-- {
		m := st.Messages[i]
		if m.Role == llm.RoleAssistant && m.Content != "" {
			return m.Content
		}
	}
	return ""
}

func apiKeyFromEnv(modelID string) string {
	if strings.HasPrefix(modelID, "google:") {
		if k := os.Getenv("GEMINI_API_KEY"); k != "" {
			return k
		}
		return os.Getenv("GOOGLE_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
}

// newLogger builds a console logger that stays quiet unless something
// goes wrong, keeping the terminal free for the conversation.
func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
