package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap/zaptest"

	"lyric-quiz-service/internal/app"
	"lyric-quiz-service/internal/domain"
	pgstore "lyric-quiz-service/internal/infra/postgres"
	pgmigrations "lyric-quiz-service/internal/infra/postgres/migrations"
	redisstore "lyric-quiz-service/internal/infra/redis"
)

func TestQuestionRoundTripThroughPostgresAndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "lyrics", "POSTGRES_PASSWORD": "lyricspass", "POSTGRES_DB": "lyricsdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}, "5432/tcp", "postgres://lyrics:lyricspass@%s:%s/lyricsdb?sslmode=disable")
	redisAddr := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}, "6379/tcp", "%s:%s")

	seedSongs(t, ctx, pgURL, domain.Song{
		Key:    "blue",
		Title:  "Blue",
		Artist: "Artist",
		Lines:  []string{"second line", "third line"},
	})

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	client := goredis.NewClient(&goredis.Options{Addr: redisAddr})
	defer client.Close()

	songs := redisstore.NewSongRepository(client, pgstore.NewSongLoader(pool), 5*time.Minute)
	games := redisstore.NewGameStore(client, 5*time.Minute)
	service := app.NewGameService(games, app.NewCorpus(songs), app.DefaultSettings(), zaptest.NewLogger(t))
	defer service.Close()

	catalog, err := service.Catalog(ctx)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(catalog) != 1 || catalog[0].Name != "Blue" {
		t.Fatalf("unexpected catalog %+v", catalog)
	}

	prompt, err := service.OpenQuestion(ctx, "chan-1", app.OpenRequest{Song: "Blue"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if prompt.LyricLine != "second line" || prompt.FellBack {
		t.Fatalf("unexpected prompt %+v", prompt)
	}
	if n, err := client.Exists(ctx, "lyrics:song:blue").Result(); err != nil || n != 1 {
		t.Fatalf("expected song cached in redis, got n=%d err=%v", n, err)
	}

	if score, err := service.SubmitAnswer(ctx, "chan-1", "u1", "Alice", "third line"); err != nil || score != 100 {
		t.Fatalf("expected 100, got %v (%v)", score, err)
	}
	if score, err := service.SubmitAnswer(ctx, "chan-1", "u2", "Bob", "third"); err != nil || score != 50 {
		t.Fatalf("expected 50, got %v (%v)", score, err)
	}

	reveal, err := service.Reveal(ctx, "chan-1")
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if len(reveal.Entries) != 2 || reveal.Entries[0].Identity != "u1" || reveal.Question.CorrectAnswer != "third line" {
		t.Fatalf("unexpected reveal %+v", reveal)
	}
}

func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest, port, format string) string {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("%s host: %v", req.Image, err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("%s port: %v", req.Image, err)
	}
	return fmt.Sprintf(format, host, mapped.Port())
}

func seedSongs(t *testing.T, ctx context.Context, dsn string, songs ...domain.Song) {
	t.Helper()
	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))), pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := pgstore.NewSongWriter(db).Upsert(ctx, songs...); err != nil {
		t.Fatalf("upsert songs: %v", err)
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
