//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log"
	"time"

	"katagaki/config"
	"katagaki/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// Setup 啟動 Postgres 與 Redis 容器並套用 migration，供整合測試的 TestMain 使用
func Setup() (*pgxpool.Pool, *redis.Client, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := config.LoadTestConfig()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(cfg.Database.DBName),
		tcpostgres.WithUsername(cfg.Database.User),
		tcpostgres.WithPassword(cfg.Database.Password),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to start postgres container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		terminate(pgContainer)
		return nil, nil, nil, fmt.Errorf("failed to get postgres host: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		terminate(pgContainer)
		return nil, nil, nil, fmt.Errorf("failed to get postgres port: %v", err)
	}
	cfg.Database.Host = host
	cfg.Database.Port = port.Port()

	if err := database.RunMigrations(cfg.Database.URL()); err != nil {
		terminate(pgContainer)
		return nil, nil, nil, fmt.Errorf("failed to migrate test database: %v", err)
	}

	testDB, err := database.InitDatabase(ctx, &cfg.Database)
	if err != nil {
		terminate(pgContainer)
		return nil, nil, nil, fmt.Errorf("failed to initialize test database: %v", err)
	}
	log.Println("Test database connected successfully")

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		testDB.Close()
		terminate(pgContainer)
		return nil, nil, nil, fmt.Errorf("failed to start redis container: %v", err)
	}

	addr, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		testDB.Close()
		terminate(pgContainer, redisContainer)
		return nil, nil, nil, fmt.Errorf("failed to get redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		testDB.Close()
		terminate(pgContainer, redisContainer)
		return nil, nil, nil, fmt.Errorf("failed to parse redis URL: %v", err)
	}
	testRdb := redis.NewClient(opts)
	if err := testRdb.Ping(ctx).Err(); err != nil {
		testDB.Close()
		terminate(pgContainer, redisContainer)
		return nil, nil, nil, fmt.Errorf("failed to ping redis: %v", err)
	}
	log.Println("Test redis connected successfully")

	cleanup := func() {
		testDB.Close()
		log.Println("Test database closed")

		testRdb.Close()
		log.Println("Test redis closed")

		terminate(pgContainer, redisContainer)
	}

	return testDB, testRdb, cleanup, nil
}

// TruncateAll 清空所有資料表並重設官方編號
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		TRUNCATE rights, proposals, titles, categories, users RESTART IDENTITY CASCADE;
		UPDATE sequences SET value = 0;
	`)
	return err
}

func terminate(containers ...testcontainers.Container) {
	for _, c := range containers {
		if err := testcontainers.TerminateContainer(c); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}
