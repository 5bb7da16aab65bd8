package cmd

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"log"
	"log/slog"
	"os"
	"runtime/pprof"
	"strings"
	"venue-booking/common/constant"
	internalJs "venue-booking/common/jetstream"
	"venue-booking/common/otel"
	"venue-booking/outbound/cms"
)

func newCfg(name string) *viper.Viper {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalln(err)
	}

	config := viper.New()

	config.SetConfigName(name)
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	// The site's existing deployments export the CMS settings under these names.
	for key, envs := range map[string][]string{
		"cms.base_url": {"CMS_BASE_URL", "STRAPI_URL", "NEXT_PUBLIC_STRAPI_API_URL"},
		"cms.token":    {"CMS_TOKEN", "STRAPI_API_TOKEN"},
	} {
		err = config.BindEnv(append([]string{key}, envs...)...)
		if err != nil {
			log.Fatalln(err)
		}
	}

	err = config.ReadInConfig()
	if err != nil {
		log.Fatalln(err)
	}

	err = os.Setenv("TZ", config.GetString("server.timezone"))
	if err != nil {
		log.Fatalln(err)
	}

	return config
}

func newDb(cfg *viper.Viper) *pgxpool.Pool {
	username := cfg.GetString("db.user")
	password := cfg.GetString("db.password")
	host := cfg.GetString("db.host")
	port := cfg.GetInt("db.port")
	database := cfg.GetString("db.name")
	maxConn := cfg.GetInt("db.pool.max")
	minConn := cfg.GetInt("db.pool.min")
	timezone := cfg.GetString("server.timezone")

	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?timezone=%s",
		username, password, host, port, database, timezone)

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		log.Fatalln(err)
	}

	config.MaxConns = int32(maxConn)
	config.MinConns = int32(minConn)
	config.ConnConfig.Tracer = &otel.PgxCustomTracer{}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalln(err)
	}

	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatalln(err)
	}

	return pool
}

func newRedis(cfg *viper.Viper) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.GetString("redis.addr"),
		Password: cfg.GetString("redis.password"),
		DB:       cfg.GetInt("redis.db"),
	})

	err := rdb.Ping(context.Background()).Err()
	if err != nil {
		log.Fatalln(err)
	}

	return rdb
}

func newNats(cfg *viper.Viper) *nats.Conn {
	conn, err := nats.Connect(cfg.GetString("nats.addr"), nats.Name("venue-booking"))
	if err != nil {
		log.Fatalln(err)
	}

	return conn
}

func newJs(conn *nats.Conn) jetstream.JetStream {
	js, err := jetstream.New(conn)
	if err != nil {
		log.Fatalln(err)
	}

	return js
}

func newQueueStream(ctx context.Context, js jetstream.JetStream) jetstream.Stream {
	return internalJs.CreateQueueStream(ctx, js)
}

// newCms exits when the base url is missing; nothing in the service works without it.
func newCms(cfg *viper.Viper) *cms.CmsOutbound {
	out, err := cms.New(cfg)
	if err != nil {
		log.Fatalln("invalid cms configuration:", err)
	}

	return out
}

func newTracer(ctx context.Context, cfg *viper.Viper, component string) func() {
	shutdown, err := otel.InitTracer(ctx, cfg.GetString("otel.service_name")+"-"+component, cfg.GetString("otel.endpoint"))
	if err != nil {
		log.Fatalln("unable to init tracer", err)
	}

	return func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("unable to shutdown tracer", slog.Any(constant.LogFieldErr, err))
		}
	}
}

// startProfiling writes <name>-cpu.prof and <name>-mem.prof in dev. The returned
// func stops the CPU profile.
func startProfiling(cfg *viper.Viper, name string) func() {
	if cfg.GetString("env") != "dev" {
		return func() {}
	}

	cpu, err := os.Create(name + "-cpu.prof")
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	// Only one CPU profile per process; under dev the first server wins.
	err = pprof.StartCPUProfile(cpu)
	if err != nil {
		slog.Warn("could not start CPU profile", slog.String("name", name), slog.Any(constant.LogFieldErr, err))
		cpu.Close()
		os.Remove(cpu.Name())
		return func() {}
	}

	return func() {
		pprof.StopCPUProfile()
		cpu.Close()

		mem, err := os.Create(name + "-mem.prof")
		if err != nil {
			slog.Error("could not create memory profile", slog.Any(constant.LogFieldErr, err))
			return
		}
		defer mem.Close()

		if err := pprof.WriteHeapProfile(mem); err != nil {
			slog.Error("could not write memory profile", slog.Any(constant.LogFieldErr, err))
		}
	}
}
