package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"doclib/app/api"
	"doclib/ingest"
	"doclib/model"
	"doclib/search"
	"doclib/store"
	"doclib/types"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()

	embedder := model.NewEmbedderFromEnv()

	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr, embedder.Dimension())
	if err != nil {
		log.Fatal("error to connect to Postgres database", err)
		return
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables", err)
		return
	}

	chunkSize, _ := strconv.Atoi(os.Getenv("CHUNK_SIZE"))
	workers, _ := strconv.Atoi(os.Getenv("EMBED_WORKERS"))
	ingestor := ingest.New(pool, embedder, types.Config{
		ChunkSize:    chunkSize,
		EmbedWorkers: workers,
	})
	engine := search.NewEngine(pool, embedder)

	var (
		app             = fiber.New(config)
		checkHandler    = api.NewCheckHandler()
		searchHandler   = api.NewSearchHandler(engine)
		documentHandler = api.NewDocumentHandler(ingestor)
		check           = app.Group("/check")
		apiv1           = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/search", searchHandler.HandleSearch)
	apiv1.Put("/documents/:id/chunks", documentHandler.HandleReindex)
	apiv1.Delete("/documents/:id", documentHandler.HandleDelete)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}
