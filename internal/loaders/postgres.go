package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/viamarket/trip-ingestor/internal/utils"
)

// PostgresClient wraps the shared connection pool.
type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(ctx context.Context, databaseURL string) (*PostgresClient, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	utils.Zlog.Info("Connected to postgres",
		zap.String("database", cfg.ConnConfig.Database),
		zap.String("host", cfg.ConnConfig.Host))
	return &PostgresClient{Pool: pool}, nil
}

func (c *PostgresClient) Close() {
	c.Pool.Close()
}

// TripRecord is everything needed to persist one trip.
type TripRecord struct {
	UserID             string
	Title              string
	Summary            string
	Destination        string
	Theme              string
	Characteristics    []string
	RecommendedSeasons []string
	Tags               []string
	TravelDate         *time.Time
	TrackURL           string
	MediaURLs          []string
	Stages             []StageRecord
}

// StageRecord is one ordered stage belonging to a TripRecord.
type StageRecord struct {
	Title       string
	Description string
	RouteType   string
	Duration    string
	TrackURL    string
	MediaURLs   []string
}

// InsertTrip persists a trip and its stages in one transaction. Trips are
// always created as drafts; publication is a separate explicit step owned by
// another service. Any failure rolls back the whole trip.
func (c *PostgresClient) InsertTrip(ctx context.Context, rec TripRecord) (string, error) {
	tx, err := c.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tripID := uuid.New().String()
	now := time.Now().UTC()

	_, err = tx.Exec(ctx, `
		INSERT INTO trips (
			id, user_id, title, summary, destination, theme,
			characteristics, recommended_seasons, tags, travel_date,
			track_url, media_urls, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'draft',$13,$13)`,
		tripID, rec.UserID, rec.Title, rec.Summary, rec.Destination, rec.Theme,
		rec.Characteristics, rec.RecommendedSeasons, rec.Tags, rec.TravelDate,
		rec.TrackURL, rec.MediaURLs, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert trip: %w", err)
	}

	for i, stage := range rec.Stages {
		_, err = tx.Exec(ctx, `
			INSERT INTO trip_stages (
				id, trip_id, position, title, description,
				route_type, duration, track_url, media_urls, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			uuid.New().String(), tripID, i, stage.Title, stage.Description,
			stage.RouteType, stage.Duration, stage.TrackURL, stage.MediaURLs, now)
		if err != nil {
			return "", fmt.Errorf("failed to insert stage %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit trip: %w", err)
	}

	utils.Zlog.Info("Trip persisted",
		zap.String("tripId", tripID),
		zap.String("userId", rec.UserID),
		zap.Int("stages", len(rec.Stages)))
	return tripID, nil
}
