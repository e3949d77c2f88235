package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maltedev/marketplace-search/internal/models"
)

var ErrRunNotFound = errors.New("search run not found")

// RunSummary is a search_runs row without its items.
type RunSummary struct {
	ID        uuid.UUID     `json:"id"`
	Site      string        `json:"site"`
	Query     string        `json:"query"`
	ItemCount int           `json:"item_count"`
	Scraped   int           `json:"scraped"`
	Dropped   int           `json:"dropped"`
	FromCache bool          `json:"from_cache"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

type HistoryRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Save stores the run and its ranked items atomically.
func (r *HistoryRepository) Save(ctx context.Context, run *models.SearchRun) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO search_runs (id, site, query, scraped, dropped, from_cache, started_at, duration_ms)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			run.ID, run.Site, run.Query, run.Scraped, run.Dropped, run.FromCache,
			run.StartedAt, run.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("failed to insert search run: %w", err)
		}

		batch := &pgx.Batch{}
		for i, item := range run.Items {
			var quantity *string
			var quantityValue *int64
			if item.QuantitySold != nil {
				s := item.QuantitySold.String()
				v := item.QuantitySold.Int()
				quantity, quantityValue = &s, &v
			}
			batch.Queue(`
				INSERT INTO search_items (run_id, position, title, price_dollars, rating_average,
					positive_feedback_percentage, quantity_sold, quantity_sold_value, item_url)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9::text, ''))`,
				run.ID, i, item.Title, item.PriceDollars, item.RatingAverage,
				item.PositiveFeedbackPercentage, quantity, quantityValue, item.ItemURL)
		}

		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert search items: %w", err)
		}
		return nil
	})
}

// Recent lists the newest runs first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.site, r.query, r.scraped, r.dropped, r.from_cache, r.started_at, r.duration_ms,
			(SELECT COUNT(*) FROM search_items i WHERE i.run_id = r.id)
		FROM search_runs r
		ORDER BY r.started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]RunSummary, 0)
	for rows.Next() {
		var s RunSummary
		var durationMS int64
		if err := rows.Scan(&s.ID, &s.Site, &s.Query, &s.Scraped, &s.Dropped, &s.FromCache,
			&s.StartedAt, &durationMS, &s.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan search run: %w", err)
		}
		s.Duration = time.Duration(durationMS) * time.Millisecond
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search runs: %w", err)
	}

	return summaries, nil
}

// Get loads one run with its items in ranked order.
func (r *HistoryRepository) Get(ctx context.Context, id uuid.UUID) (*models.SearchRun, error) {
	run := &models.SearchRun{ID: id}
	var durationMS int64
	err := r.db.QueryRow(ctx, `
		SELECT site, query, scraped, dropped, from_cache, started_at, duration_ms
		FROM search_runs WHERE id = $1`, id).
		Scan(&run.Site, &run.Query, &run.Scraped, &run.Dropped, &run.FromCache, &run.StartedAt, &durationMS)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search run: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond

	rows, err := r.db.Query(ctx, `
		SELECT title, price_dollars, rating_average, positive_feedback_percentage,
			quantity_sold, COALESCE(item_url, '')
		FROM search_items WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query search items: %w", err)
	}
	defer rows.Close()

	run.Items = make([]models.ItemRecord, 0)
	for rows.Next() {
		var item models.ItemRecord
		var quantity *string
		if err := rows.Scan(&item.Title, &item.PriceDollars, &item.RatingAverage,
			&item.PositiveFeedbackPercentage, &quantity, &item.ItemURL); err != nil {
			return nil, fmt.Errorf("failed to scan search item: %w", err)
		}
		if quantity != nil {
			q, err := models.ParseQuantity(*quantity)
			if err != nil {
				return nil, fmt.Errorf("failed to parse stored quantity: %w", err)
			}
			item.QuantitySold = &q
		}
		run.Items = append(run.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search items: %w", err)
	}

	return run, nil
}
