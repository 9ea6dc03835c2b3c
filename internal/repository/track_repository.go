package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jengzang/trakxmap-backend-go/internal/database"
	"github.com/jengzang/trakxmap-backend-go/internal/track"
)

// ErrTrackNotFound is returned when no track with the requested id is stored
var ErrTrackNotFound = errors.New("track not found")

// TrackRepository handles database operations for tracks and their points
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// pointTables maps a point kind to its table
var pointTables = map[track.Kind]string{
	track.KindTrack: "track_points",
	track.KindRoute: "route_points",
	track.KindWay:   "way_points",
}

// Store inserts t with all of its points. The generated ids are assigned to t
// only once the transaction has committed.
func (r *TrackRepository) Store(ctx context.Context, t *track.Track) error {
	var id int64
	pointIDs := make(map[track.Kind][]int64, len(pointTables))

	err := database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "INSERT INTO tracks (name, filename) VALUES (?, ?)", t.DisplayName(), t.Filename)
		if err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get track id: %w", err)
		}

		for _, kind := range []track.Kind{track.KindTrack, track.KindRoute, track.KindWay} {
			ids, err := insertPoints(ctx, tx, id, kind, t.Points(kind))
			if err != nil {
				return err
			}
			pointIDs[kind] = ids
		}
		return nil
	})
	if err != nil {
		return err
	}

	t.SetID(id)
	for kind, ids := range pointIDs {
		for i, p := range t.Points(kind) {
			p.ID = ids[i]
		}
	}
	return nil
}

func insertPoints(ctx context.Context, tx *sql.Tx, trackID int64, kind track.Kind, points []*track.Point) ([]int64, error) {
	if len(points) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (track_id, sequence, latitude, longitude, elevation, timestamp, name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, pointTables[kind])
	if kind == track.KindTrack {
		query = `INSERT INTO track_points (track_id, sequence, latitude, longitude, elevation, timestamp, distance)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s insert: %w", kind, err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(points))
	for _, p := range points {
		var last interface{} = p.Name
		if kind == track.KindTrack {
			last = nullable(p.Distance)
		}
		res, err := stmt.ExecContext(ctx, trackID, p.Sequence, p.Coordinate.Lat, p.Coordinate.Lon,
			nullable(p.Elevation), formatTimestamp(p.Timestamp), last)
		if err != nil {
			return nil, fmt.Errorf("failed to insert %s point %d: %w", kind, p.Sequence, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get %s point id: %w", kind, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LoadTrackIDs returns the ids of all stored tracks
func (r *TrackRepository) LoadTrackIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM tracks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query track ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan track id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LoadTrack loads the track with the given id. Tracks stored without
// distances get them computed and written back.
func (r *TrackRepository) LoadTrack(ctx context.Context, id int64) (*track.Track, error) {
	t := &track.Track{ID: id}
	err := r.db.QueryRowContext(ctx, "SELECT name, filename FROM tracks WHERE id = ?", id).Scan(&t.Name, &t.Filename)
	if err == sql.ErrNoRows {
		return nil, ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load track %d: %w", id, err)
	}

	for _, kind := range []track.Kind{track.KindTrack, track.KindRoute, track.KindWay} {
		if err := r.loadPoints(ctx, t, kind); err != nil {
			return nil, err
		}
	}

	if track.NeedsDistances(t) {
		track.UpdateDistances(t)
		if err := r.UpdateDistances(ctx, t); err != nil {
			log.Printf("[TrackRepository] Failed to store distances of track %d: %v", id, err)
		}
	}

	return t, nil
}

func (r *TrackRepository) loadPoints(ctx context.Context, t *track.Track, kind track.Kind) error {
	query := fmt.Sprintf(`SELECT id, latitude, longitude, elevation, timestamp, name
		FROM %s WHERE track_id = ? ORDER BY sequence`, pointTables[kind])
	if kind == track.KindTrack {
		query = `SELECT id, latitude, longitude, elevation, timestamp, distance
			FROM track_points WHERE track_id = ? ORDER BY sequence`
	}

	rows, err := r.db.QueryContext(ctx, query, t.ID)
	if err != nil {
		return fmt.Errorf("failed to query %s points of track %d: %w", kind, t.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        int64
			lat, lon  float64
			elevation sql.NullFloat64
			timestamp sql.NullString
			name      sql.NullString
			distance  sql.NullFloat64
		)
		last := interface{}(&name)
		if kind == track.KindTrack {
			last = &distance
		}
		if err := rows.Scan(&id, &lat, &lon, &elevation, &timestamp, last); err != nil {
			return fmt.Errorf("failed to scan %s point: %w", kind, err)
		}

		ts, err := parseTimestamp(timestamp)
		if err != nil {
			return fmt.Errorf("invalid timestamp on %s point %d: %w", kind, id, err)
		}

		p := track.NewPoint(lat, lon, nullFloat(elevation), ts)
		p.Distance = nullFloat(distance)
		p.Name = name.String

		switch kind {
		case track.KindTrack:
			t.AddTrackPoint(p)
		case track.KindRoute:
			t.AddRoutePoint(p)
		case track.KindWay:
			t.AddWayPoint(p)
		}
		p.ID = id
	}
	return rows.Err()
}

// LoadAll loads every stored track
func (r *TrackRepository) LoadAll(ctx context.Context) ([]*track.Track, error) {
	ids, err := r.LoadTrackIDs(ctx)
	if err != nil {
		return nil, err
	}

	tracks := make([]*track.Track, 0, len(ids))
	for _, id := range ids {
		t, err := r.LoadTrack(ctx, id)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// UpdateName renames a stored track
func (r *TrackRepository) UpdateName(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE tracks SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("failed to rename track %d: %w", id, err)
	}
	return expectOne(res)
}

// UpdateDistances writes the distances of the track points of t
func (r *TrackRepository) UpdateDistances(ctx context.Context, t *track.Track) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "UPDATE track_points SET distance = ? WHERE id = ?")
		if err != nil {
			return fmt.Errorf("failed to prepare distance update: %w", err)
		}
		defer stmt.Close()

		for _, p := range t.TrackPoints {
			if _, err := stmt.ExecContext(ctx, nullable(p.Distance), p.ID); err != nil {
				return fmt.Errorf("failed to update distance of point %d: %w", p.ID, err)
			}
		}
		return nil
	})
}

// DeleteTrack deletes a track together with its points
func (r *TrackRepository) DeleteTrack(ctx context.Context, id int64) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"track_points", "route_points", "way_points"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE track_id = ?", id); err != nil {
				return fmt.Errorf("failed to delete %s of track %d: %w", table, id, err)
			}
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM tracks WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete track %d: %w", id, err)
		}
		return expectOne(res)
	})
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrTrackNotFound
	}
	return nil
}

func formatTimestamp(ts *time.Time) interface{} {
	if ts == nil {
		return nil
	}
	return ts.Format(track.LocalTimeLayout)
}

func parseTimestamp(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	ts, err := time.ParseInLocation(track.LocalTimeLayout, s.String, time.UTC)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
