package loader

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/jengzang/trakxmap-backend-go/internal/track"
)

func init() {
	Register(".gpx", func(opts Options) Loader {
		return NewGPXLoader(opts.Zone)
	})
}

// GPXLoader loads GPX 1.0 and 1.1 files. All tracks and segments of a file
// are concatenated into the track points of one Track.
type GPXLoader struct {
	// Zone is the IANA zone name timestamps are converted to; empty keeps the source wall clock
	Zone string

	once sync.Once
	loc  *time.Location
}

// NewGPXLoader creates a GPX loader converting timestamps to zone
func NewGPXLoader(zone string) *GPXLoader {
	return &GPXLoader{Zone: zone}
}

// location resolves Zone exactly once, concurrent first calls wait for it
func (l *GPXLoader) location() *time.Location {
	l.once.Do(func() {
		if l.Zone == "" {
			return
		}
		loc, err := time.LoadLocation(l.Zone)
		if err != nil {
			log.Printf("[GPXLoader] Unknown time zone %q, keeping source times: %v", l.Zone, err)
			return
		}
		l.loc = loc
	})
	return l.loc
}

// Load implements Loader
func (l *GPXLoader) Load(ctx context.Context, path string) (*track.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v: %w", path, err, ErrNoTrack)
	}

	return l.Parse(path, data)
}

// Parse implements Loader
func (l *GPXLoader) Parse(filename string, data []byte) (t *track.Track, err error) {
	defer func() {
		if p := recover(); p != nil {
			t, err = nil, fmt.Errorf("failed to parse GPX %s: %v: %w", filename, p, ErrNoTrack)
		}
	}()

	if err := sniffGPX(data); err != nil {
		return nil, fmt.Errorf("failed to parse GPX %s: %v: %w", filename, err, ErrNoTrack)
	}

	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX %s: %v: %w", filename, err, ErrNoTrack)
	}

	times, err := scanPointTimes(data)
	if err != nil {
		log.Printf("[GPXLoader] Failed to read point times of %s, using parsed values: %v", filename, err)
	}

	t = track.Assemble(filename, l.rawTrack(doc, times))
	log.Printf("[GPXLoader] Loaded %s", t)
	return t, nil
}

func (l *GPXLoader) rawTrack(doc *gpx.GPX, times *pointTimes) track.RawTrack {
	raw := track.RawTrack{MetadataName: doc.Name}
	if !times.matches(doc) {
		times = &pointTimes{}
	}

	for i, wpt := range doc.Waypoints {
		raw.WayPoints = append(raw.WayPoints, l.rawPoint(wpt, timeAt(times.way, i)))
	}

	for _, rte := range doc.Routes {
		for _, rtept := range rte.Points {
			raw.RoutePoints = append(raw.RoutePoints, l.rawPoint(rtept, timeAt(times.route, len(raw.RoutePoints))))
		}
	}

	for _, trk := range doc.Tracks {
		if trk.Name != "" {
			raw.TrackNames = append(raw.TrackNames, trk.Name)
		}
		for _, seg := range trk.Segments {
			for _, trkpt := range seg.Points {
				raw.TrackPoints = append(raw.TrackPoints, l.rawPoint(trkpt, timeAt(times.track, len(raw.TrackPoints))))
			}
		}
	}

	return raw
}

// missing coordinates and elevations become 0.0, unreadable times no timestamp
func (l *GPXLoader) rawPoint(p gpx.GPXPoint, timeText string) track.RawPoint {
	elevation := 0.0
	if p.Elevation.NotNull() {
		elevation = p.Elevation.Value()
	}

	raw := track.RawPoint{
		Lat:       p.Latitude,
		Lon:       p.Longitude,
		Elevation: &elevation,
		Name:      p.Name,
	}

	if ts, ok := parseTime(timeText); ok {
		ts = l.normalize(ts)
		raw.Timestamp = &ts
	} else if !p.Timestamp.IsZero() {
		ts := l.normalize(p.Timestamp)
		raw.Timestamp = &ts
	}

	return raw
}

// normalize drops the zone of ts, keeping the wall clock of the source or of the configured zone
func (l *GPXLoader) normalize(ts time.Time) time.Time {
	if loc := l.location(); loc != nil {
		ts = ts.In(loc)
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
}

// sniffGPX checks that the root element of data is <gpx>
func sniffGPX(data []byte) error {
	decoder := newDecoder(data)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return fmt.Errorf("no root element")
		}
		if err != nil {
			return err
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != "gpx" {
				return fmt.Errorf("root element is <%s>, not <gpx>", start.Name.Local)
			}
			return nil
		}
	}
}

func newDecoder(data []byte) *xml.Decoder {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	// element names and times are ASCII in every supported encoding
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return decoder
}

// pointTimes holds the <time> text of every point, per kind in document order.
// gpxgo drops numeric zone offsets, so timestamps are parsed from this text.
type pointTimes struct {
	way, route, track []string
}

func scanPointTimes(data []byte) (*pointTimes, error) {
	decoder := newDecoder(data)
	times := &pointTimes{}
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return times, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		var list *[]string
		switch start.Name.Local {
		case "wpt":
			list = &times.way
		case "rtept":
			list = &times.route
		case "trkpt":
			list = &times.track
		default:
			continue
		}

		var point struct {
			Time string `xml:"time"`
		}
		if err := decoder.DecodeElement(&point, &start); err != nil {
			return nil, err
		}
		*list = append(*list, strings.TrimSpace(point.Time))
	}
}

// matches reports whether the scanned times line up with the points of doc
func (pt *pointTimes) matches(doc *gpx.GPX) bool {
	if pt == nil {
		return false
	}
	routePoints, trackPoints := 0, 0
	for _, rte := range doc.Routes {
		routePoints += len(rte.Points)
	}
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			trackPoints += len(seg.Points)
		}
	}
	return len(pt.way) == len(doc.Waypoints) && len(pt.route) == routePoints && len(pt.track) == trackPoints
}

func timeAt(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999", // no zone, read as UTC
}

func parseTime(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
