// Package convert provides functions to convert between GORM models and archive rides
package convert

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keex74/ElmaReplayIO/internal/model"
	"github.com/keex74/ElmaReplayIO/internal/storage"
	"gorm.io/datatypes"
)

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func fromMillis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// appleTimesToJSON converts apple times to datatypes.JSON for DB storage.
func appleTimesToJSON(times []time.Duration) datatypes.JSON {
	if len(times) == 0 {
		return datatypes.JSON("[]")
	}
	ms := make([]float64, len(times))
	for i, t := range times {
		ms[i] = millis(t)
	}
	data, _ := json.Marshal(ms)
	return datatypes.JSON(data)
}

// RideToRecord converts an archive ride to a GORM model.RideRecord.
func RideToRecord(r storage.Ride) model.RideRecord {
	return model.RideRecord{
		ID:           r.ID,
		ArchivedAt:   r.ArchivedAt,
		Source:       r.Source,
		Level:        r.Level,
		Link:         r.Link,
		Frames:       r.Frames,
		Events:       r.Events,
		DurationMs:   millis(r.Duration),
		Apples:       r.Apples(),
		AppleTimesMs: appleTimesToJSON(r.AppleTimes),
		Finished:     r.Finished,
		FinishMs:     millis(r.Finish),
	}
}

// RecordToRide converts a GORM model.RideRecord back to an archive ride.
func RecordToRide(rec model.RideRecord) (storage.Ride, error) {
	var ms []float64
	if len(rec.AppleTimesMs) > 0 {
		if err := json.Unmarshal(rec.AppleTimesMs, &ms); err != nil {
			return storage.Ride{}, fmt.Errorf("ride %d: bad apple times: %w", rec.ID, err)
		}
	}
	r := storage.Ride{
		ID:         rec.ID,
		Source:     rec.Source,
		ArchivedAt: rec.ArchivedAt,
		Level:      rec.Level,
		Link:       rec.Link,
		Frames:     rec.Frames,
		Events:     rec.Events,
		Duration:   fromMillis(rec.DurationMs),
		Finished:   rec.Finished,
		Finish:     fromMillis(rec.FinishMs),
	}
	if len(ms) > 0 {
		r.AppleTimes = make([]time.Duration, len(ms))
		for i, v := range ms {
			r.AppleTimes[i] = fromMillis(v)
		}
	}
	return r, nil
}
