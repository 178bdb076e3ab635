package weather

import (
	"context"
	"math/rand"
)

// Source abstracts the remote dashboard API.
type Source interface {
	FetchNational(ctx context.Context) (NationalSummary, error)
	LoadLocations(ctx context.Context, limit int) ([]Location, error)
	FetchDetail(ctx context.Context, id int) (LocationDetail, error)
}

// Store is the contract of the owned location list. Implementations must be
// safe for concurrent use; the Service is their only writer.
type Store interface {
	Replace(list []Location)
	Snapshot() []Location
	Find(id int) (Location, error)
	Shuffle(r *rand.Rand)
	Len() int
}
