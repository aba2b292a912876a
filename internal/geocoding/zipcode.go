package geocoding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// lookupZipcodeInDB looks up a zipcode in the provided database connection.
// ZIP+4 input is matched on its five digit prefix.
func lookupZipcodeInDB(ctx context.Context, db *sql.DB, zipcode string) (*Location, error) {
	if len(zipcode) > 5 {
		zipcode = zipcode[:5]
	}

	loc := Location{}
	err := db.QueryRowContext(ctx,
		"SELECT zipcode, city, state, latitude, longitude FROM zipcodes WHERE zipcode = ?",
		zipcode,
	).Scan(&loc.Zipcode, &loc.City, &loc.State, &loc.Latitude, &loc.Longitude)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZip, zipcode)
	}
	if err != nil {
		return nil, fmt.Errorf("querying zipcode: %w", err)
	}

	return &loc, nil
}
