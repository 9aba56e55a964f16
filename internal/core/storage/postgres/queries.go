package postgres

// SQL statements for the dictionary and reading stores.

const (
	queryResolveLocation = `SELECT id FROM locations WHERE name = $1`

	queryResolveSensor = `SELECT id FROM sensors WHERE name = $1`

	// Registration relies on the UNIQUE(name) constraint instead of
	// check-then-insert. ON CONFLICT DO NOTHING returns no rows
	// (sql.ErrNoRows) when the name already exists; the adapter then falls
	// back to a resolve so both racing callers observe the same id.
	queryRegisterLocation = `
		INSERT INTO locations (name)
		VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`

	queryRegisterSensor = `
		INSERT INTO sensors (name)
		VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`

	// queryInsertReading appends one reading. The UNIQUE(timestamp,
	// sensor_id, location_id) constraint makes concurrent identical writes
	// race safely: exactly one insert wins, the loser gets no rows back.
	queryInsertReading = `
		INSERT INTO readings (timestamp, location_id, sensor_id, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (timestamp, sensor_id, location_id) DO NOTHING
		RETURNING id
	`

	// queryBucketAverages is the adaptive-resolution read path. $1 is a
	// to_char pattern from resolution.BucketFormat; truncating the formatted
	// timestamp to a bucket boundary and grouping on the string gives one
	// row per non-empty bucket. The patterns are fixed-width, so ordering by
	// the formatted string is chronological. Bounds are inclusive.
	queryBucketAverages = `
		SELECT to_char(to_timestamp(timestamp) AT TIME ZONE 'UTC', $1) AS bucket,
		       AVG(value) AS average
		FROM readings
		WHERE location_id = $2
		  AND sensor_id = $3
		  AND timestamp BETWEEN $4 AND $5
		GROUP BY bucket
		ORDER BY bucket ASC
	`
)
