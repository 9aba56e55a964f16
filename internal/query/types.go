package query

// Request is the body of POST /api/v0/query.
type Request struct {
	From     int64  `json:"unix_timestamp_from"`
	To       int64  `json:"unix_timestamp_to"`
	Location string `json:"location" binding:"required"`
	Sensor   string `json:"sensor" binding:"required"`
}

// Measurement is one aggregated sample in the response: the bucket's start
// timestamp (ISO 8601 UTC) and the average of all readings in the bucket.
type Measurement struct {
	TS    string  `json:"ts"`
	Value float64 `json:"value"`
}
