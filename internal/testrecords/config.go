package testrecords

import "time"

// Config holds configuration for the record test
type Config struct {
	BaseURL    string        // Base URL of the service
	NumRecords int           // Number of records to generate
	TopN       int           // Number of expiring entries to fetch
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for records
	LogFile    string        // Log file for test output
	Verbose    bool          // Enable verbose logging
}

// JobSubmission represents a job to be submitted
type JobSubmission struct {
	JobID    string         `json:"job_id"`
	Record   map[string]any `json:"record"`
	Category string         `json:"category"`
	Level    string         `json:"level"`
}

// Summary represents an archived result summary
type Summary struct {
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	Level      string    `json:"level"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	SizeBytes  int       `json:"sizeBytes"`
	PIIRemoved int       `json:"piiRemoved"`
}

// Result represents a full archived anonymized result
type Result struct {
	ID                 string         `json:"id"`
	OriginalDataType   string         `json:"originalDataType"`
	AnonymizedData     map[string]any `json:"anonymizedData"`
	AnonymizationLevel string         `json:"anonymizationLevel"`
	RetentionPeriod    string         `json:"retentionPeriod"`
	CreatedAt          time.Time      `json:"createdAt"`
	ExpiresAt          time.Time      `json:"expiresAt"`
}

// AckResponse represents the response from job submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds test statistics
type Stats struct {
	RecordsGenerated  int
	RecordsSubmitted  int
	RecordsSuccessful int
	RecordsDuplicate  int
	RecordsFailed     int
	ResultsRetrieved  int
	ExpiringEntries   int
	LeakedFields      int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
