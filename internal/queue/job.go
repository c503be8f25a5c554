package queue

// TranscodeJob is what we push to Redis Streams.
// No media bytes here — the worker reads the raw upload from disk.
type TranscodeJob struct {
	Slug      string `json:"slug"`
	InputPath string `json:"input_path"` // raw upload inside the job's artifact directory
}
