package sqlite

// entryJSON is one line of entries.jsonl.
type entryJSON struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Revision  string `json:"revision"`
	UpdatedAt string `json:"updated_at"`
}
