package models

// Result carries the sanitized text of one fetched page. An empty Text
// means the page could not be fetched or yielded no content; callers
// treat that as "fall back to snippet", not as a failure.
type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Status   int    `json:"status"`
	RenderMS int    `json:"render_ms"`
}
