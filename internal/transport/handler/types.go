package handler

type UploadVideoParams struct {
	// Auth is out of scope; the owner id is passed through opaque.
	UserID string `validate:"required,max=64"` // videos.user_id (NOT NULL)
}

type UploadVideoResponse struct {
	Success bool   `json:"success"`
	Slug    string `json:"slug"`
}

// Playback is what the embed page needs: a manifest reference plus
// presentation details.
type Playback struct {
	Title       string
	Qualities   []string
	ManifestURL string
}
