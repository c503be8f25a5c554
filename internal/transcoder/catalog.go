package transcoder

// Rendition is one fixed-quality output tier. The catalog is declared
// once and consumed by the arg builder; tiers are not derived from
// input properties.
type Rendition struct {
	Label        string `json:"label"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	VideoBitrate string `json:"video_bitrate"`
	VideoCodec   string `json:"video_codec"`
}

// DefaultCatalog is the fixed three-tier ladder, highest first.
func DefaultCatalog() []Rendition {
	return []Rendition{
		{Label: "1080p", Width: 1920, Height: 1080, VideoBitrate: "4500k", VideoCodec: "libx264"},
		{Label: "720p", Width: 1280, Height: 720, VideoBitrate: "2500k", VideoCodec: "libx264"},
		{Label: "480p", Width: 854, Height: 480, VideoBitrate: "1000k", VideoCodec: "libx264"},
	}
}

// Labels returns the catalog's quality labels in ladder order, the
// shape persisted on a ready video record.
func Labels(catalog []Rendition) []string {
	out := make([]string, len(catalog))
	for i, r := range catalog {
		out[i] = r.Label
	}
	return out
}
