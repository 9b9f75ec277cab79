package models

// MediaRef points at an asset held by the external media store.
type MediaRef struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

type VideoRef struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
	Duration int    `json:"duration"` // seconds
}

func (m MediaRef) IsEmpty() bool { return m.PublicID == "" && m.URL == "" }
