package domain

// CatalogEntry is a reference shoe that users can look up, own and get
// recommendations for. Entries are created by admins and read-only to members.
type CatalogEntry struct {
	Entity
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Category string `json:"category,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	BlurHash string `json:"blur_hash,omitempty"`
}

// DisplayName returns "Brand Model".
func (c *CatalogEntry) DisplayName() string {
	if c.Model == "" {
		return c.Brand
	}
	return c.Brand + " " + c.Model
}

// HasImage reports whether an image has been uploaded for the entry.
func (c *CatalogEntry) HasImage() bool {
	return c.ImageURL != ""
}
