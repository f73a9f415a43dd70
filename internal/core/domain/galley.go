package domain

// Galley represents a presentation format of a publication, typically a PDF or
// HTML rendering, either stored as a file or pointing at a remote URL.
type Galley struct {
	GalleyID      string  `json:"galleyID"`      // Primary Key (e.g., UUID)
	PublicationID string  `json:"publicationID"` // FK -> publications.publication_id (NON-NULL)
	Label         string  `json:"label"`         // e.g., "PDF", "HTML"
	Locale        string  `json:"locale"`        // e.g., "en"
	URLRemote     *string `json:"urlRemote"`     // Nullable; external location of the galley
	FileID        *string `json:"fileID"`        // Nullable; stored file reference
	Seq           int     `json:"seq"`           // Display order within the publication
	AuditFields
}
