package library

// Well-known property names in a library export.
const (
	KeyTrackID   = "Track ID"
	KeyName      = "Name"
	KeyArtist    = "Artist"
	KeyAlbum     = "Album"
	KeyGenre     = "Genre"
	KeyPlayCount = "Play Count"
	KeyDateAdded = "Date Added"
	KeyLocation  = "Location"
)

// Date is the raw text of a <date> value. It is not parsed at ingestion.
type Date string

// Track is the decoded property mapping of a single library entry.
// Values are int64, string, Date or bool.
type Track map[string]any

// ID returns the track's "Track ID" property.
func (t Track) ID() (int64, bool) {
	return t.Int(KeyTrackID)
}

// Int returns an integer property.
func (t Track) Int(key string) (int64, bool) {
	v, ok := t[key].(int64)
	return v, ok
}

// String returns a string property.
func (t Track) String(key string) (string, bool) {
	v, ok := t[key].(string)
	return v, ok
}

// Date returns a date property as its raw text.
func (t Track) Date(key string) (Date, bool) {
	v, ok := t[key].(Date)
	return v, ok
}

// Bool returns a boolean property.
func (t Track) Bool(key string) (bool, bool) {
	v, ok := t[key].(bool)
	return v, ok
}

// Clone returns a shallow copy. Values are immutable so this is enough to
// derive a modified record without touching the original.
func (t Track) Clone() Track {
	c := make(Track, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}
