package types

// Provenance tracks where a blob came from.
type Provenance interface {
	Kind() string
	// Path returns a displayable origin.
	Path() string
}

// FileProvenance for filesystem files.
type FileProvenance struct {
	FilePath string
}

// Kind returns "file".
func (f FileProvenance) Kind() string {
	return "file"
}

// Path returns the file path.
func (f FileProvenance) Path() string {
	return f.FilePath
}

// TextProvenance for text handed to the scanner directly, such as a
// command-line argument or a string scanned through the library API.
type TextProvenance struct {
	Name string
}

// Kind returns "text".
func (s TextProvenance) Kind() string {
	return "text"
}

// Path returns the name the text was given, or "<text>".
func (s TextProvenance) Path() string {
	if s.Name == "" {
		return "<text>"
	}
	return s.Name
}
