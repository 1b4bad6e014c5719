package document

// Filter narrows what a store returns for one run.
type Filter struct {
	// Source is the collection, table or key namespace to read.
	Source string
	// TextField picks the field projected into the comparison text.
	TextField TextField
}

// FieldMapping names the store fields that make up a Document.
type FieldMapping struct {
	ID         string `yaml:"id"`
	ExternalID string `yaml:"external_id"`
	Origin     string `yaml:"origin"`
	Raw        string `yaml:"raw"`
	Normalized string `yaml:"normalized"`
}

// DefaultFieldMapping matches the field names of the scraped article records.
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{
		ID:         "_id",
		ExternalID: "id",
		Origin:     "url",
		Raw:        "content",
		Normalized: "lemmatized_content",
	}
}

// WithDefaults fills empty names from DefaultFieldMapping.
func (m FieldMapping) WithDefaults() FieldMapping {
	d := DefaultFieldMapping()
	if m.ID == "" {
		m.ID = d.ID
	}
	if m.ExternalID == "" {
		m.ExternalID = d.ExternalID
	}
	if m.Origin == "" {
		m.Origin = d.Origin
	}
	if m.Raw == "" {
		m.Raw = d.Raw
	}
	if m.Normalized == "" {
		m.Normalized = d.Normalized
	}
	return m
}

// TextColumn returns the field holding the text selected by f.
func (m FieldMapping) TextColumn(f TextField) string {
	if f == Normalized {
		return m.Normalized
	}
	return m.Raw
}
