package ooxml

// OOXML internal types for unmarshalling. Only the attributes the extractor
// reads are declared; attribute names match by local name so the usual
// namespace prefixes (r:id etc.) resolve without listing every schema URI.

type xmlWorkbook struct {
	Sheets []xmlSheet `xml:"sheets>sheet"`
}

type xmlSheet struct {
	Name    string `xml:"name,attr"`
	SheetID string `xml:"sheetId,attr"`
	RelID   string `xml:"id,attr"`
}

type xmlRelationships struct {
	Relationships []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type xmlPersonList struct {
	Persons []xmlPerson `xml:"person"`
}

type xmlPerson struct {
	ID          string `xml:"id,attr"`
	DisplayName string `xml:"displayName,attr"`
	UserID      string `xml:"userId,attr"`
}

type xmlThreadedComments struct {
	Comments []xmlThreadedComment `xml:"threadedComment"`
}

type xmlThreadedComment struct {
	Ref      string `xml:"ref,attr"`
	PersonID string `xml:"personId,attr"`
	Created  string `xml:"dT,attr"`
	ParentID string `xml:"parentId,attr"`
	Text     string `xml:"text"`
}
